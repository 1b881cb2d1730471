// Package seed loads development fixture data into an empty database.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/commonsfund/ledger/internal/repository"
)

// Result summarises a seeding run.
type Result struct {
	Collectives    int `json:"collectives"`
	Members        int `json:"members"`
	PaymentMethods int `json:"payment_methods"`
	Transactions   int `json:"transactions"`
	Orders         int `json:"orders"`
	Expenses       int `json:"expenses"`
	Updates        int `json:"updates"`
}

// Service inserts fixture data through the repository layer so the same
// validation and encoding paths are exercised as in production.
type Service struct {
	collectives    *repository.CollectiveRepo
	transactions   *repository.TransactionRepo
	members        *repository.MemberRepo
	paymentMethods *repository.PaymentMethodRepo
	orders         *repository.OrderRepo
	expenses       *repository.ExpenseRepo
	updates        *repository.UpdateRepo
}

// NewService creates a new seeding service.
func NewService(
	collectives *repository.CollectiveRepo,
	transactions *repository.TransactionRepo,
	members *repository.MemberRepo,
	paymentMethods *repository.PaymentMethodRepo,
	orders *repository.OrderRepo,
	expenses *repository.ExpenseRepo,
	updates *repository.UpdateRepo,
) *Service {
	return &Service{
		collectives:    collectives,
		transactions:   transactions,
		members:        members,
		paymentMethods: paymentMethods,
		orders:         orders,
		expenses:       expenses,
		updates:        updates,
	}
}

// LoadFile parses the fixture file at path and inserts its contents.
// Seeding is skipped when the database already has transactions.
func (s *Service) LoadFile(path string) (*Result, error) {
	count, err := s.transactions.Count()
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping", "transactions", count)
		return &Result{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	fixture, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	return s.load(fixture)
}

func (s *Service) load(f *Fixture) (*Result, error) {
	res := &Result{}

	for i := range f.Collectives {
		if err := s.collectives.Insert(&f.Collectives[i]); err != nil {
			return nil, fmt.Errorf("collective %q: %w", f.Collectives[i].Slug, err)
		}
		res.Collectives++
	}
	for i := range f.Members {
		if err := s.members.Insert(&f.Members[i]); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		res.Members++
	}
	for i := range f.PaymentMethods {
		if err := s.paymentMethods.Insert(&f.PaymentMethods[i]); err != nil {
			return nil, fmt.Errorf("payment method %d: %w", i, err)
		}
		res.PaymentMethods++
	}
	for i := range f.Orders {
		if err := s.orders.Insert(&f.Orders[i]); err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		res.Orders++
	}
	for i := range f.Expenses {
		if err := s.expenses.Insert(&f.Expenses[i]); err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}
		res.Expenses++
	}
	for i := range f.Updates {
		if err := s.updates.Insert(&f.Updates[i]); err != nil {
			return nil, fmt.Errorf("update %d: %w", i, err)
		}
		res.Updates++
	}

	inserted, err := s.transactions.BulkInsert(f.Transactions)
	if err != nil {
		return nil, fmt.Errorf("bulk insert transactions: %w", err)
	}
	res.Transactions = inserted

	slog.Info("seeded fixture data",
		"collectives", res.Collectives,
		"members", res.Members,
		"transactions", res.Transactions,
	)

	return res, nil
}
