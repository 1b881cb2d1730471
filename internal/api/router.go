package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/commonsfund/ledger/internal/invoice"
	"github.com/commonsfund/ledger/internal/metrics"
	"github.com/commonsfund/ledger/internal/repository"
)

// Deps carries everything the router needs.
type Deps struct {
	CollectiveRepo *repository.CollectiveRepo
	TxnRepo        *repository.TransactionRepo
	MemberRepo     *repository.MemberRepo
	OrderRepo      *repository.OrderRepo
	ExpenseRepo    *repository.ExpenseRepo
	UpdateRepo     *repository.UpdateRepo
	InvoiceSvc     *invoice.Service
	Auth           *AuthMiddleware
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(d Deps) http.Handler {
	h := &Handlers{
		collectiveRepo: d.CollectiveRepo,
		txnRepo:        d.TxnRepo,
		memberRepo:     d.MemberRepo,
		orderRepo:      d.OrderRepo,
		expenseRepo:    d.ExpenseRepo,
		updateRepo:     d.UpdateRepo,
		invoiceSvc:     d.InvoiceSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Use(Paginate)

		// Public listings; the caller, when present, widens what updates
		// are visible.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.OptionalAuth)

			r.Get("/collectives", h.ListCollectives)
			r.Get("/collectives/{slug}", h.GetCollective)
			r.Get("/collectives/{slug}/members", h.ListMembers)
			r.Get("/collectives/{slug}/expenses", h.ListExpenses)
			r.Get("/collectives/{slug}/orders", h.ListOrders)
			r.Get("/collectives/{slug}/updates", h.ListUpdates)
			r.Get("/collectives/{slug}/transactions", h.ListTransactions)
			r.Get("/collectives/{slug}/transactions.csv", h.TransactionsCSV)
		})

		// Invoices require an authenticated admin of the billed party.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.RequireAuth)

			r.Get("/invoices/by-slug/{invoiceSlug}", h.InvoiceBySlug)
			r.Get("/invoices/{fromCollectiveSlug}", h.AllInvoices)
			r.Get("/invoices/{fromCollectiveSlug}/{hostSlug}/range", h.InvoiceByDateRange)
			r.Get("/transactions/{uuid}/invoice", h.TransactionInvoice)
		})
	})

	return r
}
