// Command generate produces a deterministic development fixture
// (testdata/fixture.json) with hosts, collectives, backers, memberships,
// payment methods and a year of credit/debit transactions.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/commonsfund/ledger/internal/domain"
	"github.com/commonsfund/ledger/internal/seed"
)

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	created := time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)

	hosts := []domain.Collective{
		{ID: 1, Slug: "open-source-host", Name: "Open Source Host", Type: domain.TypeOrganization,
			Currency: "USD", Settings: domain.CollectiveSettings{InvoiceTitle: "Open Source Host Receipt"},
			IsActive: true, CreatedAt: created},
		{ID: 2, Slug: "europe-host", Name: "Europe Fiscal Host", Type: domain.TypeOrganization,
			Currency: "EUR", IsActive: true, CreatedAt: created},
	}

	var collectives []domain.Collective
	for i := 1; i <= 8; i++ {
		hostID := hosts[i%2].ID
		collectives = append(collectives, domain.Collective{
			ID:               int64(10 + i),
			Slug:             fmt.Sprintf("project-%d", i),
			Name:             fmt.Sprintf("Project %d", i),
			Type:             domain.TypeCollective,
			Currency:         hosts[i%2].Currency,
			Tags:             []string{"open source"},
			HostCollectiveID: &hostID,
			IsActive:         true,
			CreatedAt:        created,
		})
	}

	var backers []domain.Collective
	for i := 1; i <= 12; i++ {
		backers = append(backers, domain.Collective{
			ID:        int64(100 + i),
			Slug:      fmt.Sprintf("backer-%d", i),
			Name:      fmt.Sprintf("Backer %d", i),
			Type:      domain.TypeUser,
			Currency:  "USD",
			IsActive:  true,
			CreatedAt: created,
		})
	}

	var members []domain.Member
	for i, b := range backers {
		target := collectives[i%len(collectives)]
		role := domain.RoleBacker
		if i%4 == 0 {
			role = domain.RoleAdmin
		}
		members = append(members, domain.Member{
			CollectiveID:       target.ID,
			MemberCollectiveID: b.ID,
			Role:               role,
			Since:              created.AddDate(0, i, 0),
		})
	}

	paymentMethods := []domain.PaymentMethod{
		{ID: 1, CollectiveID: backers[0].ID, Type: domain.PaymentMethodCreditCard, Currency: "USD", CreatedAt: created},
		{ID: 2, CollectiveID: backers[1].ID, Type: domain.PaymentMethodVirtualCard, Currency: "USD", CreatedAt: created},
	}

	// A year of monthly donations from each backer to its collective.
	var transactions []domain.Transaction
	var orders []domain.Order
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	orderID := int64(0)
	for month := 0; month < 12; month++ {
		for i, b := range backers {
			if rng.Float64() < 0.3 {
				continue
			}
			target := collectives[i%len(collectives)]
			amount := int64((1 + rng.Intn(50)) * 100)
			createdAt := start.AddDate(0, month, rng.Intn(27)).
				Add(time.Duration(rng.Intn(24)) * time.Hour)

			orderID++
			oid := orderID
			orders = append(orders, domain.Order{
				ID:               oid,
				FromCollectiveID: b.ID,
				CollectiveID:     target.ID,
				Description:      fmt.Sprintf("Monthly donation to %s", target.Name),
				TotalAmount:      amount,
				Currency:         target.Currency,
				Status:           domain.OrderPaid,
				CreatedAt:        createdAt,
			})

			transactions = append(transactions, domain.Transaction{
				UUID:                          uuid.New().String(),
				Type:                          domain.TransactionCredit,
				Description:                   fmt.Sprintf("Donation to %s", target.Name),
				Amount:                        amount,
				Currency:                      target.Currency,
				AmountInHostCurrency:          amount,
				HostCurrency:                  target.Currency,
				NetAmountInCollectiveCurrency: amount - amount/20,
				CollectiveID:                  target.ID,
				FromCollectiveID:              b.ID,
				HostCollectiveID:              *target.HostCollectiveID,
				OrderID:                       &oid,
				CreatedAt:                     createdAt,
			})
		}
	}

	fixture := seed.Fixture{
		Collectives:    append(append(hosts, collectives...), backers...),
		Members:        members,
		PaymentMethods: paymentMethods,
		Transactions:   transactions,
		Orders:         orders,
	}

	writeJSONFile(filepath.Join(baseDir, "fixture.json"), fixture)
	fmt.Printf("Generated fixture: %d collectives, %d transactions -> fixture.json\n",
		len(fixture.Collectives), len(fixture.Transactions))
}

func writeJSONFile(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata"), "."}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(c)
			if filepath.Base(abs) == "testdata" {
				return abs
			}
		}
	}
	return "."
}
