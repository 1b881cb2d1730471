package repository

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollectiveRepo(t *testing.T) {
	db := newTestDB(t)
	repo := NewCollectiveRepo(db)

	created := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	host := &domain.Collective{
		Slug: "the-host", Name: "The Host", Type: domain.TypeOrganization,
		Currency: "USD",
		Settings: domain.CollectiveSettings{InvoiceTitle: "Host Receipt"},
		IsActive: true, CreatedAt: created,
	}
	if err := repo.Insert(host); err != nil {
		t.Fatalf("insert host: %v", err)
	}
	if host.ID == 0 {
		t.Fatal("expected host ID to be assigned")
	}

	hostID := host.ID
	project := &domain.Collective{
		Slug: "cool-project", Name: "Cool Project", Type: domain.TypeCollective,
		Currency: "USD", Tags: []string{"open source", "tools"},
		HostCollectiveID: &hostID, IsActive: true, CreatedAt: created.AddDate(0, 1, 0),
	}
	if err := repo.Insert(project); err != nil {
		t.Fatalf("insert project: %v", err)
	}

	t.Run("GetBySlug round-trips settings and tags", func(t *testing.T) {
		got, err := repo.GetBySlug("the-host")
		if err != nil {
			t.Fatalf("GetBySlug: %v", err)
		}
		if got.Settings.InvoiceTitle != "Host Receipt" {
			t.Errorf("InvoiceTitle = %q, want 'Host Receipt'", got.Settings.InvoiceTitle)
		}

		proj, err := repo.GetBySlug("cool-project")
		if err != nil {
			t.Fatalf("GetBySlug: %v", err)
		}
		if len(proj.Tags) != 2 || proj.Tags[0] != "open source" {
			t.Errorf("Tags = %v, want [open source tools]", proj.Tags)
		}
		if proj.HostCollectiveID == nil || *proj.HostCollectiveID != hostID {
			t.Errorf("HostCollectiveID = %v, want %d", proj.HostCollectiveID, hostID)
		}
	})

	t.Run("GetBySlug miss returns ErrNoRows", func(t *testing.T) {
		_, err := repo.GetBySlug("nope")
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})

	t.Run("List filters by type", func(t *testing.T) {
		got, total, err := repo.List(CollectiveFilter{Type: "ORGANIZATION"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 || len(got) != 1 || got[0].Slug != "the-host" {
			t.Errorf("got %d results, want the-host only", len(got))
		}
	})

	t.Run("List filters by tag", func(t *testing.T) {
		got, _, err := repo.List(CollectiveFilter{Tag: "tools"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].Slug != "cool-project" {
			t.Errorf("tag filter returned %v", got)
		}
		// Substrings of a tag must not match.
		got, _, err = repo.List(CollectiveFilter{Tag: "tool"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("partial tag matched %v", got)
		}
	})

	t.Run("List search matches slug and name", func(t *testing.T) {
		got, _, err := repo.List(CollectiveFilter{Search: "cool"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].Slug != "cool-project" {
			t.Errorf("search returned %v", got)
		}
	})

	t.Run("List sorts by name descending", func(t *testing.T) {
		got, _, err := repo.List(CollectiveFilter{SortBy: "name", SortDesc: true})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].Name != "The Host" {
			t.Errorf("sort order wrong: %v", got)
		}
	})
}

func TestTransactionRepoFilters(t *testing.T) {
	db := newTestDB(t)
	collectives := NewCollectiveRepo(db)
	repo := NewTransactionRepo(db)

	created := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	host := &domain.Collective{Slug: "h", Name: "h", Type: domain.TypeOrganization, Currency: "USD", IsActive: true, CreatedAt: created}
	payer := &domain.Collective{Slug: "p", Name: "p", Type: domain.TypeUser, Currency: "USD", IsActive: true, CreatedAt: created}
	holder := &domain.Collective{Slug: "vc", Name: "vc", Type: domain.TypeUser, Currency: "USD", IsActive: true, CreatedAt: created}
	for _, c := range []*domain.Collective{host, payer, holder} {
		if err := collectives.Insert(c); err != nil {
			t.Fatalf("insert collective: %v", err)
		}
	}

	mk := func(uuid string, typ domain.TransactionType, amount int64, at time.Time, vcard *int64) {
		t.Helper()
		tx := &domain.Transaction{
			UUID: uuid, Type: typ, Amount: amount, Currency: "USD",
			AmountInHostCurrency: amount, HostCurrency: "USD",
			NetAmountInCollectiveCurrency: amount,
			CollectiveID:                  host.ID,
			FromCollectiveID:              payer.ID,
			HostCollectiveID:              host.ID,
			UsingVirtualCardFromCollectiveID: vcard,
			CreatedAt:                        at,
		}
		if err := repo.Insert(tx); err != nil {
			t.Fatalf("insert tx %s: %v", uuid, err)
		}
	}

	jan := time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2019, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2019, 3, 10, 0, 0, 0, 0, time.UTC)

	mk("t1", domain.TransactionCredit, 1000, jan, nil)
	mk("t2", domain.TransactionCredit, 2500, feb, nil)
	mk("t3", domain.TransactionDebit, -500, feb, nil)
	mk("t4", domain.TransactionCredit, 300, mar, &holder.ID)

	t.Run("FindCreditsForPayer excludes virtual card spends of others", func(t *testing.T) {
		txns, err := repo.FindCreditsForPayer(payer.ID)
		if err != nil {
			t.Fatalf("FindCreditsForPayer: %v", err)
		}
		// t1 and t2 only: t3 is a debit, t4 is routed to the card holder.
		if len(txns) != 2 {
			t.Fatalf("got %d transactions, want 2", len(txns))
		}
	})

	t.Run("FindCreditsForPayer attributes virtual card spends to holder", func(t *testing.T) {
		txns, err := repo.FindCreditsForPayer(holder.ID)
		if err != nil {
			t.Fatalf("FindCreditsForPayer: %v", err)
		}
		if len(txns) != 1 || txns[0].UUID != "t4" {
			t.Fatalf("got %v, want t4 only", txns)
		}
	})

	t.Run("FindCreditsForPayerAndHost window is half-open", func(t *testing.T) {
		start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
		txns, err := repo.FindCreditsForPayerAndHost(payer.ID, host.ID, start, end)
		if err != nil {
			t.Fatalf("FindCreditsForPayerAndHost: %v", err)
		}
		if len(txns) != 1 || txns[0].UUID != "t1" {
			t.Fatalf("got %v, want t1 only", txns)
		}
	})

	t.Run("List filters by type and amount", func(t *testing.T) {
		min := int64(1500)
		txns, total, err := repo.List(TransactionFilter{
			CollectiveID: host.ID,
			Type:         "CREDIT",
			MinAmount:    &min,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 || len(txns) != 1 || txns[0].UUID != "t2" {
			t.Fatalf("got total=%d txns=%v, want t2 only", total, txns)
		}
	})

	t.Run("List paginates newest first", func(t *testing.T) {
		txns, total, err := repo.List(TransactionFilter{
			CollectiveID: host.ID, Page: 1, Limit: 2,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
		if len(txns) != 2 || txns[0].UUID != "t4" {
			t.Errorf("first page = %v, want newest first", txns)
		}
	})

	t.Run("GetByUUID restores nullable fields", func(t *testing.T) {
		tx, err := repo.GetByUUID("t4")
		if err != nil {
			t.Fatalf("GetByUUID: %v", err)
		}
		if tx.UsingVirtualCardFromCollectiveID == nil ||
			*tx.UsingVirtualCardFromCollectiveID != holder.ID {
			t.Errorf("UsingVirtualCardFromCollectiveID = %v", tx.UsingVirtualCardFromCollectiveID)
		}
	})
}

func TestMemberRepoRoles(t *testing.T) {
	db := newTestDB(t)
	collectives := NewCollectiveRepo(db)
	repo := NewMemberRepo(db)

	created := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	org := &domain.Collective{Slug: "org", Name: "org", Type: domain.TypeCollective, Currency: "USD", IsActive: true, CreatedAt: created}
	user := &domain.Collective{Slug: "user", Name: "user", Type: domain.TypeUser, Currency: "USD", IsActive: true, CreatedAt: created}
	for _, c := range []*domain.Collective{org, user} {
		if err := collectives.Insert(c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	for _, role := range []domain.MemberRole{domain.RoleAdmin, domain.RoleBacker} {
		m := &domain.Member{
			CollectiveID: org.ID, MemberCollectiveID: user.ID,
			Role: role, Since: created,
		}
		if err := repo.Insert(m); err != nil {
			t.Fatalf("insert member: %v", err)
		}
	}

	roles, err := repo.RolesForMember(user.ID)
	if err != nil {
		t.Fatalf("RolesForMember: %v", err)
	}
	if len(roles[org.ID]) != 2 {
		t.Errorf("roles = %v, want 2 roles on org", roles)
	}

	members, total, err := repo.List(MemberFilter{CollectiveID: org.ID, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(members) != 1 || members[0].Role != domain.RoleAdmin {
		t.Errorf("admin filter returned %v", members)
	}
}

func TestUpdateRepoVisibility(t *testing.T) {
	db := newTestDB(t)
	collectives := NewCollectiveRepo(db)
	repo := NewUpdateRepo(db)

	created := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	org := &domain.Collective{Slug: "org", Name: "org", Type: domain.TypeCollective, Currency: "USD", IsActive: true, CreatedAt: created}
	if err := collectives.Insert(org); err != nil {
		t.Fatalf("insert: %v", err)
	}

	published := created.AddDate(1, 0, 0)
	for _, u := range []*domain.Update{
		{CollectiveID: org.ID, Slug: "public-post", Title: "Public", PublishedAt: &published, CreatedAt: created},
		{CollectiveID: org.ID, Slug: "draft-post", Title: "Draft", CreatedAt: created},
		{CollectiveID: org.ID, Slug: "private-post", Title: "Private", IsPrivate: true, PublishedAt: &published, CreatedAt: created},
	} {
		if err := repo.Insert(u); err != nil {
			t.Fatalf("insert update: %v", err)
		}
	}

	t.Run("public view", func(t *testing.T) {
		updates, total, err := repo.List(UpdateFilter{
			CollectiveID: org.ID, PublishedOnly: true, IncludePrivate: false,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 || len(updates) != 1 || updates[0].Slug != "public-post" {
			t.Errorf("public view = %v, want public-post only", updates)
		}
	})

	t.Run("admin view", func(t *testing.T) {
		_, total, err := repo.List(UpdateFilter{
			CollectiveID: org.ID, PublishedOnly: false, IncludePrivate: true,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 3 {
			t.Errorf("admin view total = %d, want 3", total)
		}
	})
}

func TestOrderAndExpenseRepos(t *testing.T) {
	db := newTestDB(t)
	collectives := NewCollectiveRepo(db)
	orders := NewOrderRepo(db)
	expenses := NewExpenseRepo(db)

	created := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	org := &domain.Collective{Slug: "org", Name: "org", Type: domain.TypeCollective, Currency: "USD", IsActive: true, CreatedAt: created}
	user := &domain.Collective{Slug: "user", Name: "user", Type: domain.TypeUser, Currency: "USD", IsActive: true, CreatedAt: created}
	for _, c := range []*domain.Collective{org, user} {
		if err := collectives.Insert(c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	for i, status := range []domain.OrderStatus{domain.OrderPaid, domain.OrderPaid, domain.OrderCancelled} {
		o := &domain.Order{
			FromCollectiveID: user.ID, CollectiveID: org.ID,
			TotalAmount: int64((i + 1) * 100), Currency: "USD",
			Status: status, CreatedAt: created.AddDate(0, i, 0),
		}
		if err := orders.Insert(o); err != nil {
			t.Fatalf("insert order: %v", err)
		}
	}

	got, total, err := orders.List(OrderFilter{
		CollectiveID: org.ID, Status: "PAID",
		SortBy: "totalAmount", SortDesc: true,
	})
	if err != nil {
		t.Fatalf("List orders: %v", err)
	}
	if total != 2 || got[0].TotalAmount != 200 {
		t.Errorf("orders = %v, want 2 paid, largest first", got)
	}

	for _, status := range []domain.ExpenseStatus{domain.ExpensePending, domain.ExpensePaid} {
		e := &domain.Expense{
			CollectiveID: org.ID, UserCollectiveID: user.ID,
			Amount: 5000, Currency: "USD", Category: "hosting",
			Status: status, CreatedAt: created,
		}
		if err := expenses.Insert(e); err != nil {
			t.Fatalf("insert expense: %v", err)
		}
	}

	gotExp, total, err := expenses.List(ExpenseFilter{CollectiveID: org.ID, Status: "PENDING"})
	if err != nil {
		t.Fatalf("List expenses: %v", err)
	}
	if total != 1 || gotExp[0].Status != domain.ExpensePending {
		t.Errorf("expenses = %v, want pending only", gotExp)
	}
}
