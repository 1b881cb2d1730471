package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

const transactionColumns = `id, uuid, type, description, amount, currency,
	amount_in_host_currency, host_currency, net_amount_in_collective_currency,
	collective_id, from_collective_id, host_collective_id,
	using_virtual_card_from_collective_id, payment_method_id, order_id, created_at`

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Insert(tx *domain.Transaction) error {
	res, err := r.db.Exec(
		`INSERT INTO transactions
		(uuid, type, description, amount, currency, amount_in_host_currency,
		 host_currency, net_amount_in_collective_currency, collective_id,
		 from_collective_id, host_collective_id,
		 using_virtual_card_from_collective_id, payment_method_id, order_id,
		 created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		tx.UUID, string(tx.Type), tx.Description, tx.Amount, tx.Currency,
		tx.AmountInHostCurrency, tx.HostCurrency, tx.NetAmountInCollectiveCurrency,
		tx.CollectiveID, tx.FromCollectiveID, tx.HostCollectiveID,
		nullableID(tx.UsingVirtualCardFromCollectiveID), nullableID(tx.PaymentMethodID),
		nullableID(tx.OrderID), tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	tx.ID = id
	return nil
}

func (r *TransactionRepo) BulkInsert(txns []domain.Transaction) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO transactions
		(uuid, type, description, amount, currency, amount_in_host_currency,
		 host_currency, net_amount_in_collective_currency, collective_id,
		 from_collective_id, host_collective_id,
		 using_virtual_card_from_collective_id, payment_method_id, order_id,
		 created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range txns {
		tx := &txns[i]
		res, err := stmt.Exec(
			tx.UUID, string(tx.Type), tx.Description, tx.Amount, tx.Currency,
			tx.AmountInHostCurrency, tx.HostCurrency, tx.NetAmountInCollectiveCurrency,
			tx.CollectiveID, tx.FromCollectiveID, tx.HostCollectiveID,
			nullableID(tx.UsingVirtualCardFromCollectiveID), nullableID(tx.PaymentMethodID),
			nullableID(tx.OrderID), tx.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *TransactionRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// GetByUUID returns the transaction with the given UUID, or sql.ErrNoRows.
func (r *TransactionRepo) GetByUUID(uuid string) (*domain.Transaction, error) {
	row := r.db.QueryRow(
		"SELECT "+transactionColumns+" FROM transactions WHERE uuid = ?", uuid,
	)
	return scanTransactionRow(row)
}

// creditsForPayerWhere is the predicate that attributes credit transactions
// to a payer. Virtual-card-routed credits count toward the card holder's
// invoices, not the card issuer's, hence the disjunction.
const creditsForPayerWhere = ` WHERE type = 'CREDIT'
	AND ((from_collective_id = ? AND using_virtual_card_from_collective_id IS NULL)
	     OR using_virtual_card_from_collective_id = ?)`

// FindCreditsForPayer returns every credit transaction attributable to the
// given payer collective, across all hosts, oldest first.
func (r *TransactionRepo) FindCreditsForPayer(fromCollectiveID int64) ([]domain.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions" +
		creditsForPayerWhere + " ORDER BY created_at, id"
	rows, err := r.db.Query(query, fromCollectiveID, fromCollectiveID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return collectTransactions(rows)
}

// FindCreditsForPayerAndHost narrows FindCreditsForPayer to one host and a
// half-open [startsAt, endsAt) creation window.
func (r *TransactionRepo) FindCreditsForPayerAndHost(
	fromCollectiveID, hostCollectiveID int64,
	startsAt, endsAt time.Time,
) ([]domain.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions" +
		creditsForPayerWhere +
		" AND host_collective_id = ? AND created_at >= ? AND created_at < ?" +
		" ORDER BY created_at, id"
	rows, err := r.db.Query(query,
		fromCollectiveID, fromCollectiveID, hostCollectiveID,
		startsAt.UTC().Format(time.RFC3339), endsAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return collectTransactions(rows)
}

type TransactionFilter struct {
	CollectiveID int64
	Type         string
	MinAmount    *int64
	MaxAmount    *int64
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

func (r *TransactionRepo) List(f TransactionFilter) ([]domain.Transaction, int, error) {
	where, args := buildTransactionWhere(f)

	var total int
	countSQL := "SELECT COUNT(*) FROM transactions" + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := "SELECT " + transactionColumns + " FROM transactions" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// --- helpers ---

func buildTransactionWhere(f TransactionFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.CollectiveID != 0 {
		clauses = append(clauses, "collective_id = ?")
		args = append(args, f.CollectiveID)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.MinAmount != nil {
		clauses = append(clauses, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		clauses = append(clauses, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func zeroAsNull(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var txns []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		txns = append(txns, *tx)
	}
	return txns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionFields(s rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var typ, createdAt string
	var vcard, pmID, orderID sql.NullInt64

	err := s.Scan(
		&tx.ID, &tx.UUID, &typ, &tx.Description, &tx.Amount, &tx.Currency,
		&tx.AmountInHostCurrency, &tx.HostCurrency, &tx.NetAmountInCollectiveCurrency,
		&tx.CollectiveID, &tx.FromCollectiveID, &tx.HostCollectiveID,
		&vcard, &pmID, &orderID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = domain.TransactionType(typ)
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if vcard.Valid {
		v := vcard.Int64
		tx.UsingVirtualCardFromCollectiveID = &v
	}
	if pmID.Valid {
		v := pmID.Int64
		tx.PaymentMethodID = &v
	}
	if orderID.Valid {
		v := orderID.Int64
		tx.OrderID = &v
	}

	return &tx, nil
}

func scanTransactionRow(row *sql.Row) (*domain.Transaction, error) {
	return scanTransactionFields(row)
}

func scanTransactionRows(rows *sql.Rows) (*domain.Transaction, error) {
	return scanTransactionFields(rows)
}
