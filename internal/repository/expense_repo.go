package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo {
	return &ExpenseRepo{db: db}
}

func (r *ExpenseRepo) Insert(e *domain.Expense) error {
	res, err := r.db.Exec(
		`INSERT INTO expenses
		(collective_id, user_collective_id, description, amount, currency,
		 category, status, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		e.CollectiveID, e.UserCollectiveID, e.Description, e.Amount,
		e.Currency, e.Category, string(e.Status),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return nil
}

type ExpenseFilter struct {
	CollectiveID int64
	Status       string
	Category     string
	SortBy       string // createdAt | amount
	SortDesc     bool
	Page         int
	Limit        int
}

var expenseSortColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
}

func (r *ExpenseRepo) List(f ExpenseFilter) ([]domain.Expense, int, error) {
	var clauses []string
	var args []any

	if f.CollectiveID != 0 {
		clauses = append(clauses, "collective_id = ?")
		args = append(args, f.CollectiveID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM expenses"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	orderCol, ok := expenseSortColumns[f.SortBy]
	if !ok {
		orderCol = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	query := fmt.Sprintf(
		`SELECT id, collective_id, user_collective_id, description, amount,
			currency, category, status, created_at
		FROM expenses%s ORDER BY %s %s, id LIMIT ? OFFSET ?`,
		where, orderCol, dir,
	)
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var status, createdAt string
		if err := rows.Scan(&e.ID, &e.CollectiveID, &e.UserCollectiveID,
			&e.Description, &e.Amount, &e.Currency, &e.Category,
			&status, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		e.Status = domain.ExpenseStatus(status)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		expenses = append(expenses, e)
	}
	return expenses, total, rows.Err()
}
