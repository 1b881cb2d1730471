package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Insert(o *domain.Order) error {
	res, err := r.db.Exec(
		`INSERT INTO orders
		(id, from_collective_id, collective_id, description, total_amount,
		 currency, status, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		zeroAsNull(o.ID), o.FromCollectiveID, o.CollectiveID, o.Description, o.TotalAmount,
		o.Currency, string(o.Status), o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	o.ID = id
	return nil
}

type OrderFilter struct {
	CollectiveID int64
	Status       string
	SortBy       string // createdAt | totalAmount
	SortDesc     bool
	Page         int
	Limit        int
}

var orderSortColumns = map[string]string{
	"createdAt":   "created_at",
	"totalAmount": "total_amount",
}

func (r *OrderRepo) List(f OrderFilter) ([]domain.Order, int, error) {
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

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	orderCol, ok := orderSortColumns[f.SortBy]
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
		`SELECT id, from_collective_id, collective_id, description,
			total_amount, currency, status, created_at
		FROM orders%s ORDER BY %s %s, id LIMIT ? OFFSET ?`,
		where, orderCol, dir,
	)
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status, createdAt string
		if err := rows.Scan(&o.ID, &o.FromCollectiveID, &o.CollectiveID,
			&o.Description, &o.TotalAmount, &o.Currency, &status, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}
