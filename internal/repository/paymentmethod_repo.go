package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

type PaymentMethodRepo struct {
	db *sql.DB
}

func NewPaymentMethodRepo(db *sql.DB) *PaymentMethodRepo {
	return &PaymentMethodRepo{db: db}
}

func (r *PaymentMethodRepo) Insert(pm *domain.PaymentMethod) error {
	res, err := r.db.Exec(
		`INSERT INTO payment_methods
		(id, collective_id, type, name, currency, created_at)
		VALUES (?,?,?,?,?,?)`,
		zeroAsNull(pm.ID), pm.CollectiveID, string(pm.Type), pm.Name, pm.Currency,
		pm.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	pm.ID = id
	return nil
}

// GetByID returns the payment method with the given id, or sql.ErrNoRows.
func (r *PaymentMethodRepo) GetByID(id int64) (*domain.PaymentMethod, error) {
	var pm domain.PaymentMethod
	var typ, createdAt string
	err := r.db.QueryRow(
		`SELECT id, collective_id, type, name, currency, created_at
		FROM payment_methods WHERE id = ?`, id,
	).Scan(&pm.ID, &pm.CollectiveID, &typ, &pm.Name, &pm.Currency, &createdAt)
	if err != nil {
		return nil, err
	}
	pm.Type = domain.PaymentMethodType(typ)
	pm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &pm, nil
}
