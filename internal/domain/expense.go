package domain

import "time"

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
	ExpensePaid     ExpenseStatus = "PAID"
)

type Expense struct {
	ID               int64         `json:"id"`
	CollectiveID     int64         `json:"CollectiveId"`
	UserCollectiveID int64         `json:"UserCollectiveId"`
	Description      string        `json:"description"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Category         string        `json:"category,omitempty"`
	Status           ExpenseStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}
