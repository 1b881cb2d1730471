package domain

import "time"

type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderPaid      OrderStatus = "PAID"
	OrderError     OrderStatus = "ERROR"
	OrderCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID               int64       `json:"id"`
	FromCollectiveID int64       `json:"FromCollectiveId"`
	CollectiveID     int64       `json:"CollectiveId"`
	Description      string      `json:"description"`
	TotalAmount      int64       `json:"totalAmount"`
	Currency         string      `json:"currency"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
}
