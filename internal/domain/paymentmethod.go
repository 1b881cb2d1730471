package domain

import "time"

type PaymentMethodType string

const (
	PaymentMethodCreditCard  PaymentMethodType = "creditcard"
	PaymentMethodVirtualCard PaymentMethodType = "virtualcard"
	PaymentMethodPrepaid     PaymentMethodType = "prepaid"
	PaymentMethodCollective  PaymentMethodType = "collective"
)

// PaymentMethod belongs to the collective that funds it, which may differ
// from the collective a transaction is recorded against (virtual cards).
type PaymentMethod struct {
	ID           int64             `json:"id"`
	CollectiveID int64             `json:"CollectiveId"`
	Type         PaymentMethodType `json:"type"`
	Name         string            `json:"name,omitempty"`
	Currency     string            `json:"currency"`
	CreatedAt    time.Time         `json:"createdAt"`
}
