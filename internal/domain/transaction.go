package domain

import "time"

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Transaction is a single ledger movement. All amounts are integers in minor
// currency units. A CREDIT moves money toward CollectiveID, a DEBIT away
// from it.
type Transaction struct {
	ID                               int64           `json:"id"`
	UUID                             string          `json:"uuid"`
	Type                             TransactionType `json:"type"`
	Description                      string          `json:"description"`
	Amount                           int64           `json:"amount"`
	Currency                         string          `json:"currency"`
	AmountInHostCurrency             int64           `json:"amountInHostCurrency"`
	HostCurrency                     string          `json:"hostCurrency"`
	NetAmountInCollectiveCurrency    int64           `json:"netAmountInCollectiveCurrency"`
	CollectiveID                     int64           `json:"CollectiveId"`
	FromCollectiveID                 int64           `json:"FromCollectiveId"`
	HostCollectiveID                 int64           `json:"HostCollectiveId"`
	UsingVirtualCardFromCollectiveID *int64          `json:"UsingVirtualCardFromCollectiveId,omitempty"`
	PaymentMethodID                  *int64          `json:"PaymentMethodId,omitempty"`
	OrderID                          *int64          `json:"OrderId,omitempty"`
	CreatedAt                        time.Time       `json:"createdAt"`
}
