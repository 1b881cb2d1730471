package domain

// DefaultInvoiceTitle is used when a host has no invoiceTitle configured.
const DefaultInvoiceTitle = "Donation Receipt"

// InvoiceKind discriminates the three invoice read-model variants.
type InvoiceKind string

const (
	// InvoiceMonthly is a one-month summary for a payer against one host.
	InvoiceMonthly InvoiceKind = "monthly"
	// InvoiceRange covers an arbitrary month range for a payer against one host.
	InvoiceRange InvoiceKind = "range"
	// InvoiceSingleTransaction is a receipt for exactly one transaction.
	InvoiceSingleTransaction InvoiceKind = "transaction"
)

// Invoice is an in-memory read model assembled per request; it is never
// persisted. The variant-specific date fields are only populated for the
// kind they belong to.
type Invoice struct {
	Kind             InvoiceKind `json:"kind"`
	Slug             string      `json:"slug"`
	Title            string      `json:"title,omitempty"`
	HostCollectiveID int64       `json:"HostCollectiveId"`
	FromCollectiveID int64       `json:"FromCollectiveId"`

	// Monthly variant.
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`

	// Range variant.
	YearFrom  int `json:"yearFrom,omitempty"`
	MonthFrom int `json:"monthFrom,omitempty"`
	YearTo    int `json:"yearTo,omitempty"`
	MonthTo   int `json:"monthTo,omitempty"`

	TotalAmount int64  `json:"totalAmount"`
	Currency    string `json:"currency"`

	Host           *Collective   `json:"host,omitempty"`
	FromCollective *Collective   `json:"fromCollective,omitempty"`
	Transactions   []Transaction `json:"transactions,omitempty"`
}

// InvoiceDate is a calendar month, 1 == January.
type InvoiceDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}
