package domain

import (
	"encoding/json"
	"time"
)

type CollectiveType string

const (
	TypeCollective   CollectiveType = "COLLECTIVE"
	TypeOrganization CollectiveType = "ORGANIZATION"
	TypeUser         CollectiveType = "USER"
	TypeEvent        CollectiveType = "EVENT"
)

// CollectiveSettings is the free-form settings blob stored on a collective.
// Only the keys this layer reads are modelled.
type CollectiveSettings struct {
	InvoiceTitle string `json:"invoiceTitle,omitempty"`
}

type Collective struct {
	ID               int64              `json:"id"`
	Slug             string             `json:"slug"`
	Name             string             `json:"name"`
	Type             CollectiveType     `json:"type"`
	Currency         string             `json:"currency"`
	Settings         CollectiveSettings `json:"settings"`
	Tags             []string           `json:"tags,omitempty"`
	HostCollectiveID *int64             `json:"HostCollectiveId,omitempty"`
	IsActive         bool               `json:"isActive"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// InvoiceTitle returns the host's configured invoice title, or the platform
// default when none is set.
func (c *Collective) InvoiceTitle() string {
	if c.Settings.InvoiceTitle != "" {
		return c.Settings.InvoiceTitle
	}
	return DefaultInvoiceTitle
}

// EncodeSettings serializes the settings blob for storage.
func (c *Collective) EncodeSettings() (string, error) {
	b, err := json.Marshal(c.Settings)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
