package seed

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/commonsfund/ledger/internal/domain"
)

// Fixture is the JSON shape of a seed file.
type Fixture struct {
	Collectives    []domain.Collective    `json:"collectives"`
	Members        []domain.Member        `json:"members"`
	PaymentMethods []domain.PaymentMethod `json:"paymentMethods"`
	Transactions   []domain.Transaction   `json:"transactions"`
	Orders         []domain.Order         `json:"orders"`
	Expenses       []domain.Expense       `json:"expenses"`
	Updates        []domain.Update        `json:"updates"`
}

// ParseFixture decodes a seed file and fills in transaction UUIDs the file
// left blank.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal fixture: %w", err)
	}

	for i := range f.Transactions {
		if f.Transactions[i].UUID == "" {
			f.Transactions[i].UUID = uuid.New().String()
		}
	}

	return &f, nil
}
