package api

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/commonsfund/ledger/internal/currency"
	"github.com/commonsfund/ledger/internal/domain"
)

var transactionCSVHeader = []string{
	"createdAt", "uuid", "type", "description",
	"amount", "currency", "amountInHostCurrency", "hostCurrency",
}

// TransactionsCSV renders a collective's transactions as CSV. The same
// filters as the JSON listing apply; pagination is ignored so the export is
// complete.
func (h *Handlers) TransactionsCSV(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	filter := h.transactionFilter(r, c.ID)
	filter.Page = 1
	filter.Limit = maxPageLimit

	txns, _, err := h.txnRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+c.Slug+`-transactions.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionCSVHeader); err != nil {
		slog.Error("write csv header", "error", err)
		return
	}
	for i := range txns {
		if err := cw.Write(transactionCSVRow(&txns[i])); err != nil {
			slog.Error("write csv row", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("flush csv", "error", err)
	}
}

func transactionCSVRow(tx *domain.Transaction) []string {
	return []string{
		tx.CreatedAt.UTC().Format(time.RFC3339),
		tx.UUID,
		string(tx.Type),
		tx.Description,
		currency.Format(tx.Amount, tx.Currency),
		tx.Currency,
		currency.Format(tx.AmountInHostCurrency, tx.HostCurrency),
		tx.HostCurrency,
	}
}
