package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/commonsfund/ledger/internal/domain"
	"github.com/commonsfund/ledger/internal/errs"
	"github.com/commonsfund/ledger/internal/invoice"
	"github.com/commonsfund/ledger/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	collectiveRepo *repository.CollectiveRepo
	txnRepo        *repository.TransactionRepo
	memberRepo     *repository.MemberRepo
	orderRepo      *repository.OrderRepo
	expenseRepo    *repository.ExpenseRepo
	updateRepo     *repository.UpdateRepo
	invoiceSvc     *invoice.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Validation
// errors carry their machine-readable field list.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *errs.ValidationError
	switch {
	case errs.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errs.IsUnauthorized(err):
		status := http.StatusForbidden
		if CallerFrom(r.Context()) == nil {
			status = http.StatusUnauthorized
		}
		writeError(w, status, err.Error())
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  ve.Message,
			"fields": ve.Fields,
		})
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseAmount(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// getCollective resolves a slug URL parameter, writing 404 on a miss.
func (h *Handlers) getCollective(w http.ResponseWriter, r *http.Request) *domain.Collective {
	slug := chi.URLParam(r, "slug")
	c, err := h.collectiveRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "collective not found: "+slug)
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil
	}
	return c
}

// --- collectives ---

func (h *Handlers) ListCollectives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := PageFrom(r.Context())
	sortBy, desc := sortParams(r, "createdAt", "name", "slug")

	filter := repository.CollectiveFilter{
		Type:     q.Get("type"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		SortBy:   sortBy,
		SortDesc: desc,
		Page:     page.Number,
		Limit:    page.Limit,
	}
	if v := q.Get("hostCollectiveId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hostCollectiveId")
			return
		}
		filter.HostCollectiveID = id
	}
	if v := q.Get("isActive"); v != "" {
		active := v == "true" || v == "1"
		filter.IsActive = &active
	}

	collectives, total, err := h.collectiveRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"collectives": collectives,
		"total":       total,
		"page":        filter.Page,
		"limit":       filter.Limit,
	})
}

func (h *Handlers) GetCollective(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// --- members ---

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	page := PageFrom(r.Context())
	members, total, err := h.memberRepo.List(repository.MemberFilter{
		CollectiveID: c.ID,
		Role:         r.URL.Query().Get("role"),
		Page:         page.Number,
		Limit:        page.Limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"total":   total,
		"page":    page.Number,
		"limit":   page.Limit,
	})
}

// --- expenses ---

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	q := r.URL.Query()
	page := PageFrom(r.Context())
	sortBy, desc := sortParams(r, "createdAt", "amount")

	expenses, total, err := h.expenseRepo.List(repository.ExpenseFilter{
		CollectiveID: c.ID,
		Status:       q.Get("status"),
		Category:     q.Get("category"),
		SortBy:       sortBy,
		SortDesc:     desc,
		Page:         page.Number,
		Limit:        page.Limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"total":    total,
		"page":     page.Number,
		"limit":    page.Limit,
	})
}

// --- orders ---

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	page := PageFrom(r.Context())
	sortBy, desc := sortParams(r, "createdAt", "totalAmount")

	orders, total, err := h.orderRepo.List(repository.OrderFilter{
		CollectiveID: c.ID,
		Status:       r.URL.Query().Get("status"),
		SortBy:       sortBy,
		SortDesc:     desc,
		Page:         page.Number,
		Limit:        page.Limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
		"page":   page.Number,
		"limit":  page.Limit,
	})
}

// --- updates ---

func (h *Handlers) ListUpdates(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	// Admins see drafts and private updates; everyone else gets published
	// public ones only.
	isAdmin := CallerFrom(r.Context()).IsAdmin(c.ID)

	page := PageFrom(r.Context())
	updates, total, err := h.updateRepo.List(repository.UpdateFilter{
		CollectiveID:   c.ID,
		PublishedOnly:  !isAdmin,
		IncludePrivate: isAdmin,
		Page:           page.Number,
		Limit:          page.Limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updates": updates,
		"total":   total,
		"page":    page.Number,
		"limit":   page.Limit,
	})
}

// --- transactions ---

func (h *Handlers) transactionFilter(r *http.Request, collectiveID int64) repository.TransactionFilter {
	q := r.URL.Query()
	page := PageFrom(r.Context())
	return repository.TransactionFilter{
		CollectiveID: collectiveID,
		Type:         q.Get("type"),
		MinAmount:    parseAmount(q.Get("minAmount")),
		MaxAmount:    parseAmount(q.Get("maxAmount")),
		From:         parseTime(q.Get("dateFrom")),
		To:           parseTime(q.Get("dateTo")),
		Page:         page.Number,
		Limit:        page.Limit,
	}
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	c := h.getCollective(w, r)
	if c == nil {
		return
	}

	filter := h.transactionFilter(r, c.ID)
	txns, total, err := h.txnRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// --- invoices ---

func (h *Handlers) AllInvoices(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	invoices, err := h.invoiceSvc.AllInvoices(caller, chi.URLParam(r, "fromCollectiveSlug"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *Handlers) InvoiceBySlug(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	inv, err := h.invoiceSvc.BySlug(caller, chi.URLParam(r, "invoiceSlug"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handlers) InvoiceByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	for _, p := range []string{"yearFrom", "monthFrom", "yearTo", "monthTo"} {
		if q.Get(p) == "" {
			writeError(w, http.StatusBadRequest, "missing required argument: "+p)
			return
		}
	}

	dateFrom := domain.InvoiceDate{
		Year:  parseIntDefault(q.Get("yearFrom"), 0),
		Month: parseIntDefault(q.Get("monthFrom"), 0),
	}
	dateTo := domain.InvoiceDate{
		Year:  parseIntDefault(q.Get("yearTo"), 0),
		Month: parseIntDefault(q.Get("monthTo"), 0),
	}

	caller := CallerFrom(r.Context())
	inv, err := h.invoiceSvc.ByDateRange(caller, dateFrom, dateTo,
		chi.URLParam(r, "hostSlug"), chi.URLParam(r, "fromCollectiveSlug"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handlers) TransactionInvoice(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	inv, err := h.invoiceSvc.ByTransactionUUID(caller, chi.URLParam(r, "uuid"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
