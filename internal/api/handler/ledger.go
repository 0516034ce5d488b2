package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
)

// ReceiptRequest is the body of POST /transactions/receipts.
type ReceiptRequest struct {
	Project  string          `json:"project"`
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
}

// PayoutRequest is the body of POST /transactions/payouts.
type PayoutRequest struct {
	Recipient string          `json:"recipient"`
	Role      string          `json:"role" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// ListTransactions returns the ledger, optionally filtered by ?type=.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter state.TypeFilter
	switch t := models.TransactionType(r.URL.Query().Get("type")); t {
	case "", "all":
	case models.TransactionReceive, models.TransactionPayout:
		filter.Type = t
	default:
		JSONError(w, NewBadRequest("invalid type filter: "+string(t)))
		return
	}
	OK(w, h.store.Transactions(filter))
}

// RecordReceipt records money received from a customer.
func (h *Handler) RecordReceipt(w http.ResponseWriter, r *http.Request) {
	var req ReceiptRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}
	tx, err := h.store.RecordReceipt(r.Context(), req.Project, req.Customer, req.Amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	Created(w, tx)
}

// RecordPayout records money paid to a member.
func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		JSONError(w, NewValidationError("unknown role: "+req.Role))
		return
	}
	tx, err := h.store.RecordPayout(r.Context(), req.Recipient, role, req.Amount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	Created(w, tx)
}
