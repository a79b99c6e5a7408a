package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"splitpay-api/internal/domain"
	"splitpay-api/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

type markPaidRequest struct {
	MarkAsFriendCredit bool `json:"markAsFriendCredit"`
}

type repaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

func (h *Handler) createPaymentRequest(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePaymentRequestInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Missing required fields", err)
		return
	}

	pr, err := h.ledger.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, "Failed to create payment request", err)
		return
	}

	Created(w, "Payment request created successfully", pr)
}

func (h *Handler) listAllPaymentRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.ledger.ListAllForUser(r.Context(), chi.URLParam(r, "userUUID"))
	if err != nil {
		writeError(w, r, "Failed to fetch payment requests", err)
		return
	}
	Success(w, "Payment requests retrieved successfully", views)
}

func (h *Handler) listPaymentRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.ledger.ListForUser(r.Context(), chi.URLParam(r, "userUUID"))
	if err != nil {
		writeError(w, r, "Failed to fetch payment requests", err)
		return
	}
	Success(w, "Payment requests retrieved successfully", views)
}

func (h *Handler) exportStatement(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		ErrorNotFound(w, "Export not available", "statement export is not configured")
		return
	}

	res, err := h.exports.ExportStatement(r.Context(), chi.URLParam(r, "userUUID"))
	if err != nil {
		writeError(w, r, "Failed to export statement", err)
		return
	}
	Success(w, "Statement exported successfully", res)
}

func (h *Handler) getPaymentRequestDetail(w http.ResponseWriter, r *http.Request) {
	userUUID := strings.TrimSpace(r.URL.Query().Get("userUUID"))

	detail, err := h.ledger.GetDetail(r.Context(), chi.URLParam(r, "id"), userUUID)
	if err != nil {
		writeError(w, r, "Payment request not found", err)
		return
	}
	Success(w, "Payment request retrieved successfully", detail)
}

func (h *Handler) setPaymentRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "Invalid status value", err)
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, "Invalid status value", err)
		return
	}

	pr, err := h.ledger.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, r, "Failed to update payment request status", err)
		return
	}
	Success(w, "Payment request status updated successfully", pr)
}

func (h *Handler) declinePaymentRequest(w http.ResponseWriter, r *http.Request) {
	pr, err := h.ledger.Decline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "Failed to decline payment request", err)
		return
	}
	Success(w, "Payment request declined successfully", pr)
}

func (h *Handler) markPaymentRequestPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, "Invalid request", err)
		return
	}

	pr, err := h.ledger.MarkPaid(r.Context(), chi.URLParam(r, "id"), req.MarkAsFriendCredit)
	if err != nil {
		writeError(w, r, "Failed to mark payment request as paid", err)
		return
	}
	Success(w, "Payment request marked as paid", pr)
}

func (h *Handler) addRepayment(w http.ResponseWriter, r *http.Request) {
	var req repaymentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "Invalid repayment", err)
		return
	}

	res, err := h.ledger.AddRepayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Notes)
	if err != nil {
		writeError(w, r, "Failed to add repayment", err)
		return
	}
	Created(w, "Repayment added successfully", res)
}

