package rest

import (
	"errors"
	"net/http"

	"splitpay-api/internal/service"
)

func (h *Handler) sendBetween(w http.ResponseWriter, r *http.Request) {
	var in service.SendBetweenInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Invalid request", err)
		return
	}

	res, err := h.notifications.SendBetween(r.Context(), in)
	if err != nil {
		var dErr *service.DeliveryError
		if errors.As(err, &dErr) {
			writeError(w, r, "Failed to send notification", err)
			return
		}
		writeError(w, r, "Invalid request", err)
		return
	}
	Success(w, "Notification sent successfully", res)
}

func (h *Handler) saveTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.SaveTransactionInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Invalid request", err)
		return
	}

	txn, err := h.transactions.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, "Failed to save transaction", err)
		return
	}
	Created(w, "Notification transaction saved", txn)
}
