package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitpay-api/internal/service"
)

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var in service.CreateBillInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Error creating bill", err)
		return
	}

	out, err := h.bills.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, "Error creating bill", err)
		return
	}
	Created(w, "Bill created successfully", out)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.List(r.Context())
	if err != nil {
		writeError(w, r, "Error fetching bills", err)
		return
	}
	Success(w, "Bills retrieved successfully", bills)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.bills.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "Bill not found", err)
		return
	}
	Success(w, "Bill retrieved successfully", bill)
}
