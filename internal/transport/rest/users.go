package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitpay-api/internal/service"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, "Server error", err)
		return
	}
	Success(w, "Users retrieved successfully", users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Invalid user", err)
		return
	}

	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, "Failed to create user", err)
		return
	}
	Created(w, "User created successfully", u)
}

func (h *Handler) findUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	u, err := h.users.Find(r.Context(), q.Get("userUUID"), q.Get("mobileNumber"))
	if err != nil {
		writeError(w, r, "User not found", err)
		return
	}
	Success(w, "User retrieved successfully", u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "User not found", err)
		return
	}
	Success(w, "User retrieved successfully", u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateUserInput
	if err := h.bind(w, r, &in); err != nil {
		writeError(w, r, "Invalid user", err)
		return
	}

	u, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, "Failed to update user", err)
		return
	}
	Success(w, "User updated successfully", u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "Failed to delete user", err)
		return
	}
	Success(w, "User deleted", u)
}
