package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"splitpay-api/internal/domain"
	"splitpay-api/internal/service"
)

type APIError struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type APIResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

func Response(w http.ResponseWriter, httpStatus int, message string, data any, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		Success: apiErr == nil,
		Message: message,
		Data:    data,
		Error:   apiErr,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

func Success(w http.ResponseWriter, message string, data any) {
	Response(w, http.StatusOK, message, data, nil)
}

func Created(w http.ResponseWriter, message string, data any) {
	Response(w, http.StatusCreated, message, data, nil)
}

func Error(w http.ResponseWriter, httpStatus int, message, title, description string) {
	Response(w, httpStatus, message, nil, &APIError{Title: title, Description: description})
}

func ErrorBadRequest(w http.ResponseWriter, message, description string) {
	Error(w, http.StatusBadRequest, message, "Validation Error", description)
}

func ErrorNotFound(w http.ResponseWriter, message, description string) {
	Error(w, http.StatusNotFound, message, "Not Found", description)
}

func ErrorConflict(w http.ResponseWriter, message, description string) {
	Error(w, http.StatusConflict, message, "Conflict", description)
}

func ErrorInternal(w http.ResponseWriter, message, description string) {
	Error(w, http.StatusInternalServerError, message, "Server Error", description)
}

// writeError maps service errors onto the envelope. message is the
// operation-level summary shown to clients.
func writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var vErr *domain.ValidationError
	var dErr *service.DeliveryError

	switch {
	case errors.As(err, &vErr):
		ErrorBadRequest(w, message, vErr.Message)
	case errors.Is(err, domain.ErrNotFound):
		ErrorNotFound(w, message, err.Error())
	case errors.Is(err, domain.ErrConflict):
		ErrorConflict(w, message, err.Error())
	case errors.As(err, &dErr):
		slog.Error("push delivery failed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, message, "OneSignal Error", err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		ErrorInternal(w, message, err.Error())
	}
}
