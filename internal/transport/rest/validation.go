package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"splitpay-api/internal/domain"
)

const maxBodyBytes = 1 << 20

type StructValidator interface {
	Struct(s any) error
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &domain.ValidationError{Field: "body", Message: "request body too large"}
	}
	return &domain.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
}

// bind decodes and validates a JSON body.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst, false); err != nil {
		return err
	}
	if h.validator == nil {
		return nil
	}
	return h.validator.Struct(dst)
}
