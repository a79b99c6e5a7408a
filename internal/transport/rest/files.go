package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitpay-api/internal/clients"
	"splitpay-api/internal/domain"
	"splitpay-api/internal/service"
)

const imageField = "image"

type FileResolver interface {
	Resolve(stored string) (string, error)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(service.MaxImageBytes); err != nil {
		writeError(w, r, "Upload failed", &domain.ValidationError{Field: imageField, Message: "invalid form or file too large"})
		return
	}
	file, header, err := r.FormFile(imageField)
	if err != nil {
		writeError(w, r, "Upload failed", &domain.ValidationError{Field: imageField, Message: "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		writeError(w, r, "Upload failed", fmt.Errorf("read upload: %w", err))
		return
	}

	url, err := h.uploads.UploadImage(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, r, "Upload failed", err)
		return
	}
	Success(w, "Image uploaded successfully", map[string]string{"imageUrl": url})
}

// FileHandler serves stored files as attachments under their original name.
func FileHandler(files FileResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored := chi.URLParam(r, "file")
		path, err := files.Resolve(stored)
		if err != nil {
			if errors.Is(err, clients.ErrFileNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(stored)))
		http.ServeFile(w, r, path)
	}
}
