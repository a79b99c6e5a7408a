package service

import (
	"context"
	"net/http"
	"strings"

	"splitpay-api/internal/domain"
)

const MaxImageBytes = 10 << 20

type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

type UploadService struct {
	uploader Uploader
}

func NewUploadService(uploader Uploader) *UploadService {
	return &UploadService{uploader: uploader}
}

// UploadImage stores an image and returns its public URL.
func (s *UploadService) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &domain.ValidationError{Field: "image", Message: "No file uploaded"}
	}
	if len(data) > MaxImageBytes {
		return "", &domain.ValidationError{Field: "image", Message: "File too large (max 10MB)"}
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", &domain.ValidationError{Field: "image", Message: "Only image uploads are allowed"}
	}

	return s.uploader.Upload(ctx, fileName, contentType, data)
}
