package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrFileNotFound = errors.New("file not found")

// StorageClient keeps exports and uploaded images on local disk and serves
// them under PublicPrefix.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string
	BaseURL      string
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./storage"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: strings.TrimRight(publicPrefix, "/"),
		BaseURL:      strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes data under a random prefix and returns the stored name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	stored := hex.EncodeToString(randBytes) + "_" + fileName

	path := filepath.Join(s.BaseDir, stored)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return stored, nil
}

// Upload satisfies the image uploader used when S3 is disabled.
func (s *StorageClient) Upload(ctx context.Context, fileName, _ string, data []byte) (string, error) {
	stored, err := s.Save(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.GetURL(stored), nil
}

func (s *StorageClient) GetURL(fileName string) string {
	if s.BaseURL != "" {
		return s.BaseURL + s.PublicPrefix + "/" + fileName
	}
	return s.PublicPrefix + "/" + fileName
}

// Resolve maps a stored name to its path on disk. The name must not escape
// BaseDir.
func (s *StorageClient) Resolve(stored string) (string, error) {
	if stored == "" || stored != filepath.Base(stored) || strings.HasPrefix(stored, ".") {
		return "", ErrFileNotFound
	}
	path := filepath.Join(s.BaseDir, stored)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrFileNotFound
	}
	return path, nil
}

// OriginalName strips the random prefix added by Save.
func OriginalName(stored string) string {
	if idx := strings.IndexByte(stored, '_'); idx >= 0 {
		return stored[idx+1:]
	}
	return stored
}

func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path)
		}
		return nil
	})
}
