package clients

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	// PublicBaseURL overrides the endpoint-derived object URL, e.g. a CDN host.
	PublicBaseURL string
}

type S3Client struct {
	raw     *minio.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Client{
		raw:     client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: objectBaseURL(cfg),
	}, nil
}

func objectBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
}

// ObjectKey builds prefix + unix millis + "-" + uuid + original extension.
func (c *S3Client) ObjectKey(fileName string, now time.Time) string {
	return fmt.Sprintf("%s%d-%s%s", c.prefix, now.UnixMilli(), uuid.NewString(), strings.ToLower(filepath.Ext(fileName)))
}

// Upload stores an image object and returns its public URL.
func (c *S3Client) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	key := c.ObjectKey(fileName, time.Now())
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return c.baseURL + "/" + key, nil
}
