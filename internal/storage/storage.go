// Package storage validates uploads and writes them to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"staffdesk/internal/apperr"
	"staffdesk/internal/config"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted document, 10 MiB.
const MaxUploadSize int64 = 10 << 20

// AllowedTypes maps accepted MIME types to the extension stored objects get.
var AllowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// BlobStore writes an object and returns the URL it can be fetched from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ValidateUpload checks size and declared type. Failures are validation
// errors and are not retried.
func ValidateUpload(contentType string, size int64) error {
	if size <= 0 {
		return apperr.Validation("file is empty", apperr.FieldError{Field: "file", Message: "file is empty"})
	}
	if size > MaxUploadSize {
		return apperr.Validation("file too large", apperr.FieldError{Field: "file", Message: "file must not exceed 10MB"})
	}
	if _, ok := AllowedTypes[normalizeType(contentType)]; !ok {
		return apperr.Validation("file type not allowed", apperr.FieldError{
			Field:   "file",
			Message: "only PDF, DOC, DOCX, JPG and PNG files are allowed",
		})
	}
	return nil
}

// ObjectKey returns documents/<uuid>.<ext> for an upload. The extension
// follows the validated content type, never the client's filename.
func ObjectKey(contentType string) string {
	return "documents/" + uuid.NewString() + AllowedTypes[normalizeType(contentType)]
}

func normalizeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// New builds the backend selected by storage.driver.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.Storage.Driver {
	case "s3", "":
		return NewS3Store(ctx, cfg)
	case "gcs":
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func publicURL(base, bucket, key string) string {
	if base != "" {
		return strings.TrimRight(base, "/") + "/" + key
	}
	return bucket + "/" + key
}
