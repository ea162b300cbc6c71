package storage

import (
	"context"
	"fmt"
	"io"

	"staffdesk/internal/config"

	gcs "cloud.google.com/go/storage"
)

// GCSStore writes to a Google Cloud Storage bucket using application
// default credentials.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

func NewGCSStore(ctx context.Context, cfg *config.Config) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStore{
		client:  client,
		bucket:  cfg.Storage.Bucket,
		baseURL: cfg.Storage.PublicBaseURL,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}
	return publicURL(s.baseURL, "gs://"+s.bucket, key), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
