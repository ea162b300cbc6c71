package services

import (
	"context"
	"io"

	"staffdesk/internal/logger"
	"staffdesk/internal/models"
	"staffdesk/internal/storage"
)

type DocumentService struct {
	Store storage.BlobStore
}

func NewDocumentService(store storage.BlobStore) *DocumentService {
	return &DocumentService{Store: store}
}

// Upload validates a document and writes it under a fresh object key.
func (s *DocumentService) Upload(ctx context.Context, p models.Principal, filename, contentType string, size int64, body io.Reader) (*models.Document, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := storage.ValidateUpload(contentType, size); err != nil {
		return nil, err
	}

	key := storage.ObjectKey(contentType)
	url, err := s.Store.Put(ctx, key, contentType, io.LimitReader(body, storage.MaxUploadSize), size)
	if err != nil {
		return nil, err
	}

	l := logger.FromContext(ctx)
	l.Info().Int("account_id", p.AccountID).Str("key", key).Int64("bytes", size).Msg("document uploaded")

	return &models.Document{
		URL:  url,
		Key:  key,
		Name: filename,
		Size: size,
		Type: contentType,
	}, nil
}
