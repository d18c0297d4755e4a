// Package files is the storage gateway: it turns HTTP requests into object
// store calls and JSON responses.
package files

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/inkpad/service/internal/asset"
	"github.com/inkpad/service/internal/storage"
)

// Service contains the gateway operations. It holds no state of its own.
type Service struct {
	store  storage.Storage
	assets *asset.Service
}

// NewService creates a new files Service.
func NewService(store storage.Storage, assets *asset.Service) *Service {
	return &Service{store: store, assets: assets}
}

// Buckets returns every bucket visible to the configured credentials.
func (s *Service) Buckets(ctx context.Context) ([]storage.Bucket, error) {
	return s.store.ListBuckets(ctx)
}

// List returns one page of objects.
func (s *Service) List(ctx context.Context, opts storage.ListOptions) (storage.Page, error) {
	return s.store.List(ctx, opts)
}

// Upload stores body as a new asset.
func (s *Service) Upload(ctx context.Context, body io.Reader, size int64, filename, contentType string) (*asset.Upload, error) {
	return s.assets.Put(ctx, body, size, filename, contentType)
}

// SignedURL returns a time-limited URL for key. Absent keys fail with
// storage.ErrNotFound instead of yielding a URL that cannot resolve.
func (s *Service) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if _, err := s.store.Stat(ctx, key); err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, key, expires)
	if err != nil {
		return "", fmt.Errorf("signed url %q: %w", key, err)
	}
	return u, nil
}

// Metadata returns the stored metadata for key.
func (s *Service) Metadata(ctx context.Context, key string) (*storage.Metadata, error) {
	return s.store.Stat(ctx, key)
}

// Delete removes key from the store and the upload index.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.assets.Forget(ctx, key)
	return nil
}
