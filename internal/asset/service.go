package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/storage"
)

const (
	// sniffLen is how much of the body is buffered to detect a missing content type.
	sniffLen = 3072
	// genericType is what browsers send when they do not know the type either.
	genericType = "application/octet-stream"
)

// Upload is the result of a successful Put.
type Upload struct {
	Reference
	Filename    string
	Size        int64
	ContentType string
	UploadedAt  time.Time
}

// Recorder keeps the upload index in step with the store.
type Recorder interface {
	Record(ctx context.Context, u Upload) error
	Forget(ctx context.Context, key string) error
}

// NopRecorder is used when no upload index is configured.
type NopRecorder struct{}

// Record does nothing.
func (NopRecorder) Record(context.Context, Upload) error { return nil }

// Forget does nothing.
func (NopRecorder) Forget(context.Context, string) error { return nil }

// Service writes uploads to storage under derived keys.
type Service struct {
	store storage.Storage
	index Recorder
	lg    *zap.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for key derivation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder enables the upload index.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.index = r }
}

// NewService creates a new asset Service.
func NewService(store storage.Storage, lg *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		index: NopRecorder{},
		lg:    lg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores body under KeyFor(now, filename) and returns its reference.
// An empty or generic contentType is detected from the first bytes of body.
// Index failures are logged and do not fail the upload.
func (s *Service) Put(ctx context.Context, body io.Reader, size int64, filename, contentType string) (*Upload, error) {
	uploadedAt := s.now()
	key := KeyFor(uploadedAt, filename)

	if contentType == "" || contentType == genericType {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(body, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("put asset %q: %w: %w", key, storage.ErrUploadFailed, err)
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), body)
	}

	if err := s.store.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("put asset: %w", err)
	}

	u := &Upload{
		Reference:   Reference{Key: key, URL: s.store.PublicURL(key)},
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  uploadedAt.UTC(),
	}
	if err := s.index.Record(ctx, *u); err != nil {
		s.lg.Warn("upload index: record failed", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

// Forget removes key from the upload index. Failures are logged only.
func (s *Service) Forget(ctx context.Context, key string) {
	if err := s.index.Forget(ctx, key); err != nil {
		s.lg.Warn("upload index: forget failed", zap.String("key", key), zap.Error(err))
	}
}
