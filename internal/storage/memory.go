package storage

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureParam is the query parameter carrying a memory-store URL signature.
const SignatureParam = "signature"

type memoryObject struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
}

// MemoryStorage is a process-local Storage for development and tests.
// Signed URLs carry an HS256 token bound to the object key.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	bucket     string
	created    time.Time
	publicBase string
	secret     []byte
	now        func() time.Time
}

// MemoryOption configures a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithClock replaces time.Now, e.g. with a fake clock in tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStorage) {
		s.now = now
	}
}

// NewMemoryStorage returns an empty store whose objects are served under publicBase.
func NewMemoryStorage(bucket, publicBase string, secret []byte, opts ...MemoryOption) *MemoryStorage {
	s := &MemoryStorage{
		objects:    make(map[string]memoryObject),
		bucket:     bucket,
		publicBase: publicBase,
		secret:     secret,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.created = s.now().UTC()
	return s
}

// ListBuckets returns the single in-memory bucket.
func (s *MemoryStorage) ListBuckets(_ context.Context) ([]Bucket, error) {
	return []Bucket{{Name: s.bucket, CreationDate: s.created}}, nil
}

// List returns keys in lexical order. The continuation token is the last key
// of the previous page, base64url-encoded; callers must treat it as opaque.
func (s *MemoryStorage) List(ctx context.Context, opts ListOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, unavailable("list objects", err)
	}

	after := ""
	if opts.ContinuationToken != "" {
		raw, err := base64.RawURLEncoding.DecodeString(opts.ContinuationToken)
		if err != nil || len(raw) == 0 {
			return Page{}, fmt.Errorf("list objects: %w", ErrInvalidToken)
		}
		after = string(raw)
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, opts.Prefix) && k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	limit := opts.PageSize()
	next := ""
	if len(keys) > limit {
		keys = keys[:limit]
		next = base64.RawURLEncoding.EncodeToString([]byte(keys[limit-1]))
	}

	objects := make([]Object, 0, len(keys))
	for _, k := range keys {
		o := s.objects[k]
		objects = append(objects, Object{
			Key:          k,
			Size:         int64(len(o.data)),
			LastModified: o.modified,
			ETag:         o.etag,
		})
	}
	s.mu.RUnlock()

	return NewPage(objects, next), nil
}

// Upload stores the reader's content under key, replacing any previous object.
func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put object %q: %w: %w", key, ErrUploadFailed, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("put object %q: %w: %w", key, ErrUploadFailed, err)
	}
	sum := md5.Sum(data)

	s.mu.Lock()
	s.objects[key] = memoryObject{
		data:        data,
		contentType: contentType,
		etag:        hex.EncodeToString(sum[:]),
		modified:    s.now().UTC(),
	}
	s.mu.Unlock()
	return nil
}

// Stat returns the metadata of the object at key.
func (s *MemoryStorage) Stat(_ context.Context, key string) (*Metadata, error) {
	s.mu.RLock()
	o, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("stat object %q: %w", key, ErrNotFound)
	}
	return &Metadata{
		Size:         int64(len(o.data)),
		LastModified: o.modified,
		ContentType:  o.contentType,
		ETag:         o.etag,
	}, nil
}

// Delete removes key. Absent keys are ignored.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// urlClaims binds a signature to a key. The registered exp claim has whole
// second precision, so the exact deadline travels in ExpiresAtNano.
type urlClaims struct {
	jwt.RegisteredClaims
	ExpiresAtNano int64 `json:"exp_ns"`
}

// PresignGet returns the public URL of key with a signature that expires after expires.
func (s *MemoryStorage) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	now := s.now()
	deadline := now.Add(expires)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, urlClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(deadline)),
		},
		ExpiresAtNano: deadline.UnixNano(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign url: %w", err)
	}
	return s.PublicURL(key) + "?" + url.Values{SignatureParam: {signed}}.Encode(), nil
}

// ceilSecond rounds t up to a whole second so the registered exp never
// precedes the exact deadline.
func ceilSecond(t time.Time) time.Time {
	if down := t.Truncate(time.Second); !down.Equal(t) {
		return down.Add(time.Second)
	}
	return t
}

// PublicURL returns the URL under which the blob handler serves key.
func (s *MemoryStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

// Open returns the stored blob for key, verifying signature when one is given.
func (s *MemoryStorage) Open(_ context.Context, key, signature string) (*Blob, error) {
	if signature != "" {
		if err := s.verify(key, signature); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	o, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("open object %q: %w", key, ErrNotFound)
	}
	return &Blob{
		Data:         o.data,
		ContentType:  o.contentType,
		ETag:         o.etag,
		LastModified: o.modified,
	}, nil
}

func (s *MemoryStorage) verify(key, signature string) error {
	claims := &urlClaims{}
	_, err := jwt.ParseWithClaims(signature, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("open object %q: %w", key, ErrURLExpired)
	case err != nil:
		return fmt.Errorf("open object %q: %w: %w", key, ErrBadSignature, err)
	case claims.Subject != key, claims.ExpiresAtNano == 0:
		return fmt.Errorf("open object %q: %w", key, ErrBadSignature)
	case !s.now().Before(time.Unix(0, claims.ExpiresAtNano)):
		return fmt.Errorf("open object %q: %w", key, ErrURLExpired)
	}
	return nil
}
