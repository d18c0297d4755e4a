// Package storage defines the interface for object storage operations.
// Swap implementations by changing the driver selected at startup:
// MinIO, any S3-compatible provider (AWS S3, Cloudflare R2) or the in-memory store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// DefaultPageSize is the page size used when the caller does not choose one.
	DefaultPageSize = 100
	// MaxPageSize is the largest page a provider returns; bigger requests are clamped.
	MaxPageSize = 1000
)

var (
	// ErrNotFound is returned when the key does not exist in the bucket.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidToken is returned when the provider rejects a continuation token.
	ErrInvalidToken = errors.New("invalid continuation token")
	// ErrUnavailable is returned when the store cannot be reached or rejects the request.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrUploadFailed is returned when an object write does not succeed.
	ErrUploadFailed = errors.New("upload failed")
	// ErrURLExpired is returned when a signed URL is used after its expiry.
	ErrURLExpired = errors.New("signed url expired")
	// ErrBadSignature is returned when a signature is malformed or issued for another key.
	ErrBadSignature = errors.New("invalid url signature")
)

// Object is one blob in the store.
type Object struct {
	Key          string    `json:"Key"`
	Size         int64     `json:"Size"`
	LastModified time.Time `json:"LastModified"`
	ETag         string    `json:"ETag"`
}

// Bucket is a bucket visible to the configured credentials.
type Bucket struct {
	Name         string    `json:"Name"`
	CreationDate time.Time `json:"CreationDate"`
}

// Metadata is the result of a HEAD request on a single object.
type Metadata struct {
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType"`
	ETag         string    `json:"etag"`
}

// ListOptions configures a single List call.
type ListOptions struct {
	// Prefix restricts the listing to keys starting with it. Empty lists everything.
	Prefix string
	// ContinuationToken resumes a previous listing. Empty requests the first page.
	ContinuationToken string
	// MaxKeys is the requested page size. Zero means DefaultPageSize.
	MaxKeys int
}

// PageSize returns MaxKeys clamped to the provider range.
func (o ListOptions) PageSize() int {
	switch {
	case o.MaxKeys <= 0:
		return DefaultPageSize
	case o.MaxKeys > MaxPageSize:
		return MaxPageSize
	default:
		return o.MaxKeys
	}
}

// Page is one response from a paginated list query.
type Page struct {
	Objects     []Object `json:"objects"`
	NextToken   string   `json:"nextToken,omitempty"`
	IsTruncated bool     `json:"isTruncated"`
}

// NewPage builds a Page whose IsTruncated flag always agrees with nextToken.
func NewPage(objects []Object, nextToken string) Page {
	if objects == nil {
		objects = []Object{}
	}
	return Page{
		Objects:     objects,
		NextToken:   nextToken,
		IsTruncated: nextToken != "",
	}
}

// Storage is the interface for listing, uploading and retrieving objects.
type Storage interface {
	// ListBuckets returns every bucket the credentials can see.
	ListBuckets(ctx context.Context) ([]Bucket, error)
	// List returns up to opts.PageSize() objects whose key starts with opts.Prefix.
	List(ctx context.Context, opts ListOptions) (Page, error)
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Stat returns the object's metadata or ErrNotFound.
	Stat(ctx context.Context, key string) (*Metadata, error)
	// Delete removes an object identified by key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a GET URL for key that stops working after expires.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// Blob is an object body resolved by an Opener.
type Blob struct {
	Data         []byte
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Opener is implemented by stores that can serve their own objects over HTTP.
type Opener interface {
	// Open returns the blob for key. A non-empty signature must be a valid,
	// unexpired signature issued by PresignGet for the same key.
	Open(ctx context.Context, key, signature string) (*Blob, error)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
