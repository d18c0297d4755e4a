// Package client is a Go client for the storage gateway HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/inkpad/service/internal/files"
	"github.com/inkpad/service/internal/storage"
)

// APIError is a non-2xx response from the gateway. Message is the server's
// error string verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway returned %d %s", e.Status, http.StatusText(e.Status))
}

// Is lets callers match gateway errors against the storage sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case storage.ErrNotFound:
		return e.Status == http.StatusNotFound
	case storage.ErrInvalidToken:
		return e.Status == http.StatusBadRequest && e.Message == "Invalid continuation token"
	}
	return false
}

// Client talks to one gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the gateway at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hello calls the liveness probe.
func (c *Client) Hello(ctx context.Context) (*files.HelloResponse, error) {
	var out files.HelloResponse
	if err := c.get(ctx, "/api/hello", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Buckets lists the buckets visible to the gateway.
func (c *Client) Buckets(ctx context.Context) ([]storage.Bucket, error) {
	var out files.BucketsResponse
	if err := c.get(ctx, "/api/buckets", nil, &out); err != nil {
		return nil, err
	}
	return out.Buckets, nil
}

// ListFiles uses the non-paginated listing and returns the first page's objects.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]storage.Object, error) {
	q := url.Values{}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	var out files.FilesResponse
	if err := c.get(ctx, "/api/files", q, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// ListPage fetches one page of the paginated listing.
func (c *Client) ListPage(ctx context.Context, opts storage.ListOptions) (storage.Page, error) {
	q := url.Values{"limit": {strconv.Itoa(opts.PageSize())}}
	if opts.Prefix != "" {
		q.Set("prefix", opts.Prefix)
	}
	if opts.ContinuationToken != "" {
		q.Set("continuationToken", opts.ContinuationToken)
	}
	var out files.PageResponse
	if err := c.get(ctx, "/api/files", q, &out); err != nil {
		return storage.Page{}, err
	}
	// The wire carries both fields; rebuild so they cannot disagree.
	return storage.NewPage(out.ListObjectsResponse.Objects, out.ListObjectsResponse.NextToken), nil
}

// Upload sends r as a multipart file named filename. The body is streamed.
func (c *Client) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*files.UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out files.UploadResponse
	if err := c.do(req, &out); err != nil {
		pr.Close()
		return nil, err
	}
	return &out, nil
}

// FileURL returns a signed URL for key. A zero expires uses the server default;
// the server works in whole seconds, so partial seconds are rounded up.
func (c *Client) FileURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	q := url.Values{}
	if expires > 0 {
		secs := (expires + time.Second - 1) / time.Second
		q.Set("expires", strconv.FormatInt(int64(secs), 10))
	}
	var out files.URLResponse
	if err := c.get(ctx, "/api/files/"+url.PathEscape(key)+"/url", q, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Metadata returns the stored metadata for key.
func (c *Client) Metadata(ctx context.Context, key string) (*storage.Metadata, error) {
	var out files.MetadataResponse
	if err := c.get(ctx, "/api/files/"+url.PathEscape(key)+"/metadata", nil, &out); err != nil {
		return nil, err
	}
	if out.Metadata == nil {
		return nil, errors.New("gateway returned no metadata")
	}
	return out.Metadata, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files/"+url.PathEscape(key), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	return c.do(req, &files.MessageResponse{})
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
