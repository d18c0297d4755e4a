package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/inkpad/service/internal/storage"
)

var (
	// ErrBusy is returned by LoadMore while another LoadMore or a Refresh is outstanding.
	ErrBusy = errors.New("listing: load more already in progress")
	// ErrNoMorePages is returned by LoadMore when the view is not truncated.
	ErrNoMorePages = errors.New("listing: no more pages")
	// ErrStale is returned when a response arrives after a newer Refresh was
	// issued. The response is discarded and the view is left as it is.
	ErrStale = errors.New("listing: response superseded by a newer refresh")
)

// Fetcher returns one page of a listing.
type Fetcher interface {
	ListPage(ctx context.Context, opts storage.ListOptions) (storage.Page, error)
}

// Session is one browsing session over a listing. It is safe for concurrent
// use; fetches run without holding the session lock.
type Session struct {
	fetcher  Fetcher
	pageSize int

	mu          sync.Mutex
	prefix      string
	filter      Filter
	view        View
	generation  uint64
	loadingMore bool
	refreshing  bool

	// viewPrefix and viewFilter are the parameters the view's NextToken
	// belongs to; LoadMore continues that listing.
	viewPrefix string
	viewFilter Filter
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPageSize sets the page size requested from the fetcher.
func WithPageSize(n int) SessionOption {
	return func(s *Session) { s.pageSize = n }
}

// WithPrefix sets the initial key prefix.
func WithPrefix(prefix string) SessionOption {
	return func(s *Session) { s.prefix = prefix }
}

// WithFilter sets the filter applied to every page before it is merged.
func WithFilter(f Filter) SessionOption {
	return func(s *Session) { s.filter = f }
}

// NewSession creates a Session with an empty view. Call Refresh to load the first page.
func NewSession(f Fetcher, opts ...SessionOption) *Session {
	s := &Session{fetcher: f}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches the first page and replaces the view with it. A Refresh
// supersedes every request issued before it: their responses are dropped.
func (s *Session) Refresh(ctx context.Context) (View, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loadingMore = false
	s.refreshing = true
	opts := storage.ListOptions{Prefix: s.prefix, MaxKeys: s.pageSize}
	filter := s.filter
	s.mu.Unlock()

	page, err := s.fetcher.ListPage(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return s.view.Clone(), ErrStale
	}
	s.refreshing = false
	if err != nil {
		return s.view.Clone(), err
	}
	s.view.Apply(filter.Apply(page), false)
	s.viewPrefix = opts.Prefix
	s.viewFilter = filter
	return s.view.Clone(), nil
}

// LoadMore fetches the page after the view's NextToken and appends it.
// It returns ErrBusy while another LoadMore or a Refresh is outstanding and
// ErrNoMorePages when the view cannot load more; neither changes the view.
// The page is requested with the prefix and filter the view was built with.
func (s *Session) LoadMore(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.loadingMore || s.refreshing || !s.view.CanLoadMore() {
		v := s.view.Clone()
		busy := s.loadingMore || s.refreshing
		s.mu.Unlock()
		if busy {
			return v, ErrBusy
		}
		return v, ErrNoMorePages
	}
	s.loadingMore = true
	gen := s.generation
	opts := storage.ListOptions{
		Prefix:            s.viewPrefix,
		ContinuationToken: s.view.NextToken,
		MaxKeys:           s.pageSize,
	}
	filter := s.viewFilter
	s.mu.Unlock()

	page, err := s.fetcher.ListPage(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return s.view.Clone(), ErrStale
	}
	s.loadingMore = false
	if err != nil {
		return s.view.Clone(), err
	}
	s.view.Apply(filter.Apply(page), true)
	return s.view.Clone(), nil
}

// SetPrefix changes the key prefix and refreshes.
func (s *Session) SetPrefix(ctx context.Context, prefix string) (View, error) {
	s.mu.Lock()
	s.prefix = prefix
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// SetFilter changes the filter and refreshes. Filtering happens before the
// merge, so already merged pages cannot be re-filtered in place.
func (s *Session) SetFilter(ctx context.Context, f Filter) (View, error) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Remove drops key from the view, typically after a successful delete.
func (s *Session) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Remove(key)
}

// View returns a snapshot of the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Clone()
}

// Prefix returns the current key prefix.
func (s *Session) Prefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefix
}

// LoadingMore reports whether a LoadMore is outstanding.
func (s *Session) LoadingMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingMore
}
