package files

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appMiddleware "github.com/inkpad/service/internal/middleware"
	"github.com/inkpad/service/internal/storage"
)

func newBlobRouter(t *testing.T, now func() time.Time) (*storage.MemoryStorage, http.Handler) {
	t.Helper()
	store := storage.NewMemoryStorage("assets", "http://gw/blobs", []byte("k"), storage.WithClock(now))
	require.NoError(t, store.Upload(context.Background(), "uploads/1-a b.txt", strings.NewReader("hello"), 5, "text/plain"))

	r := chi.NewRouter()
	r.Use(appMiddleware.EscapedRoutePath)
	r.Handle("/blobs/*", NewBlobHandler(store, zap.NewNop()))
	return store, r
}

func TestBlobHandler(t *testing.T) {
	current := time.Unix(1700000000, 0)
	store, r := newBlobRouter(t, func() time.Time { return current })

	signed, err := store.PresignGet(context.Background(), "uploads/1-a b.txt", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)
	sig := u.Query().Get(storage.SignatureParam)

	path := "/blobs/uploads/1-a%20b.txt"
	tests := []struct {
		name    string
		target  string
		advance time.Duration
		status  int
	}{
		{"public", path, 0, http.StatusOK},
		{"signed", path + "?signature=" + sig, 0, http.StatusOK},
		{"tampered", path + "?signature=" + sig + "x", 0, http.StatusForbidden},
		{"missing", "/blobs/uploads/nope.txt", 0, http.StatusNotFound},
		{"expired", path + "?signature=" + sig, 2 * time.Minute, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current = current.Add(tt.advance)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "hello", rec.Body.String())
				assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
				assert.NotEmpty(t, rec.Header().Get("ETag"))
			}
		})
	}
}
