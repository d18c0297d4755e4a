package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMemory(t *testing.T, keys ...string) (*MemoryStorage, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := NewMemoryStorage("assets", "http://localhost:8080/blobs/", []byte("secret"), WithClock(clock.Now))
	for _, k := range keys {
		require.NoError(t, s.Upload(context.Background(), k, strings.NewReader("data:"+k), -1, "text/plain"))
	}
	return s, clock
}

func TestMemoryStorage_ListPaginates(t *testing.T) {
	s, _ := newTestMemory(t, "uploads/c", "uploads/a", "docs/x", "uploads/b", "uploads/d", "uploads/e")
	ctx := context.Background()

	var got []string
	token := ""
	pages := 0
	for {
		page, err := s.List(ctx, ListOptions{Prefix: "uploads/", ContinuationToken: token, MaxKeys: 2})
		require.NoError(t, err)
		pages++
		assert.Equal(t, page.NextToken != "", page.IsTruncated)
		for _, o := range page.Objects {
			got = append(got, o.Key)
		}
		if !page.IsTruncated {
			break
		}
		token = page.NextToken
	}

	assert.Equal(t, []string{"uploads/a", "uploads/b", "uploads/c", "uploads/d", "uploads/e"}, got)
	assert.Equal(t, 3, pages)
}

func TestMemoryStorage_ListExactMultipleHasNoTrailingPage(t *testing.T) {
	s, _ := newTestMemory(t, "a", "b", "c", "d")
	ctx := context.Background()

	first, err := s.List(ctx, ListOptions{MaxKeys: 2})
	require.NoError(t, err)
	require.True(t, first.IsTruncated)

	second, err := s.List(ctx, ListOptions{MaxKeys: 2, ContinuationToken: first.NextToken})
	require.NoError(t, err)
	assert.Len(t, second.Objects, 2)
	assert.False(t, second.IsTruncated)
	assert.Empty(t, second.NextToken)
}

func TestMemoryStorage_ListInvalidToken(t *testing.T) {
	s, _ := newTestMemory(t, "a")

	_, err := s.List(context.Background(), ListOptions{ContinuationToken: "%%%not-base64"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryStorage_ListCanceledContext(t *testing.T) {
	s, _ := newTestMemory(t, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx, ListOptions{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMemoryStorage_StatAndUploadReplace(t *testing.T) {
	s, clock := newTestMemory(t, "uploads/a.txt")
	ctx := context.Background()

	before, err := s.Stat(ctx, "uploads/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len("data:uploads/a.txt")), before.Size)
	assert.Equal(t, "text/plain", before.ContentType)
	assert.Len(t, before.ETag, 32)

	clock.Advance(time.Minute)
	require.NoError(t, s.Upload(ctx, "uploads/a.txt", strings.NewReader("new"), 3, "text/markdown"))

	after, err := s.Stat(ctx, "uploads/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), after.Size)
	assert.Equal(t, "text/markdown", after.ContentType)
	assert.NotEqual(t, before.ETag, after.ETag)
	assert.True(t, after.LastModified.After(before.LastModified))

	_, err = s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_DeleteIsIdempotent(t *testing.T) {
	s, _ := newTestMemory(t, "uploads/a.png")
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "uploads/a.png"))
	require.NoError(t, s.Delete(ctx, "uploads/a.png"))

	page, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
	_, err = s.Stat(ctx, "uploads/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_PublicURL(t *testing.T) {
	s, _ := newTestMemory(t)
	assert.Equal(t, "http://localhost:8080/blobs/uploads/1-a.png", s.PublicURL("uploads/1-a.png"))
}

func signatureOf(t *testing.T, signedURL string) string {
	t.Helper()
	u, err := url.Parse(signedURL)
	require.NoError(t, err)
	sig := u.Query().Get(SignatureParam)
	require.NotEmpty(t, sig)
	return sig
}

func TestMemoryStorage_SignedURLExpires(t *testing.T) {
	s, clock := newTestMemory(t, "uploads/a.png")
	ctx := context.Background()

	signed, err := s.PresignGet(ctx, "uploads/a.png", time.Second)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, s.PublicURL("uploads/a.png")+"?"))
	sig := signatureOf(t, signed)

	blob, err := s.Open(ctx, "uploads/a.png", sig)
	require.NoError(t, err)
	assert.Equal(t, "data:uploads/a.png", string(blob.Data))
	assert.Equal(t, "text/plain", blob.ContentType)

	clock.Advance(1500 * time.Millisecond)
	_, err = s.Open(ctx, "uploads/a.png", sig)
	assert.ErrorIs(t, err, ErrURLExpired)
}

func TestMemoryStorage_SignedURLFractionalSecond(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, int64(900*time.Millisecond))}
	s := NewMemoryStorage("assets", "http://localhost:8080/blobs", []byte("secret"), WithClock(clock.Now))
	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "k.png", strings.NewReader("png"), -1, "image/png"))

	signed, err := s.PresignGet(ctx, "k.png", time.Second)
	require.NoError(t, err)
	sig := signatureOf(t, signed)

	clock.Advance(200 * time.Millisecond)
	_, err = s.Open(ctx, "k.png", sig)
	require.NoError(t, err, "still inside the one second lifetime")

	clock.Advance(799 * time.Millisecond)
	_, err = s.Open(ctx, "k.png", sig)
	require.NoError(t, err)

	clock.Advance(time.Millisecond)
	_, err = s.Open(ctx, "k.png", sig)
	assert.ErrorIs(t, err, ErrURLExpired, "expires exactly one second after issue")
}

func TestCeilSecond(t *testing.T) {
	whole := time.Unix(1700000000, 0)
	assert.True(t, whole.Equal(ceilSecond(whole)))
	assert.True(t, whole.Add(time.Second).Equal(ceilSecond(whole.Add(time.Nanosecond))))
}

func TestMemoryStorage_SignatureBoundToKey(t *testing.T) {
	s, _ := newTestMemory(t, "uploads/a.png", "uploads/b.png")
	ctx := context.Background()

	signed, err := s.PresignGet(ctx, "uploads/a.png", time.Hour)
	require.NoError(t, err)

	_, err = s.Open(ctx, "uploads/b.png", signatureOf(t, signed))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = s.Open(ctx, "uploads/a.png", "garbage")
	assert.ErrorIs(t, err, ErrBadSignature)

	other := NewMemoryStorage("assets", "http://localhost:8080/blobs", []byte("other-secret"))
	foreign, err := other.PresignGet(ctx, "uploads/a.png", time.Hour)
	require.NoError(t, err)
	_, err = s.Open(ctx, "uploads/a.png", signatureOf(t, foreign))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestMemoryStorage_OpenUnsignedMissing(t *testing.T) {
	s, _ := newTestMemory(t)

	_, err := s.Open(context.Background(), "nope", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_ListBuckets(t *testing.T) {
	s, clock := newTestMemory(t)

	buckets, err := s.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "assets", buckets[0].Name)
	assert.True(t, clock.Now().Equal(buckets[0].CreationDate))
}
