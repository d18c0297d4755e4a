package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListOptions_PageSize(t *testing.T) {
	tests := []struct {
		name    string
		maxKeys int
		want    int
	}{
		{"zero uses default", 0, DefaultPageSize},
		{"negative uses default", -5, DefaultPageSize},
		{"within range", 12, 12},
		{"at max", MaxPageSize, MaxPageSize},
		{"clamped", 5000, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListOptions{MaxKeys: tt.maxKeys}.PageSize())
		})
	}
}

func TestNewPage(t *testing.T) {
	last := NewPage(nil, "")
	assert.NotNil(t, last.Objects)
	assert.False(t, last.IsTruncated)

	more := NewPage([]Object{{Key: "a"}}, "tok")
	assert.True(t, more.IsTruncated)
	assert.Equal(t, "tok", more.NextToken)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://cdn/a/b.png", joinURL("http://cdn/", "a/b.png"))
	assert.Equal(t, "http://cdn/a/b.png", joinURL("http://cdn", "a/b.png"))
}

func TestTrimETag(t *testing.T) {
	assert.Equal(t, "abc", trimETag(`"abc"`))
	assert.Equal(t, "abc", trimETag("abc"))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Driver:     DriverMemory,
		Bucket:     "assets",
		PublicBase: "http://localhost:8080/blobs",
		SigningKey: "k",
	}, zap.NewNop())
	require.NoError(t, err)

	_, ok := s.(Opener)
	assert.True(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "ftp"}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown storage driver "ftp"`)
}
