package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, f.err
}

func TestRepository_Record(t *testing.T) {
	db := &fakeExecer{}
	repo := NewRepository(db)
	at := time.UnixMilli(1700000000000).UTC()

	err := repo.Record(context.Background(), Upload{
		Reference:   Reference{Key: "uploads/1700000000000-a.png", URL: "http://cdn/uploads/1700000000000-a.png"},
		Filename:    "a.png",
		Size:        42,
		ContentType: "image/png",
		UploadedAt:  at,
	})
	require.NoError(t, err)
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "ON CONFLICT (key) DO UPDATE")
	assert.Equal(t, []any{"uploads/1700000000000-a.png", "a.png", int64(42), "image/png", at}, db.calls[0].args)
}

func TestRepository_Forget(t *testing.T) {
	db := &fakeExecer{}
	repo := NewRepository(db)

	require.NoError(t, repo.Forget(context.Background(), "uploads/x"))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "DELETE FROM uploads")
	assert.Equal(t, []any{"uploads/x"}, db.calls[0].args)
}

func TestRepository_WrapsErrors(t *testing.T) {
	boom := errors.New("conn refused")
	repo := NewRepository(&fakeExecer{err: boom})

	err := repo.Record(context.Background(), Upload{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "record upload")

	err = repo.Forget(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}
