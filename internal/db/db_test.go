package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/000001_create_uploads.up.sql")
	assert.Contains(t, names, "migrations/000001_create_uploads.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_create_uploads.up.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS uploads"))
}

func TestMigrationSourceParses(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestConnectRejectsBadURL(t *testing.T) {
	pool, err := Connect(context.Background(), "postgres://inkpad@localhost:5432/inkpad?pool_max_conns=many", zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "parse database url")
}
