package asset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool the repository needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the Postgres-backed upload index.
type Repository struct {
	db Execer
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db Execer) *Repository {
	return &Repository{db: db}
}

// Record upserts the row for u.Key. Re-uploading a key replaces its row.
func (r *Repository) Record(ctx context.Context, u Upload) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO uploads (key, filename, size, content_type, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE
		 SET filename = EXCLUDED.filename,
		     size = EXCLUDED.size,
		     content_type = EXCLUDED.content_type,
		     uploaded_at = EXCLUDED.uploaded_at`,
		u.Key, u.Filename, u.Size, u.ContentType, u.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// Forget deletes the row for key. Absent rows are ignored.
func (r *Repository) Forget(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM uploads WHERE key = $1`, key); err != nil {
		return fmt.Errorf("forget upload: %w", err)
	}
	return nil
}
