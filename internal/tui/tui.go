// Package tui is the terminal asset gallery: a bubbletea program that
// browses the gateway through a listing.Session.
package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/files"
	"github.com/inkpad/service/internal/storage"
)

// API is the part of the gateway client the gallery uses.
type API interface {
	ListPage(ctx context.Context, opts storage.ListOptions) (storage.Page, error)
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*files.UploadResponse, error)
	FileURL(ctx context.Context, key string, expires time.Duration) (string, error)
	Metadata(ctx context.Context, key string) (*storage.Metadata, error)
	Delete(ctx context.Context, key string) error
}

// Options configures the gallery.
type Options struct {
	PageSize   int
	Prefix     string
	ImagesOnly bool
	PublicBase string // used for "copy public URL"; empty disables it
}

// Run starts the gallery and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, api API, opts Options, lg *zap.Logger) error {
	p := tea.NewProgram(New(api, opts, lg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
