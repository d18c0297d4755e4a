package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"

	"github.com/inkpad/service/internal/files"
	"github.com/inkpad/service/internal/listing"
	"github.com/inkpad/service/internal/storage"
)

const (
	requestTimeout  = 30 * time.Second
	statusTTL       = 6 * time.Second
	signedURLExpiry = time.Hour
)

type viewMsg struct {
	view    listing.View
	err     error
	refresh bool
}

type uploadedMsg struct {
	resp *files.UploadResponse
}

type metadataMsg struct {
	key string
	md  *storage.Metadata
}

type urlMsg struct {
	label string
	url   string
}

type deletedMsg struct {
	key string
}

type errMsg struct {
	err error
}

type clearStatusMsg struct {
	seq int
}

func refreshCmd(s *listing.Session) tea.Cmd {
	return sessionCmd(true, s.Refresh)
}

func loadMoreCmd(s *listing.Session) tea.Cmd {
	return sessionCmd(false, s.LoadMore)
}

func setPrefixCmd(s *listing.Session, prefix string) tea.Cmd {
	return sessionCmd(true, func(ctx context.Context) (listing.View, error) {
		return s.SetPrefix(ctx, prefix)
	})
}

func setFilterCmd(s *listing.Session, f listing.Filter) tea.Cmd {
	return sessionCmd(true, func(ctx context.Context) (listing.View, error) {
		return s.SetFilter(ctx, f)
	})
}

func sessionCmd(refresh bool, fn func(context.Context) (listing.View, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		v, err := fn(ctx)
		return viewMsg{view: v, err: err, refresh: refresh}
	}
}

// uploadCmd uploads the local file at path, detecting its content type from its bytes.
func uploadCmd(api API, path string) tea.Cmd {
	return func() tea.Msg {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("read %s: %w", path, err)}
		}
		f, err := os.Open(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.Upload(ctx, filepath.Base(path), mt.String(), f)
		if err != nil {
			return errMsg{err: err}
		}
		return uploadedMsg{resp: resp}
	}
}

func metadataCmd(api API, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		md, err := api.Metadata(ctx, key)
		if err != nil {
			return errMsg{err: err}
		}
		return metadataMsg{key: key, md: md}
	}
}

func signedURLCmd(api API, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		u, err := api.FileURL(ctx, key, signedURLExpiry)
		if err != nil {
			return errMsg{err: err}
		}
		return urlMsg{label: "Signed URL (1h)", url: u}
	}
}

func deleteCmd(api API, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := api.Delete(ctx, key); err != nil {
			return errMsg{err: err}
		}
		return deletedMsg{key: key}
	}
}

// clearStatusCmd clears the status line after statusTTL unless a newer status replaced it.
func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
