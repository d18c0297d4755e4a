package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/asset"
	"github.com/inkpad/service/internal/listing"
)

const (
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyRefresh   = "r"
	keyLoadMore  = "m"
	keyImages    = "i"
	keyPrefix    = "/"
	keyUpload    = "a"
	keyEnter     = "enter"
	keySignedURL = "u"
	keyPublicURL = "c"
	keyDelete    = "d"
	keyEsc       = "esc"
	keyYes       = "y"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(msg.Height-chromeHeight, 1))
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case viewMsg:
		return m.handleView(msg)

	case uploadedMsg:
		m.lg.Info("uploaded", zap.String("key", msg.resp.Key), zap.String("url", msg.resp.URL))
		m.loading = true
		status := fmt.Sprintf("Uploaded %s (%s)", msg.resp.Key, humanize.IBytes(uint64(max(msg.resp.Size, 0))))
		return m, tea.Batch(m.setStatus(status, false), refreshCmd(m.session))

	case metadataMsg:
		md := msg.md
		status := fmt.Sprintf("%s · %s · %s · modified %s · etag %s",
			msg.key, md.ContentType, humanize.IBytes(uint64(max(md.Size, 0))),
			md.LastModified.Local().Format(time.DateTime), md.ETag)
		return m, m.setStatus(status, false)

	case urlMsg:
		return m, m.showURL(msg)

	case deletedMsg:
		m.session.Remove(msg.key)
		m.view = m.session.View()
		return m, tea.Batch(m.syncItems(), m.setStatus("Deleted "+msg.key, false))

	case errMsg:
		m.lg.Warn("gallery request failed", zap.Error(msg.err))
		return m, m.setStatus(msg.err.Error(), true)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePrefix, modeUpload:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) handleView(msg viewMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, listing.ErrStale), errors.Is(msg.err, listing.ErrBusy):
		return m, nil
	case msg.refresh:
		m.loading = false
	}

	m.view = msg.view
	cmds := []tea.Cmd{m.syncItems()}
	switch {
	case errors.Is(msg.err, listing.ErrNoMorePages):
		cmds = append(cmds, m.setStatus("No more files", false))
	case msg.err != nil:
		m.lg.Warn("listing failed", zap.Error(msg.err))
		cmds = append(cmds, m.setStatus(msg.err.Error(), true))
	}
	return m, tea.Batch(cmds...)
}

func (m *model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m, tea.Quit

	case keyRefresh:
		m.loading = true
		return m, refreshCmd(m.session)

	case keyLoadMore:
		if m.loading || m.session.LoadingMore() || !m.view.CanLoadMore() {
			return m, nil
		}
		return m, loadMoreCmd(m.session)

	case keyImages:
		m.imagesOnly = !m.imagesOnly
		m.loading = true
		var f listing.Filter
		if m.imagesOnly {
			f = listing.Images
		}
		return m, setFilterCmd(m.session, f)

	case keyPrefix:
		return m, m.startInput(modePrefix, "uploads/", m.session.Prefix())

	case keyUpload:
		return m, m.startInput(modeUpload, "path/to/file", "")

	case keyEnter:
		if key, ok := m.selectedKey(); ok {
			return m, metadataCmd(m.api, key)
		}

	case keySignedURL:
		if key, ok := m.selectedKey(); ok {
			return m, signedURLCmd(m.api, key)
		}

	case keyPublicURL:
		if key, ok := m.selectedKey(); ok {
			if m.publicBase == "" {
				return m, m.setStatus("Public base URL is not configured (-public)", true)
			}
			return m, m.showURL(urlMsg{label: "Public URL", url: asset.URLFor(m.publicBase, key)})
		}

	case keyDelete:
		if key, ok := m.selectedKey(); ok {
			m.mode = modeConfirmDelete
			m.pendingDelete = key
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) startInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case keyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()

		if mode == modePrefix {
			m.loading = true
			return m, setPrefixCmd(m.session, value)
		}
		if value == "" {
			return m, nil
		}
		return m, tea.Batch(m.setStatus("Uploading "+value+"…", false), uploadCmd(m.api, value))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.pendingDelete
	m.mode = modeBrowse
	m.pendingDelete = ""
	if msg.String() != keyYes {
		return m, nil
	}
	return m, deleteCmd(m.api, key)
}

func (m *model) showURL(msg urlMsg) tea.Cmd {
	text := msg.label + ": " + msg.url
	if err := m.copyText(msg.url); err != nil {
		m.lg.Debug("clipboard unavailable", zap.Error(err))
	} else {
		text += " (copied)"
	}
	return m.setStatus(text, false)
}
