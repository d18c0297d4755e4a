package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/listing"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modePrefix
	modeUpload
	modeConfirmDelete
)

type model struct {
	api        API
	session    *listing.Session
	lg         *zap.Logger
	publicBase string
	copyText   func(string) error

	list          list.Model
	input         textinput.Model
	mode          inputMode
	pendingDelete string

	view       listing.View
	imagesOnly bool
	loading    bool

	status    string
	statusErr bool
	statusSeq int
}

// New returns the gallery model. The first page is requested by Init.
func New(api API, opts Options, lg *zap.Logger) tea.Model {
	return newModel(api, opts, lg)
}

func newModel(api API, opts Options, lg *zap.Logger) *model {
	sessionOpts := []listing.SessionOption{
		listing.WithPageSize(opts.PageSize),
		listing.WithPrefix(opts.Prefix),
	}
	if opts.ImagesOnly {
		sessionOpts = append(sessionOpts, listing.WithFilter(listing.Images))
	}

	return &model{
		api:        api,
		session:    listing.NewSession(api, sessionOpts...),
		lg:         lg,
		publicBase: opts.PublicBase,
		copyText:   clipboard.WriteAll,
		list:       initObjectList(),
		input:      initInput(),
		imagesOnly: opts.ImagesOnly,
		loading:    true,
	}
}

func (m *model) Init() tea.Cmd {
	return refreshCmd(m.session)
}

func (m *model) selectedKey() (string, bool) {
	item, ok := m.list.SelectedItem().(objectItem)
	if !ok {
		return "", false
	}
	return item.obj.Key, true
}

func (m *model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	return clearStatusCmd(m.statusSeq)
}

func (m *model) syncItems() tea.Cmd {
	return m.list.SetItems(itemsFor(m.view))
}
