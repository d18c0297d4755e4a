package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeHeight is the number of lines around the list: header, status and help.
	chromeHeight = 4
	inputLimit   = 1024
)

func initObjectList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("212")).
		BorderLeftForeground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("240")).
		BorderLeftForeground(lipgloss.Color("212"))

	l := list.New([]list.Item{}, delegate, defaultWidth, defaultHeight-chromeHeight)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	// "/" sets the key prefix instead of fuzzy-filtering the loaded page.
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("file", "files")
	return l
}

func initInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = inputLimit
	ti.Width = defaultWidth - 12
	return ti
}
