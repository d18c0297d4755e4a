package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/inkpad/service/internal/listing"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const helpText = "r refresh · m more · i images · / prefix · a upload · enter info · u signed url · c public url · d delete · q quit"

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m *model) header() string {
	parts := []string{titleStyle.Render("Inkpad gallery"), countLabel(m.view, m.imagesOnly)}
	if prefix := m.session.Prefix(); prefix != "" {
		parts = append(parts, "prefix "+prefix)
	}
	switch {
	case m.loading:
		parts = append(parts, "loading…")
	case m.session.LoadingMore():
		parts = append(parts, "loading more…")
	case m.view.CanLoadMore():
		parts = append(parts, "m to load more")
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (m *model) footer() string {
	switch m.mode {
	case modePrefix:
		return "Prefix: " + m.input.View()
	case modeUpload:
		return "Upload: " + m.input.View()
	case modeConfirmDelete:
		return errorStyle.Render(fmt.Sprintf("Delete %s? (y/N)", m.pendingDelete))
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

// countLabel renders "N images" (or "N files" without the image filter),
// with a "+" when more pages exist.
func countLabel(v listing.View, imagesOnly bool) string {
	noun := "files"
	if imagesOnly {
		noun = "images"
	}
	more := ""
	if v.IsTruncated {
		more = "+"
	}
	return fmt.Sprintf("%d%s %s", len(v.Objects), more, noun)
}
