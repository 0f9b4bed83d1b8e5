package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View renders either the entry list or the body viewport.
func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeView:
		entries := m.visible()
		if m.selected < len(entries) {
			b.WriteString(titleStyle.Render(entries[m.selected].SummaryLine()))
			b.WriteByte('\n')
		}
		if m.ready {
			b.WriteString(m.viewport.View())
			b.WriteByte('\n')
		}
		b.WriteString(dimStyle.Render("esc back, q back, ctrl+c quit"))
	default:
		b.WriteString(titleStyle.Render("kitchenlog"))
		b.WriteByte('\n')

		entries := m.visible()
		if len(entries) == 0 {
			b.WriteString(dimStyle.Render("(no entries)"))
			b.WriteByte('\n')
		}
		for i, e := range entries {
			line := e.SummaryLine()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteByte('\n')
		}

		b.WriteByte('\n')
		if m.errorLine != "" {
			b.WriteString(errorStyle.Render(m.errorLine))
		} else {
			b.WriteString(dimStyle.Render(m.statusLine))
		}
		b.WriteByte('\n')
		b.WriteString(dimStyle.Render("j/k move, enter view, x delete, q quit"))
	}

	return b.String()
}
