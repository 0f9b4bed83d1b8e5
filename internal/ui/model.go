package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfaerber/kitchenlog/internal/logbook"
)

// Model owns Bubble Tea state for the entry browser.
type Model struct {
	store *logbook.Store

	selected int
	mode     mode

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	statusLine string
	errorLine  string
}

type mode uint8

const (
	modeList mode = iota
	modeView
	modeConfirmDelete
)

type commitResultMsg struct {
	summary string
	err     error
}

// NewModel seeds the browser with an opened store.
func NewModel(store *logbook.Store) Model {
	m := Model{
		store: store,
		mode:  modeList,
	}
	m.statusLine = fmt.Sprintf("%d entries", len(m.visible()))
	return m
}

// Init is a no-op; the store is already loaded.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update wires browser state transitions from user input and async commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, max(msg.Height-4, 1))
		m.ready = true
		return m, nil
	case commitResultMsg:
		return m.handleCommitResult(msg)
	default:
		return m, nil
	}
}

// visible filters out entries already deleted in this session; the store
// keeps them in the collection until reopened.
func (m Model) visible() []*logbook.Entry {
	var entries []*logbook.Entry
	for _, e := range m.store.Entries() {
		if !e.IsRemoved() {
			entries = append(entries, e)
		}
	}
	return entries
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeView:
		return m.handleViewKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	entries := m.visible()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		if m.selected < len(entries)-1 {
			m.selected++
			m.errorLine = ""
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
			m.errorLine = ""
		}
	case "enter":
		if len(entries) == 0 {
			return m, nil
		}
		m.mode = modeView
		if m.ready {
			m.viewport.SetContent(entries[m.selected].CurrentText())
			m.viewport.GotoTop()
		}
	case "x":
		if len(entries) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.statusLine = fmt.Sprintf("Delete %s? (y/n)", entries[m.selected].SummaryLine())
	}
	return m, nil
}

func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		entries := m.visible()
		entry := entries[m.selected]
		entry.MarkForRemoval()
		m.mode = modeList
		m.statusLine = "Deleting..."
		return m, m.commitCmd(entry.SummaryLine())
	default:
		m.mode = modeList
		m.statusLine = "Delete cancelled"
		return m, nil
	}
}

func (m Model) commitCmd(summary string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return commitResultMsg{summary: summary, err: store.Commit()}
	}
}

func (m Model) handleCommitResult(msg commitResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorLine = msg.err.Error()
		m.statusLine = ""
		return m, nil
	}
	m.statusLine = "Deleted " + msg.summary
	if count := len(m.visible()); m.selected >= count && count > 0 {
		m.selected = count - 1
	}
	return m, nil
}
