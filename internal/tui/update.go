package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ohare93/xagentsync/internal/handoff"
)

// detailChrome is the number of lines around the detail viewport.
const detailChrome = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-detailChrome, 1)
		m.refreshDetail()
		return m, nil

	case handoffsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.setHandoffs(msg.handoffs)
		return m, nil

	case handoffArchivedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.message = fmt.Sprintf("Archived %s", shortID(msg.id))
		if m.mode == detailView {
			m.mode = listView
		}
		return m, loadHandoffs(m.svc, m.filter)

	case watcherEventMsg:
		return m, tea.Batch(
			loadHandoffs(m.svc, m.filter),
			listenForWatcherEvents(m.fileWatcher),
		)

	case watcherErrorMsg:
		m.err = msg.err
		return m, listenForWatcherEvents(m.fileWatcher)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && m.mode != confirmArchiveView {
		return m, tea.Quit
	}

	switch m.mode {
	case confirmArchiveView:
		return m.handleConfirmKey(msg)
	case detailView:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.handoffs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.selected() != nil {
			m.mode = detailView
			m.refreshDetail()
			m.viewport.GotoTop()
		}
	case key.Matches(msg, m.keys.Archive):
		if m.selected() != nil {
			m.returnTo = listView
			m.mode = confirmArchiveView
		}
	case key.Matches(msg, m.keys.Refresh):
		m.message = ""
		return m, loadHandoffs(m.svc, m.filter)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = listView
		return m, nil
	case key.Matches(msg, m.keys.Archive):
		m.returnTo = detailView
		m.mode = confirmArchiveView
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		h := m.selected()
		m.mode = m.returnTo
		if h == nil {
			return m, nil
		}
		return m, archiveHandoff(m.svc, h.ID)
	case key.Matches(msg, m.keys.Cancel), msg.String() == "ctrl+c":
		m.mode = m.returnTo
	}
	return m, nil
}

// setHandoffs replaces the list and keeps the cursor on the same handoff
// when it is still pending.
func (m *Model) setHandoffs(hs []*handoff.Handoff) {
	var currentID string
	if h := m.selected(); h != nil {
		currentID = h.ID
	}
	m.handoffs = hs
	m.cursor = 0
	for i, h := range hs {
		if h.ID == currentID {
			m.cursor = i
			break
		}
	}
	if m.mode != listView && m.selected() == nil {
		m.mode = listView
	}
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	h := m.selected()
	if h == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(handoff.Compile(h, m.now()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
