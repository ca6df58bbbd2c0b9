// Package tui is the interactive browser over pending handoffs.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/watcher"
)

// Service is the part of app.Service the browser uses.
type Service interface {
	Pending(f app.Filter) ([]*handoff.Handoff, error)
	Archive(refs []string) ([]string, error)
}

type viewMode int

const (
	listView viewMode = iota
	detailView
	confirmArchiveView
)

type Model struct {
	svc    Service
	filter app.Filter
	now    func() time.Time

	handoffs []*handoff.Handoff
	cursor   int
	loaded   bool

	// View state
	mode     viewMode
	returnTo viewMode // view to go back to after confirming
	viewport viewport.Model
	keys     KeyMap
	help     help.Model

	// UI state
	width   int
	height  int
	message string
	err     error

	// File watcher
	fileWatcher *watcher.Watcher
}

// New creates a browser model. w may be nil to disable live refresh.
func New(svc Service, filter app.Filter, w *watcher.Watcher) Model {
	return Model{
		svc:         svc,
		filter:      filter,
		now:         time.Now,
		mode:        listView,
		viewport:    viewport.New(0, 0),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		fileWatcher: w,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadHandoffs(m.svc, m.filter)}
	if m.fileWatcher != nil {
		cmds = append(cmds, listenForWatcherEvents(m.fileWatcher))
	}
	return tea.Batch(cmds...)
}

// selected returns the handoff under the cursor, or nil.
func (m Model) selected() *handoff.Handoff {
	if m.cursor < 0 || m.cursor >= len(m.handoffs) {
		return nil
	}
	return m.handoffs[m.cursor]
}

// Run starts the browser on the terminal and blocks until it exits.
func Run(svc Service, filter app.Filter, w *watcher.Watcher) error {
	p := tea.NewProgram(New(svc, filter, w), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
