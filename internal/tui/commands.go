package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/watcher"
)

type handoffsLoadedMsg struct {
	handoffs []*handoff.Handoff
	err      error
}

func loadHandoffs(svc Service, filter app.Filter) tea.Cmd {
	return func() tea.Msg {
		hs, err := svc.Pending(filter)
		return handoffsLoadedMsg{handoffs: hs, err: err}
	}
}

type handoffArchivedMsg struct {
	id  string
	err error
}

func archiveHandoff(svc Service, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.Archive([]string{id})
		return handoffArchivedMsg{id: id, err: err}
	}
}

// Watcher event messages
type watcherEventMsg struct {
	event watcher.Event
}

type watcherErrorMsg struct {
	err error
}

// listenForWatcherEvents creates a command that waits for the next watcher
// event. It is re-issued after every event.
func listenForWatcherEvents(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-w.Events:
			return watcherEventMsg{event: event}
		case err := <-w.Errors:
			return watcherErrorMsg{err: err}
		}
	}
}
