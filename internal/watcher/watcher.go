// Package watcher reports handoff documents appearing in or leaving a sync
// directory.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file change event
type EventType int

const (
	// HandoffArrived fires when a pending document is created or rewritten.
	HandoffArrived EventType = iota
	// HandoffRemoved fires when a pending document disappears, usually
	// because it was archived.
	HandoffRemoved
	// ArchiveChanged fires for any document change under archive/.
	ArchiveChanged
)

func (t EventType) String() string {
	switch t {
	case HandoffArrived:
		return "arrived"
	case HandoffRemoved:
		return "removed"
	case ArchiveChanged:
		return "archive"
	default:
		return "unknown"
	}
}

// Event represents a file change event
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the pending and archive directories of a sync directory
type Watcher struct {
	watcher    *fsnotify.Watcher
	Events     chan Event
	Errors     chan error
	done       chan struct{}
	mu         sync.Mutex
	running    bool
	closed     bool
	pendingDir string
	archiveDir string
}

// New creates a new file watcher
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsWatcher,
		Events:  make(chan Event, 100),
		Errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// WatchDirs adds watchers for the pending and archive directories.
func (w *Watcher) WatchDirs(pendingDir, archiveDir string) error {
	for _, dir := range []string{pendingDir, archiveDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s (run xas init)", dir)
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.mu.Lock()
	w.pendingDir = filepath.Clean(pendingDir)
	w.archiveDir = filepath.Clean(archiveDir)
	w.mu.Unlock()
	return nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.eventLoop()
}

// eventLoop processes file system events
func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			e := w.classifyEvent(event)
			if e != nil {
				// Non-blocking send
				select {
				case w.Events <- *e:
				default:
					// Channel full, skip event
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-blocking error send
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// classifyEvent maps a raw fsnotify event to a handoff event. Temp files
// written during atomic saves and non-JSON files are ignored.
func (w *Watcher) classifyEvent(event fsnotify.Event) *Event {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return nil
	}

	w.mu.Lock()
	pendingDir, archiveDir := w.pendingDir, w.archiveDir
	w.mu.Unlock()

	switch filepath.Dir(event.Name) {
	case pendingDir:
		switch {
		case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
			return &Event{Type: HandoffArrived, Path: event.Name}
		case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
			return &Event{Type: HandoffRemoved, Path: event.Name}
		}
	case archiveDir:
		if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
			return &Event{Type: ArchiveChanged, Path: event.Name}
		}
	}
	return nil
}

// Stop stops the watcher and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.running {
		close(w.done)
		w.running = false
	}
	return w.watcher.Close()
}

// Close is an alias for Stop
func (w *Watcher) Close() error {
	return w.Stop()
}
