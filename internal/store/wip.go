package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ohare93/xagentsync/internal/handoff"
)

const (
	wipFile     = "wip.json"
	wipLockFile = "wip.lock"
)

// ErrWIPLocked is returned when another process is writing the WIP file.
var ErrWIPLocked = errors.New("the work-in-progress handoff is being written by another xas process")

// WIPFile persists the single work-in-progress handoff of a workspace.
type WIPFile struct {
	path     string
	lockPath string
}

// WIP returns the WIP file inside the store's state directory.
func (s *Store) WIP() *WIPFile {
	return &WIPFile{
		path:     filepath.Join(s.statePath, wipFile),
		lockPath: filepath.Join(s.statePath, wipLockFile),
	}
}

// Path returns the location of the WIP document.
func (w *WIPFile) Path() string { return w.path }

// Load returns the stored WIP handoff, or nil when there is none.
func (w *WIPFile) Load() (*handoff.Handoff, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", wipFile, err)
	}
	var h handoff.Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", wipFile, err)
	}
	return &h, nil
}

// Save replaces the WIP document with h.
func (w *WIPFile) Save(h *handoff.Handoff) error {
	if h.Status != handoff.StatusInProgress {
		return fmt.Errorf("cannot store a %s handoff as work in progress", h.Status)
	}
	data, err := encode(h)
	if err != nil {
		return err
	}
	return w.withLock(func() error {
		return writeFileAtomic(w.path, data)
	})
}

// Clear removes the WIP document. Clearing an absent document is not an error.
func (w *WIPFile) Clear() error {
	return w.withLock(func() error {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", wipFile, err)
		}
		return nil
	})
}

func (w *WIPFile) withLock(fn func() error) error {
	fileLock := flock.New(w.lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrWIPLocked
	}
	defer fileLock.Unlock()
	return fn()
}
