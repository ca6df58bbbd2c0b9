// Package store persists handoff records as one JSON document per handoff
// under pending/ and archive/ directories of a sync directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ohare93/xagentsync/internal/handoff"
)

const (
	PendingDirName = "pending"
	ArchiveDirName = "archive"
	StateDirName   = ".xas"

	gitignoreFile = ".gitignore"
)

// gitignoreEntries are the local-only files inside the state directory.
var gitignoreEntries = []string{wipFile, "current_agent.json", "*.lock"}

// Config holds configurable options for Store.
type Config struct {
	StateDirName string // Name of the local state directory (default: ".xas")
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{StateDirName: StateDirName}
}

// Filter narrows LoadAll. Zero values match everything.
type Filter struct {
	Mode   handoff.Mode
	Status handoff.Status
}

func (f Filter) match(h *handoff.Handoff) bool {
	if f.Mode != "" && h.Mode != f.Mode {
		return false
	}
	if f.Status != "" && h.Status != f.Status {
		return false
	}
	return true
}

// Store reads and writes handoff documents in a sync directory.
type Store struct {
	// Now stamps archived records; replaceable for tests.
	Now func() time.Time

	root        string
	pendingPath string
	archivePath string
	statePath   string
	log         *slog.Logger
}

// New opens the store rooted at dir using the default configuration.
func New(dir string, log *slog.Logger) (*Store, error) {
	return NewWithConfig(dir, DefaultConfig(), log)
}

// NewWithConfig opens the store rooted at dir, creating its directories.
func NewWithConfig(dir string, config Config, log *slog.Logger) (*Store, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		Now:         time.Now,
		root:        dir,
		pendingPath: filepath.Join(dir, PendingDirName),
		archivePath: filepath.Join(dir, ArchiveDirName),
		statePath:   filepath.Join(dir, config.StateDirName),
		log:         log,
	}
	for _, p := range []string{s.pendingPath, s.archivePath, s.statePath} {
		if err := os.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", filepath.Base(p), err)
		}
	}
	return s, nil
}

// Root returns the sync directory.
func (s *Store) Root() string { return s.root }

// PendingDir returns the directory holding pending records.
func (s *Store) PendingDir() string { return s.pendingPath }

// ArchiveDir returns the directory holding archived records.
func (s *Store) ArchiveDir() string { return s.archivePath }

// StateDir returns the local state directory.
func (s *Store) StateDir() string { return s.statePath }

// EnsureGitignore writes the state directory's .gitignore so local-only
// files stay out of the shared history. Existing entries are kept.
func (s *Store) EnsureGitignore() error {
	path := filepath.Join(s.statePath, gitignoreFile)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(existing), "\n"), "\n")
	content := strings.TrimRight(string(existing), "\n")
	for _, entry := range gitignoreEntries {
		found := false
		for _, line := range lines {
			if strings.TrimSpace(line) == entry {
				found = true
				break
			}
		}
		if !found {
			if content != "" {
				content += "\n"
			}
			content += entry
		}
	}
	return writeFileAtomic(path, []byte(content+"\n"))
}

// FileName returns the document name for h: creation time plus short id.
func FileName(h *handoff.Handoff) string {
	return fmt.Sprintf("%s_%s.json", h.CreatedAt.UTC().Format("20060102_150405"), h.ShortID())
}

func (s *Store) dirFor(status handoff.Status) (string, error) {
	switch status {
	case handoff.StatusPending:
		return s.pendingPath, nil
	case handoff.StatusArchived:
		return s.archivePath, nil
	default:
		return "", fmt.Errorf("%s handoffs are not stored as records", status)
	}
}

// Save writes h into the collection matching its status.
func (s *Store) Save(h *handoff.Handoff) error {
	dir, err := s.dirFor(h.Status)
	if err != nil {
		return err
	}
	data, err := encode(h)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, FileName(h))
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write handoff %s: %w", h.ShortID(), err)
	}
	s.log.Debug("saved handoff", "id", h.ID, "status", h.Status, "path", path)
	return nil
}

// LoadAll returns the records matching filter, newest first. A record that
// appears in both collections after a merge counts as archived, and copies
// sharing id and created_at collapse into one.
func (s *Store) LoadAll(filter Filter) ([]*handoff.Handoff, error) {
	archived, err := s.loadDir(s.archivePath)
	if err != nil {
		return nil, err
	}
	pending, err := s.loadDir(s.pendingPath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	archivedIDs := make(map[string]bool)
	var out []*handoff.Handoff
	for _, h := range archived {
		archivedIDs[h.handoff.ID] = true
	}
	for _, doc := range append(archived, pending...) {
		h := doc.handoff
		if seen[h.Key()] {
			s.log.Debug("skipping duplicate handoff", "id", h.ID, "path", doc.path)
			continue
		}
		seen[h.Key()] = true
		if h.Status == handoff.StatusPending && archivedIDs[h.ID] {
			continue
		}
		if filter.match(h) {
			out = append(out, h)
		}
	}
	handoff.SortNewestFirst(out)
	return out, nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (*handoff.Handoff, error) {
	all, err := s.LoadAll(Filter{})
	if err != nil {
		return nil, err
	}
	for _, h := range all {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, &handoff.NotFoundError{ID: id}
}

// MoveStatus moves the record id from one collection to the other. Only
// pending to archived is allowed; a missing record yields a NotFoundError
// and leaves both collections untouched.
func (s *Store) MoveStatus(id string, from, to handoff.Status) error {
	if from != handoff.StatusPending || to != handoff.StatusArchived {
		return fmt.Errorf("cannot move handoff from %s to %s", from, to)
	}

	docs, err := s.loadDir(s.pendingPath)
	if err != nil {
		return err
	}
	var matches []document
	for _, doc := range docs {
		if doc.handoff.ID == id {
			matches = append(matches, doc)
		}
	}
	if len(matches) == 0 {
		return &handoff.NotFoundError{ID: id}
	}

	archived, err := handoff.Archive(matches[0].handoff, s.Now())
	if err != nil {
		return err
	}
	if err := s.Save(archived); err != nil {
		return err
	}
	for _, doc := range matches {
		if err := os.Remove(doc.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove pending handoff %s: %w", filepath.Base(doc.path), err)
		}
	}
	s.log.Debug("archived handoff", "id", id)
	return nil
}

type document struct {
	path    string
	handoff *handoff.Handoff
}

// loadDir decodes every JSON document in dir. Unreadable documents are
// logged and skipped so one corrupt file does not hide the rest.
func (s *Store) loadDir(dir string) ([]document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var docs []document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		h, err := readHandoff(path)
		if err != nil {
			s.log.Warn("skipping unreadable handoff", "path", path, "error", err)
			continue
		}
		docs = append(docs, document{path: path, handoff: h})
	}
	return docs, nil
}

func readHandoff(path string) (*handoff.Handoff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var h handoff.Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	if h.ID == "" {
		return nil, errors.New("missing id")
	}
	return &h, nil
}

func encode(h *handoff.Handoff) ([]byte, error) {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal handoff: %w", err)
	}
	return append(data, '\n'), nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
