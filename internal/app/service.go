// Package app wires the handoff core to its collaborators: the record store,
// the WIP file, the agent identity and the VCS ref source.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/store"
)

// RecordStore persists finalized handoffs.
type RecordStore interface {
	Save(h *handoff.Handoff) error
	LoadAll(filter store.Filter) ([]*handoff.Handoff, error)
	MoveStatus(id string, from, to handoff.Status) error
}

// WIPStore persists the single work-in-progress handoff between commands.
type WIPStore interface {
	Load() (*handoff.Handoff, error)
	Save(h *handoff.Handoff) error
	Clear() error
}

// IdentityProvider names the agent authoring new handoffs.
type IdentityProvider interface {
	CurrentAuthor() (string, error)
}

// RefSource returns the branch and commit a new handoff should point at.
// It is best effort; errors are logged and the ref is left empty.
type RefSource func() (*handoff.GitRef, error)

// Filter narrows the pending handoffs a command works on. Zero values match
// everything.
type Filter struct {
	Mode  handoff.Mode
	Since time.Time
}

func (f Filter) match(h *handoff.Handoff) bool {
	return f.Since.IsZero() || !h.CreatedAt.Before(f.Since)
}

// AmbiguousIDError reports an id prefix that matches more than one pending
// handoff.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q matches %d handoffs: %s", e.Prefix, len(e.Matches), strings.Join(e.Matches, ", "))
}

// Service runs handoff operations against persistent state. Every call
// reloads the WIP so separate processes see each other's changes.
type Service struct {
	Records  RecordStore
	WIP      WIPStore
	Identity IdentityProvider
	Refs     RefSource

	// Now and NewID are replaceable for tests. A nil NewID keeps the
	// builder's default.
	Now   func() time.Time
	NewID func() string

	Log *slog.Logger
}

// New returns a Service. A nil logger discards output.
func New(records RecordStore, wip WIPStore, identity IdentityProvider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Records:  records,
		WIP:      wip,
		Identity: identity,
		Now:      time.Now,
		Log:      log,
	}
}

func (s *Service) builder() (*handoff.Builder, error) {
	wip, err := s.WIP.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load work in progress: %w", err)
	}
	b := handoff.NewBuilder(wip)
	b.Now = s.Now
	if s.NewID != nil {
		b.NewID = s.NewID
	}
	return b, nil
}

// StartOptions carries the optional envelope data of a new handoff.
type StartOptions struct {
	Tags []string
	// Ref fields that are set replace the captured branch, commit or PR.
	Ref handoff.GitRef
	// Facts are recorded right after the start. Nothing is saved unless
	// every fact is accepted.
	Facts []handoff.Fact
}

// StartMode begins a new handoff authored by the current agent.
func (s *Service) StartMode(mode handoff.Mode, summary string, opts StartOptions) (*handoff.Handoff, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	if current := b.Current(); current != nil {
		existing := current.Summarize()
		return nil, &handoff.ConflictError{Reason: handoff.ConflictWIPExists, Existing: &existing}
	}

	author, err := s.Identity.CurrentAuthor()
	if err != nil {
		return nil, err
	}

	meta := handoff.Meta{Author: author, Tags: opts.Tags, GitRef: s.currentRef().Override(opts.Ref)}
	h, err := b.Start(mode, summary, meta)
	if err != nil {
		return nil, err
	}
	if len(opts.Facts) > 0 {
		for _, f := range opts.Facts {
			if err := b.Append(f); err != nil {
				return nil, err
			}
		}
		h = b.Current()
	}
	if err := s.WIP.Save(h); err != nil {
		return nil, fmt.Errorf("failed to save work in progress: %w", err)
	}
	s.Log.Debug("started handoff", "id", h.ID, "mode", mode, "author", author)
	return h, nil
}

func (s *Service) currentRef() *handoff.GitRef {
	if s.Refs == nil {
		return nil
	}
	ref, err := s.Refs()
	if err != nil {
		s.Log.Debug("no git ref for handoff", "error", err)
		return nil
	}
	return ref
}

// AppendField records one fact on the WIP handoff.
func (s *Service) AppendField(f handoff.Fact) error {
	b, err := s.builder()
	if err != nil {
		return err
	}
	if err := b.Append(f); err != nil {
		return err
	}
	if err := s.WIP.Save(b.Current()); err != nil {
		return fmt.Errorf("failed to save work in progress: %w", err)
	}
	s.Log.Debug("recorded fact", "field", f.Field())
	return nil
}

// SetSummary replaces the headline of the WIP handoff.
func (s *Service) SetSummary(summary string) error {
	b, err := s.builder()
	if err != nil {
		return err
	}
	if err := b.SetSummary(summary); err != nil {
		return err
	}
	if err := s.WIP.Save(b.Current()); err != nil {
		return fmt.Errorf("failed to save work in progress: %w", err)
	}
	return nil
}

// Current returns the WIP handoff, or nil when nothing is in progress.
func (s *Service) Current() (*handoff.Handoff, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	return b.Current(), nil
}

// FinalizeCurrent turns the WIP into a pending record. The WIP is cleared
// only after the record is stored.
func (s *Service) FinalizeCurrent() (*handoff.Handoff, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	record, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	if err := s.Records.Save(record); err != nil {
		return nil, fmt.Errorf("failed to store handoff: %w", err)
	}
	if err := s.WIP.Clear(); err != nil {
		return nil, fmt.Errorf("handoff %s stored but work in progress not cleared: %w", record.ShortID(), err)
	}
	s.Log.Debug("finalized handoff", "id", record.ID, "mode", record.Mode)
	return record, nil
}

// DiscardCurrent drops the WIP handoff and returns what was dropped.
func (s *Service) DiscardCurrent() (*handoff.Summary, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	current := b.Current()
	if err := b.Discard(); err != nil {
		return nil, err
	}
	if err := s.WIP.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear work in progress: %w", err)
	}
	summary := current.Summarize()
	s.Log.Debug("discarded handoff", "id", summary.ID)
	return &summary, nil
}

// Pending returns the pending handoffs matching f, newest first.
func (s *Service) Pending(f Filter) ([]*handoff.Handoff, error) {
	all, err := s.Records.LoadAll(store.Filter{Mode: f.Mode, Status: handoff.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to load handoffs: %w", err)
	}
	out := make([]*handoff.Handoff, 0, len(all))
	for _, h := range all {
		if f.match(h) {
			out = append(out, h)
		}
	}
	handoff.SortNewestFirst(out)
	return out, nil
}

// ListPending returns listing summaries of the pending handoffs matching f.
func (s *Service) ListPending(f Filter) ([]handoff.Summary, error) {
	pending, err := s.Pending(f)
	if err != nil {
		return nil, err
	}
	out := make([]handoff.Summary, len(pending))
	for i, h := range pending {
		out[i] = h.Summarize()
	}
	return out, nil
}

// CompilePrompt renders the pending handoffs matching f as one prompt.
func (s *Service) CompilePrompt(f Filter) (string, error) {
	pending, err := s.Pending(f)
	if err != nil {
		return "", err
	}
	return handoff.CompileAll(pending, s.Now()), nil
}

// Receipt is what Receive showed to the caller.
type Receipt struct {
	Prompt   string
	Handoffs []*handoff.Handoff
	Archived []string
}

// Receive compiles the pending handoffs matching f and, when archive is set,
// archives exactly the handoffs that were rendered.
func (s *Service) Receive(f Filter, archive bool) (*Receipt, error) {
	pending, err := s.Pending(f)
	if err != nil {
		return nil, err
	}
	r := &Receipt{
		Prompt:   handoff.CompileAll(pending, s.Now()),
		Handoffs: pending,
	}
	if !archive {
		return r, nil
	}
	for _, h := range pending {
		if err := s.Records.MoveStatus(h.ID, handoff.StatusPending, handoff.StatusArchived); err != nil {
			return r, fmt.Errorf("failed to archive handoff %s: %w", h.ShortID(), err)
		}
		r.Archived = append(r.Archived, h.ID)
	}
	return r, nil
}

// Resolve maps an id or unique id prefix to a pending handoff.
func (s *Service) Resolve(ref string) (*handoff.Handoff, error) {
	pending, err := s.Pending(Filter{})
	if err != nil {
		return nil, err
	}
	return resolve(pending, ref)
}

func resolve(pending []*handoff.Handoff, ref string) (*handoff.Handoff, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &handoff.NotFoundError{ID: ref}
	}
	var matches []*handoff.Handoff
	for _, h := range pending {
		if h.ID == ref {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &handoff.NotFoundError{ID: ref}
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, h := range matches {
		ids[i] = h.ShortID()
	}
	return nil, &AmbiguousIDError{Prefix: ref, Matches: ids}
}

// Archive moves the named pending handoffs to the archive. Every reference
// is resolved before anything moves, so an unknown id changes nothing.
func (s *Service) Archive(refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, errors.New("no handoff ids given")
	}
	pending, err := s.Pending(Filter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, ref := range refs {
		h, err := resolve(pending, ref)
		if err != nil {
			return nil, err
		}
		if !seen[h.ID] {
			seen[h.ID] = true
			ids = append(ids, h.ID)
		}
	}

	for i, id := range ids {
		if err := s.Records.MoveStatus(id, handoff.StatusPending, handoff.StatusArchived); err != nil {
			return ids[:i], fmt.Errorf("failed to archive handoff %s: %w", id, err)
		}
		s.Log.Debug("archived handoff", "id", id)
	}
	return ids, nil
}
