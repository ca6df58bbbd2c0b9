package handoff

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meta is the envelope data captured when a handoff is started.
type Meta struct {
	Author string
	Tags   []string
	GitRef *GitRef
}

// Builder owns the single work-in-progress handoff of a workspace. The zero
// value is not usable; create one with NewBuilder.
type Builder struct {
	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string

	wip *Handoff
}

// NewBuilder returns a builder around wip, which may be nil when nothing is
// in progress. The builder keeps its own copy.
func NewBuilder(wip *Handoff) *Builder {
	return &Builder{
		Now:   time.Now,
		NewID: uuid.NewString,
		wip:   wip.Clone(),
	}
}

// Active reports whether a handoff is in progress.
func (b *Builder) Active() bool {
	return b.wip != nil
}

// Current returns a snapshot of the WIP handoff, or nil.
func (b *Builder) Current() *Handoff {
	return b.wip.Clone()
}

// Start begins a new handoff. It fails with a ConflictError when one is
// already in progress, whatever its mode.
func (b *Builder) Start(mode Mode, summary string, meta Meta) (*Handoff, error) {
	if b.wip != nil {
		existing := b.wip.Summarize()
		return nil, &ConflictError{Reason: ConflictWIPExists, Existing: &existing}
	}
	body, err := NewBody(mode)
	if err != nil {
		return nil, err
	}

	var ref *GitRef
	if meta.GitRef != nil {
		r := *meta.GitRef
		ref = &r
	}
	b.wip = &Handoff{
		ID:        b.NewID(),
		Mode:      mode,
		Author:    strings.TrimSpace(meta.Author),
		Summary:   strings.TrimSpace(summary),
		Status:    StatusInProgress,
		CreatedAt: b.Now().UTC(),
		Tags:      normalizeTags(meta.Tags),
		GitRef:    ref,
		Body:      body,
	}
	return b.wip.Clone(), nil
}

// Append records f on the WIP handoff. Warm-up facts are accepted in every
// mode. Lists grow in call order; single values such as the rollback plan or
// the TL;DR are replaced. A rejected fact leaves the WIP untouched.
func (b *Builder) Append(f Fact) error {
	if b.wip == nil {
		return &ConflictError{Reason: ConflictNoWIP}
	}
	if f == nil {
		return &ValidationError{Violations: []string{"fact is required"}}
	}
	field := f.Field()
	if field.WarmUp() {
		if err := f.check(); err != nil {
			return err
		}
		next := b.wip.WarmUp.clone()
		if err := next.apply(f); err != nil {
			return err
		}
		b.wip.WarmUp = next
		return nil
	}
	if owner := field.Mode(); owner != b.wip.Mode {
		return &ModeMismatchError{Field: field, FieldMode: owner, Active: b.wip.Mode}
	}
	if err := f.check(); err != nil {
		return err
	}

	next := b.wip.Body.clone()
	if err := next.apply(f); err != nil {
		return err
	}
	b.wip.Body = next
	return nil
}

// SetSummary replaces the headline of the WIP handoff.
func (b *Builder) SetSummary(summary string) error {
	if b.wip == nil {
		return &ConflictError{Reason: ConflictNoWIP}
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return &ValidationError{Violations: []string{"summary is required"}}
	}
	b.wip.Summary = summary
	return nil
}

// Finalize validates the WIP handoff and returns it as a pending record.
// The builder is emptied only when finalization succeeds.
func (b *Builder) Finalize() (*Handoff, error) {
	if b.wip == nil {
		return nil, &ConflictError{Reason: ConflictNoWIP}
	}
	record, err := Finalize(b.wip, b.Now())
	if err != nil {
		return nil, err
	}
	b.wip = nil
	return record, nil
}

// Discard drops the WIP handoff without producing a record.
func (b *Builder) Discard() error {
	if b.wip == nil {
		return &ConflictError{Reason: ConflictNoWIP}
	}
	b.wip = nil
	return nil
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
