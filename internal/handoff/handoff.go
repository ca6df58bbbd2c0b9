// Package handoff holds the handoff data model, the WIP builder, the
// finalizer and the prompt compiler. Nothing in this package performs I/O.
package handoff

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Handoff is a structured note package authored by one agent for a successor.
type Handoff struct {
	ID          string     `json:"id"`
	Mode        Mode       `json:"mode"`
	Author      string     `json:"author"`
	Summary     string     `json:"summary"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	GitRef      *GitRef    `json:"git_ref,omitempty"`
	WarmUp      WarmUp     `json:"warm_up,omitzero"`
	Body        Body       `json:"body"`
}

// GitRef is the VCS position the author was working from.
type GitRef struct {
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
	PR     string `json:"pr,omitempty"`
}

func (r *GitRef) String() string {
	if r == nil {
		return ""
	}
	var s string
	switch {
	case r.Branch != "" && r.Commit != "":
		s = fmt.Sprintf("%s @ %s", r.Branch, r.Commit)
	case r.Branch != "":
		s = r.Branch
	default:
		s = r.Commit
	}
	if r.PR == "" {
		return s
	}
	pr := "PR #" + strings.TrimPrefix(r.PR, "#")
	if s == "" {
		return pr
	}
	return s + " (" + pr + ")"
}

// IsZero reports whether no part of the ref is set.
func (r GitRef) IsZero() bool {
	return r.Branch == "" && r.Commit == "" && r.PR == ""
}

// Override returns a copy of r with every field set in o replacing its
// counterpart. r may be nil; the result is nil when nothing is set.
func (r *GitRef) Override(o GitRef) *GitRef {
	var out GitRef
	if r != nil {
		out = *r
	}
	if o.Branch != "" {
		out.Branch = o.Branch
	}
	if o.Commit != "" {
		out.Commit = o.Commit
	}
	if o.PR != "" {
		out.PR = o.PR
	}
	if out.IsZero() {
		return nil
	}
	return &out
}

// Body is the mode-specific payload. It is implemented by *DeployBody,
// *DebugBody and *PlanBody only.
type Body interface {
	Mode() Mode
	// Counts reports the number of entries per field, in compile order.
	Counts() []FieldCount
	apply(f Fact) error
	clone() Body
	// validate checks every stored entry the way Append checks new facts.
	validate() error
}

// FieldCount is one row of Body.Counts or Handoff.Counts.
type FieldCount struct {
	Field Field
	Count int
}

// NewBody returns an empty payload for mode.
func NewBody(mode Mode) (Body, error) {
	switch mode {
	case ModeDeploy:
		return &DeployBody{
			ShipItems:       []ShipItem{},
			VerifySteps:     []VerifyStep{},
			BreakingChanges: []BreakingChange{},
			EnvConcerns:     []EnvConcern{},
		}, nil
	case ModeDebug:
		return &DebugBody{
			Symptoms:   []Symptom{},
			Hypotheses: []Hypothesis{},
			Tried:      []Attempt{},
			Suspects:   []Suspect{},
			Evidence:   []Evidence{},
			TryNext:    []TryNext{},
		}, nil
	case ModePlan:
		return &PlanBody{
			Requirements: []Requirement{},
			Decisions:    []Decision{},
			Rejected:     []Rejection{},
			Questions:    []Question{},
			Constraints:  []Constraint{},
			NextSteps:    []NextStep{},
		}, nil
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

// Key is the identity used to collapse duplicate records after a merge.
func (h *Handoff) Key() string {
	return h.ID + "@" + h.CreatedAt.UTC().Format(time.RFC3339Nano)
}

// ShortID returns the first eight characters of the id.
func (h *Handoff) ShortID() string {
	if len(h.ID) > 8 {
		return h.ID[:8]
	}
	return h.ID
}

// Counts reports entries per field: the body fields in compile order
// followed by the warm-up fields.
func (h *Handoff) Counts() []FieldCount {
	var counts []FieldCount
	if h.Body != nil {
		counts = h.Body.Counts()
	}
	return append(counts, h.WarmUp.Counts()...)
}

// Entries returns the total number of entries recorded on the handoff.
func (h *Handoff) Entries() int {
	n := 0
	for _, c := range h.Counts() {
		n += c.Count
	}
	return n
}

// Clone returns a deep copy that shares no mutable state with h.
func (h *Handoff) Clone() *Handoff {
	if h == nil {
		return nil
	}
	c := *h
	c.Tags = slices.Clone(h.Tags)
	if h.FinalizedAt != nil {
		t := *h.FinalizedAt
		c.FinalizedAt = &t
	}
	if h.ArchivedAt != nil {
		t := *h.ArchivedAt
		c.ArchivedAt = &t
	}
	if h.GitRef != nil {
		ref := *h.GitRef
		c.GitRef = &ref
	}
	c.WarmUp = h.WarmUp.clone()
	if h.Body != nil {
		c.Body = h.Body.clone()
	}
	return &c
}

// UnmarshalJSON decodes the body according to the mode field.
func (h *Handoff) UnmarshalJSON(data []byte) error {
	type alias Handoff
	aux := struct {
		*alias
		Body json.RawMessage `json:"body"`
	}{alias: (*alias)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	body, err := NewBody(h.Mode)
	if err != nil {
		return err
	}
	if len(aux.Body) > 0 && string(aux.Body) != "null" {
		if err := json.Unmarshal(aux.Body, body); err != nil {
			return fmt.Errorf("failed to decode %s body: %w", h.Mode, err)
		}
	}
	if err := body.validate(); err != nil {
		return fmt.Errorf("invalid %s body: %w", h.Mode, err)
	}
	if err := h.WarmUp.validate(); err != nil {
		return fmt.Errorf("invalid warm-up: %w", err)
	}
	h.Body = body
	return nil
}

// Summary is the listing view of a handoff.
type Summary struct {
	ID          string     `json:"id"`
	Mode        Mode       `json:"mode"`
	Author      string     `json:"author"`
	Summary     string     `json:"summary"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Entries     int        `json:"entries"`
}

// Summarize returns the listing view of h.
func (h *Handoff) Summarize() Summary {
	return Summary{
		ID:          h.ID,
		Mode:        h.Mode,
		Author:      h.Author,
		Summary:     h.Summary,
		Status:      h.Status,
		CreatedAt:   h.CreatedAt,
		FinalizedAt: h.FinalizedAt,
		Tags:        slices.Clone(h.Tags),
		Entries:     h.Entries(),
	}
}

// SortNewestFirst orders handoffs by creation time, most recent first.
// Equal timestamps fall back to id so the order is total.
func SortNewestFirst(hs []*Handoff) {
	slices.SortStableFunc(hs, func(a, b *Handoff) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
