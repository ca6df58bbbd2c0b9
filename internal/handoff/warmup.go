package handoff

import (
	"fmt"
	"slices"
)

// WarmUp is the mode-independent part of a handoff that gets the receiving
// agent productive quickly.
type WarmUp struct {
	TLDR           TLDR           `json:"tldr,omitempty"`
	MustKnow       []MustKnow     `json:"must_know,omitempty"`
	PriorityFiles  []PriorityFile `json:"priority_files,omitempty"`
	SuggestedStart SuggestedStart `json:"suggested_start,omitempty"`
}

// TLDR is the essential context in a few sentences. Setting it again
// replaces it.
type TLDR string

// MustKnow is something the receiving agent must not miss.
type MustKnow string

// PriorityFile is a file to read first. Files are listed in the order they
// were added, most important first.
type PriorityFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason,omitempty"`
	Focus  string `json:"focus,omitempty"`
}

// SuggestedStart is the first action the receiving agent should take.
// Setting it again replaces it.
type SuggestedStart string

func (TLDR) Field() Field           { return FieldTLDR }
func (MustKnow) Field() Field       { return FieldMustKnow }
func (PriorityFile) Field() Field   { return FieldPriorityFile }
func (SuggestedStart) Field() Field { return FieldSuggestStart }

func (t TLDR) check() error           { return required("tldr", string(t)) }
func (m MustKnow) check() error       { return required("must-know item", string(m)) }
func (p PriorityFile) check() error   { return required("path", p.Path) }
func (s SuggestedStart) check() error { return required("suggested start", string(s)) }

// Empty reports whether no warm-up data was recorded.
func (w WarmUp) Empty() bool {
	return w.TLDR == "" && len(w.MustKnow) == 0 && len(w.PriorityFiles) == 0 && w.SuggestedStart == ""
}

// Counts reports the number of entries per warm-up field.
func (w WarmUp) Counts() []FieldCount {
	var tldr, start int
	if w.TLDR != "" {
		tldr = 1
	}
	if w.SuggestedStart != "" {
		start = 1
	}
	return []FieldCount{
		{FieldTLDR, tldr},
		{FieldMustKnow, len(w.MustKnow)},
		{FieldPriorityFile, len(w.PriorityFiles)},
		{FieldSuggestStart, start},
	}
}

func (w WarmUp) clone() WarmUp {
	w.MustKnow = slices.Clone(w.MustKnow)
	w.PriorityFiles = slices.Clone(w.PriorityFiles)
	return w
}

func (w *WarmUp) apply(f Fact) error {
	switch v := f.(type) {
	case TLDR:
		w.TLDR = v
	case MustKnow:
		w.MustKnow = append(w.MustKnow, v)
	case PriorityFile:
		w.PriorityFiles = append(w.PriorityFiles, v)
	case SuggestedStart:
		w.SuggestedStart = v
	default:
		return fmt.Errorf("warm-up cannot record %T", f)
	}
	return nil
}

func (w WarmUp) validate() error {
	return firstError(
		checkOptional(w.TLDR),
		checkEach(w.MustKnow),
		checkEach(w.PriorityFiles),
		checkOptional(w.SuggestedStart),
	)
}
