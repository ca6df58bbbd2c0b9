package handoff

import (
	"fmt"
	"strings"
)

// SchemaError reports a token that is not legal for an enum field.
type SchemaError struct {
	Field   string
	Raw     string
	Allowed []string
}

func (e *SchemaError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("unknown enum field %q", e.Field)
	}
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Field, e.Raw, strings.Join(e.Allowed, ", "))
}

// ModeMismatchError reports a fact aimed at a field of another mode, or an
// operation requested for one mode while a handoff of another mode is in
// progress. Field is empty in the second case.
type ModeMismatchError struct {
	Field     Field
	FieldMode Mode
	Active    Mode
}

func (e *ModeMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("the current handoff is %s, not %s", e.Active, e.FieldMode)
	}
	return fmt.Sprintf("%s belongs to %s handoffs, but the current handoff is %s", e.Field, e.FieldMode, e.Active)
}

// ConflictReason distinguishes the two WIP conflicts.
type ConflictReason string

const (
	ConflictWIPExists ConflictReason = "wip_exists"
	ConflictNoWIP     ConflictReason = "no_wip"
)

// ConflictError reports that the WIP slot is in the wrong state for the call.
type ConflictError struct {
	Reason ConflictReason
	// Existing is set when Reason is ConflictWIPExists.
	Existing *Summary
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ConflictWIPExists:
		if e.Existing != nil {
			return fmt.Sprintf("a %s handoff is already in progress (%q); finish it with done or drop it with discard",
				e.Existing.Mode, e.Existing.Summary)
		}
		return "a handoff is already in progress; finish it with done or drop it with discard"
	case ConflictNoWIP:
		return "no handoff in progress; start one with new"
	default:
		return string(e.Reason)
	}
}

// ValidationError lists every unmet precondition found.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid handoff: " + e.Violations[0]
	}
	return "invalid handoff:\n  - " + strings.Join(e.Violations, "\n  - ")
}

// NotFoundError reports an id that is absent from the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("handoff %s not found", e.ID)
}
