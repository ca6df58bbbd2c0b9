package handoff

import (
	"fmt"
	"strings"
	"time"
)

// Finalize checks that h is a complete in-progress handoff and returns a
// pending copy stamped with now. Every unmet precondition is reported in a
// single ValidationError; h itself is never modified.
func Finalize(h *Handoff, now time.Time) (*Handoff, error) {
	if h == nil {
		return nil, &ValidationError{Violations: []string{"handoff is required"}}
	}

	var violations []string
	if h.Status != StatusInProgress {
		violations = append(violations, fmt.Sprintf("status is %s; only %s handoffs can be finalized", h.Status, StatusInProgress))
	}
	if strings.TrimSpace(h.Summary) == "" {
		violations = append(violations, "summary is required")
	}
	if strings.TrimSpace(h.Author) == "" {
		violations = append(violations, "author is required (set one with whoami --set)")
	}
	if h.ID == "" {
		violations = append(violations, "id is required")
	}
	if h.CreatedAt.IsZero() {
		violations = append(violations, "created_at is required")
	}
	switch {
	case h.Body == nil:
		violations = append(violations, "body is required")
	case h.Body.Mode() != h.Mode:
		violations = append(violations, fmt.Sprintf("body is %s but mode is %s", h.Body.Mode(), h.Mode))
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	record := h.Clone()
	stamp := now.UTC()
	record.FinalizedAt = &stamp
	record.Status = StatusPending
	return record, nil
}

// Archive returns an archived copy of a pending record.
func Archive(h *Handoff, now time.Time) (*Handoff, error) {
	if h.Status != StatusPending {
		return nil, &ValidationError{Violations: []string{
			fmt.Sprintf("status is %s; only %s handoffs can be archived", h.Status, StatusPending),
		}}
	}
	record := h.Clone()
	stamp := now.UTC()
	record.ArchivedAt = &stamp
	record.Status = StatusArchived
	return record, nil
}
