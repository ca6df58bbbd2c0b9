package app

import (
	"github.com/ohare93/xagentsync/internal/handoff"
)

// StatusReport is the state shown by xas status.
type StatusReport struct {
	// Author is empty when no identity is set; AuthorErr says why.
	Author    string
	AuthorErr error

	WIP       *handoff.Summary
	WIPCounts []handoff.FieldCount

	Pending       int
	PendingByMode map[handoff.Mode]int
}

// Status gathers identity, WIP and pending counts. Only store failures are
// returned as errors.
func (s *Service) Status() (*StatusReport, error) {
	r := &StatusReport{PendingByMode: make(map[handoff.Mode]int)}
	r.Author, r.AuthorErr = s.Identity.CurrentAuthor()

	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	if current != nil {
		summary := current.Summarize()
		r.WIP = &summary
		r.WIPCounts = current.Counts()
	}

	pending, err := s.Pending(Filter{})
	if err != nil {
		return nil, err
	}
	r.Pending = len(pending)
	for _, h := range pending {
		r.PendingByMode[h.Mode]++
	}
	return r, nil
}
