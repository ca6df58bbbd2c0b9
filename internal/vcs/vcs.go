// Package vcs shells out to git or jj to share the sync directory.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/ohare93/xagentsync/internal/handoff"
)

// VCSType represents the version control system type.
type VCSType string

const (
	VCSTypeJJ  VCSType = "jj"
	VCSTypeGit VCSType = "git"
)

// String returns the string representation of VCSType.
func (v VCSType) String() string {
	return string(v)
}

// IsValid returns true if the VCSType is a known valid type.
func (v VCSType) IsValid() bool {
	return v == VCSTypeJJ || v == VCSTypeGit
}

// CommitResult represents the outcome of a commit operation.
type CommitResult struct {
	Success      bool   // Whether the commit succeeded
	CommitHash   string // Short hash of the new commit (if successful)
	StatusOutput string // Output from status after commit
	ErrorMessage string // Error message if commit failed
}

// VCS defines the version control operations xas needs. Paths restrict
// status and commits to the handoff directories so unrelated work in the
// same repository is left alone.
type VCS interface {
	// Type returns the VCS type (jj or git)
	Type() VCSType

	// Status returns the current status output
	Status(dir string) (string, error)

	// HasChanges returns true if any of paths has uncommitted changes
	HasChanges(dir string, paths ...string) (bool, error)

	// Commit records the current state of paths with the given message
	Commit(dir, message string, paths ...string) (*CommitResult, error)

	// GetLastCommitHash returns the short hash of the last commit
	GetLastCommitHash(dir string) (string, error)

	// CurrentBranch returns the branch (or bookmark) being worked on, or ""
	CurrentBranch(dir string) (string, error)

	// Pull brings in records shared by other agents
	Pull(ctx context.Context, dir, remote string) error

	// Push publishes local commits
	Push(ctx context.Context, dir, remote string) error
}

// CommandError is a failed VCS invocation with its combined output.
type CommandError struct {
	Op     string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %s: %v", e.Op, out, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// permanentMarkers identify failures that retrying cannot fix.
var permanentMarkers = []string{
	"not a git repository",
	"does not appear to be a git repository",
	"no such remote",
	"no tracking information",
	"conflict",
	"rejected",
	"there is no jj repo",
	"authentication failed",
	"permission denied",
}

// Temporary reports whether the failure looks transient (network trouble,
// a busy lock) rather than a configuration or merge problem.
func (e *CommandError) Temporary() bool {
	out := strings.ToLower(e.Output)
	for _, marker := range permanentMarkers {
		if strings.Contains(out, marker) {
			return false
		}
	}
	return true
}

// GetBackend returns the appropriate VCS backend for the given type.
func GetBackend(vcsType VCSType) VCS {
	switch vcsType {
	case VCSTypeJJ:
		return NewJJBackend()
	case VCSTypeGit:
		return NewGitBackend()
	default:
		return NewGitBackend() // Default to git
	}
}

// GetBackendForDir returns the VCS backend for dir, preferring configured.
func GetBackendForDir(dir string, configured VCSType) VCS {
	return GetBackend(Detect(dir, configured))
}

// CurrentRef captures the branch and commit dir is at. Either part may be
// empty; an error means neither could be determined.
func CurrentRef(backend VCS, dir string) (*handoff.GitRef, error) {
	branch, branchErr := backend.CurrentBranch(dir)
	commit, commitErr := backend.GetLastCommitHash(dir)
	if branchErr != nil && commitErr != nil {
		return nil, commitErr
	}
	if branch == "" && commit == "" {
		return nil, nil
	}
	return &handoff.GitRef{Branch: branch, Commit: commit}, nil
}
