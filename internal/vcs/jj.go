package vcs

import (
	"context"
	"os/exec"
	"strings"
)

// JJBackend implements VCS for Jujutsu (jj).
type JJBackend struct{}

// NewJJBackend creates a new JJ backend instance.
func NewJJBackend() *JJBackend {
	return &JJBackend{}
}

// Type returns VCSTypeJJ.
func (j *JJBackend) Type() VCSType {
	return VCSTypeJJ
}

// Status returns the output of jj status.
func (j *JJBackend) Status(dir string) (string, error) {
	cmd := exec.Command("jj", "status")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// HasChanges returns true if the working-copy commit touches paths (or
// anything, when no paths are given).
func (j *JJBackend) HasChanges(dir string, paths ...string) (bool, error) {
	args := append([]string{"diff", "--summary", "-r", "@", "--"}, paths...)
	cmd := exec.Command("jj", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return false, &CommandError{Op: "jj diff", Output: string(output), Err: err}
	}
	return strings.TrimSpace(string(output)) != "", nil
}

// Commit splits paths out of the working copy into a commit with message.
func (j *JJBackend) Commit(dir, message string, paths ...string) (*CommitResult, error) {
	result := &CommitResult{}

	// Validate commit message
	if message == "" {
		result.ErrorMessage = "commit message cannot be empty"
		return result, nil
	}
	if len(message) > 5000 {
		result.ErrorMessage = "commit message too long (max 5000 chars)"
		return result, nil
	}

	// Check for changes first
	hasChanges, err := j.HasChanges(dir, paths...)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}
	if !hasChanges {
		result.Success = true
		result.StatusOutput = "No changes to commit"
		return result, nil
	}

	// Perform the commit
	commitArgs := append([]string{"commit", "-m", message}, paths...)
	commitCmd := exec.Command("jj", commitArgs...)
	commitCmd.Dir = dir
	commitOutput, err := commitCmd.CombinedOutput()
	if err != nil {
		result.ErrorMessage = string(commitOutput)
		return result, nil
	}

	result.Success = true

	// Get commit hash (best effort - don't fail if this doesn't work)
	if hash, err := j.GetLastCommitHash(dir); err == nil {
		result.CommitHash = hash
	}

	// Get final status (best effort)
	if status, err := j.Status(dir); err == nil {
		result.StatusOutput = strings.TrimSpace(status)
	}

	return result, nil
}

// GetLastCommitHash returns the short hash of the parent of the working copy,
// which is the last committed change.
func (j *JJBackend) GetLastCommitHash(dir string) (string, error) {
	cmd := exec.Command("jj", "log", "-r", "@-", "-n", "1", "--no-graph", "-T", "commit_id.short()")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &CommandError{Op: "jj log", Output: string(output), Err: err}
	}
	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the bookmarks on the last committed change.
func (j *JJBackend) CurrentBranch(dir string) (string, error) {
	cmd := exec.Command("jj", "log", "-r", "@-", "-n", "1", "--no-graph", "-T", `bookmarks.join(",")`)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &CommandError{Op: "jj log", Output: string(output), Err: err}
	}
	return strings.TrimSpace(string(output)), nil
}

// Pull fetches from remote and rebases the working copy onto trunk.
func (j *JJBackend) Pull(ctx context.Context, dir, remote string) error {
	fetch := exec.CommandContext(ctx, "jj", "git", "fetch", "--remote", remote)
	fetch.Dir = dir
	if output, err := fetch.CombinedOutput(); err != nil {
		return &CommandError{Op: "jj git fetch", Output: string(output), Err: err}
	}
	rebase := exec.CommandContext(ctx, "jj", "rebase", "-d", "trunk()")
	rebase.Dir = dir
	if output, err := rebase.CombinedOutput(); err != nil {
		return &CommandError{Op: "jj rebase", Output: string(output), Err: err}
	}
	return nil
}

// Push publishes tracked bookmarks to remote.
func (j *JJBackend) Push(ctx context.Context, dir, remote string) error {
	cmd := exec.CommandContext(ctx, "jj", "git", "push", "--remote", remote)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return &CommandError{Op: "jj git push", Output: string(output), Err: err}
	}
	return nil
}
