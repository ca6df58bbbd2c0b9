package vcs

import (
	"context"
	"os/exec"
	"strings"
)

// GitBackend implements VCS for Git.
type GitBackend struct{}

// NewGitBackend creates a new Git backend instance.
func NewGitBackend() *GitBackend {
	return &GitBackend{}
}

// Type returns VCSTypeGit.
func (g *GitBackend) Type() VCSType {
	return VCSTypeGit
}

// Status returns the output of git status.
func (g *GitBackend) Status(dir string) (string, error) {
	cmd := exec.Command("git", "status")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// HasChanges returns true if paths (or the whole tree) have uncommitted
// changes, including untracked files.
func (g *GitBackend) HasChanges(dir string, paths ...string) (bool, error) {
	args := append([]string{"status", "--porcelain", "--untracked-files=all", "--"}, paths...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return false, &CommandError{Op: "git status", Output: string(output), Err: err}
	}
	return strings.TrimSpace(string(output)) != "", nil
}

// Commit stages paths and creates a git commit containing only them.
func (g *GitBackend) Commit(dir, message string, paths ...string) (*CommitResult, error) {
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
	hasChanges, err := g.HasChanges(dir, paths...)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}
	if !hasChanges {
		result.Success = true
		result.StatusOutput = "No changes to commit"
		return result, nil
	}

	// Stage the paths, picking up additions and deletions
	stageArgs := append([]string{"add", "-A", "--"}, paths...)
	stageCmd := exec.Command("git", stageArgs...)
	stageCmd.Dir = dir
	if output, err := stageCmd.CombinedOutput(); err != nil {
		result.ErrorMessage = string(output)
		return result, nil
	}

	// Commit only those paths so unrelated staged work stays staged
	commitArgs := append([]string{"commit", "-m", message, "--"}, paths...)
	commitCmd := exec.Command("git", commitArgs...)
	commitCmd.Dir = dir
	commitOutput, err := commitCmd.CombinedOutput()
	if err != nil {
		result.ErrorMessage = string(commitOutput)
		return result, nil
	}

	result.Success = true

	// Get commit hash (best effort - don't fail if this doesn't work)
	if hash, err := g.GetLastCommitHash(dir); err == nil {
		result.CommitHash = hash
	}

	// Get final status (best effort)
	if status, err := g.Status(dir); err == nil {
		result.StatusOutput = strings.TrimSpace(status)
	}

	return result, nil
}

// GetLastCommitHash returns the short hash of the last commit.
func (g *GitBackend) GetLastCommitHash(dir string) (string, error) {
	cmd := exec.Command("git", "log", "-1", "--format=%h")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &CommandError{Op: "git log", Output: string(output), Err: err}
	}
	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the checked-out branch, or "" for a detached HEAD.
func (g *GitBackend) CurrentBranch(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &CommandError{Op: "git rev-parse", Output: string(output), Err: err}
	}
	branch := strings.TrimSpace(string(output))
	if branch == "HEAD" {
		return "", nil
	}
	return branch, nil
}

// Pull rebases local commits onto the remote's copy of the current branch.
func (g *GitBackend) Pull(ctx context.Context, dir, remote string) error {
	cmd := exec.CommandContext(ctx, "git", "pull", "--rebase", "--autostash", remote)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return &CommandError{Op: "git pull", Output: string(output), Err: err}
	}
	return nil
}

// Push publishes the current branch to remote.
func (g *GitBackend) Push(ctx context.Context, dir, remote string) error {
	cmd := exec.CommandContext(ctx, "git", "push", remote, "HEAD")
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return &CommandError{Op: "git push", Output: string(output), Err: err}
	}
	return nil
}
