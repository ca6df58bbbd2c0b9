package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestVCSType_IsValid(t *testing.T) {
	tests := []struct {
		vcsType VCSType
		want    bool
	}{
		{VCSTypeJJ, true},
		{VCSTypeGit, true},
		{"svn", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.vcsType), func(t *testing.T) {
			if got := tt.vcsType.IsValid(); got != tt.want {
				t.Errorf("VCSType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAutoDetect_JJ(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0755); err != nil {
		t.Fatal(err)
	}

	result := AutoDetect(tmpDir)
	if result != VCSTypeJJ {
		t.Errorf("expected jj, got %s", result)
	}
}

func TestAutoDetect_Git(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	result := AutoDetect(tmpDir)
	if result != VCSTypeGit {
		t.Errorf("expected git, got %s", result)
	}
}

func TestAutoDetect_JJPriority(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	result := AutoDetect(tmpDir)
	if result != VCSTypeJJ {
		t.Errorf("expected jj (priority), got %s", result)
	}
}

func TestAutoDetect_FromSubdirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(tmpDir, "handoffs", "team")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	result := AutoDetect(sub)
	if result != VCSTypeJJ {
		t.Errorf("expected jj from parent directory, got %s", result)
	}
}

func TestAutoDetect_DefaultToGit(t *testing.T) {
	tmpDir := t.TempDir()

	result := AutoDetect(tmpDir)
	if result != VCSTypeGit {
		t.Errorf("expected git (default), got %s", result)
	}
}

func TestDetect_ConfiguredWins(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0755); err != nil {
		t.Fatal(err)
	}

	result := Detect(tmpDir, VCSTypeGit)
	if result != VCSTypeGit {
		t.Errorf("expected git (configured), got %s", result)
	}
}

func TestDetect_AutoDetectWhenNotConfigured(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0755); err != nil {
		t.Fatal(err)
	}

	result := Detect(tmpDir, "")
	if result != VCSTypeJJ {
		t.Errorf("expected jj (auto-detected), got %s", result)
	}
}

func TestGetBackend(t *testing.T) {
	tests := []struct {
		vcsType VCSType
		want    VCSType
	}{
		{VCSTypeJJ, VCSTypeJJ},
		{VCSTypeGit, VCSTypeGit},
		{"unknown", VCSTypeGit}, // defaults to git
		{"", VCSTypeGit},        // defaults to git
	}

	for _, tt := range tests {
		t.Run(string(tt.vcsType), func(t *testing.T) {
			backend := GetBackend(tt.vcsType)
			if backend.Type() != tt.want {
				t.Errorf("GetBackend(%s).Type() = %s, want %s", tt.vcsType, backend.Type(), tt.want)
			}
		})
	}
}

// =============================================================================
// Git Backend Tests
// =============================================================================

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %s: %v", strings.Join(args, " "), output, err)
	}
	return strings.TrimSpace(string(output))
}

// setupGitRepo creates a git repo in the given directory with initial commit
func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	requireGit(t)

	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")

	testFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(testFile, []byte("# Test\n"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	// Rename default branch to main (for consistency)
	runGit(t, dir, "branch", "-M", "main")
}

func TestGitBackend_Type(t *testing.T) {
	backend := NewGitBackend()
	if backend.Type() != VCSTypeGit {
		t.Errorf("expected git, got %s", backend.Type())
	}
}

func TestGitBackend_CurrentBranch(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)

	branch, err := NewGitBackend().CurrentBranch(tmpDir)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "main" {
		t.Errorf("expected 'main', got %q", branch)
	}
}

func TestGitBackend_CurrentBranch_DetachedHead(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)
	runGit(t, tmpDir, "checkout", "--detach", "HEAD")

	branch, err := NewGitBackend().CurrentBranch(tmpDir)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "" {
		t.Errorf("expected no branch for detached HEAD, got %q", branch)
	}
}

func TestGitBackend_CurrentBranch_NonRepo(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()

	if _, err := NewGitBackend().CurrentBranch(tmpDir); err == nil {
		t.Error("expected error for non-repo directory")
	}
}

func TestCurrentRef(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)

	ref, err := CurrentRef(NewGitBackend(), tmpDir)
	if err != nil {
		t.Fatalf("CurrentRef failed: %v", err)
	}
	want := runGit(t, tmpDir, "log", "-1", "--format=%h")
	if ref == nil || ref.Branch != "main" || ref.Commit != want {
		t.Errorf("unexpected ref %+v, want main @ %s", ref, want)
	}
}

func TestCurrentRef_NonRepo(t *testing.T) {
	requireGit(t)
	if _, err := CurrentRef(NewGitBackend(), t.TempDir()); err == nil {
		t.Error("expected error outside a repository")
	}
}

func TestGitBackend_HasChanges(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)
	backend := NewGitBackend()

	hasChanges, err := backend.HasChanges(tmpDir)
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if hasChanges {
		t.Error("expected no changes in clean repo")
	}

	if err := os.MkdirAll(filepath.Join(tmpDir, "pending"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "pending", "a.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	hasChanges, err = backend.HasChanges(tmpDir)
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if !hasChanges {
		t.Error("expected untracked file to count as a change")
	}

	hasChanges, err = backend.HasChanges(tmpDir, "README.md")
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if hasChanges {
		t.Error("expected no changes when restricted to README.md")
	}
}

func TestGitBackend_CommitOnlyPaths(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)
	handoffs := filepath.Join(tmpDir, "handoffs")
	if err := os.MkdirAll(filepath.Join(handoffs, "pending"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(handoffs, "pending", "a.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "unrelated.txt"), []byte("work\n"), 0644); err != nil {
		t.Fatal(err)
	}

	backend := NewGitBackend()
	result, err := backend.Commit(handoffs, "xas handoff [debug]: test", ".")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected commit to succeed: %s", result.ErrorMessage)
	}
	if result.CommitHash == "" {
		t.Error("expected commit hash")
	}

	files := runGit(t, tmpDir, "show", "--name-only", "--format=", "HEAD")
	if files != "handoffs/pending/a.json" {
		t.Errorf("expected only the handoff file in the commit, got %q", files)
	}
	status := runGit(t, tmpDir, "status", "--porcelain")
	if !strings.Contains(status, "unrelated.txt") {
		t.Errorf("expected unrelated.txt to stay uncommitted, status: %q", status)
	}

	// A second commit with nothing new is a successful no-op.
	result, err = backend.Commit(handoffs, "again", ".")
	if err != nil || !result.Success || result.StatusOutput != "No changes to commit" {
		t.Errorf("expected no-op commit, got %+v, %v", result, err)
	}
}

func TestGitBackend_CommitRecordsDeletions(t *testing.T) {
	tmpDir := t.TempDir()
	setupGitRepo(t, tmpDir)
	pending := filepath.Join(tmpDir, "pending")
	if err := os.MkdirAll(pending, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pending, "a.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	backend := NewGitBackend()
	if result, err := backend.Commit(tmpDir, "add", "."); err != nil || !result.Success {
		t.Fatalf("first commit failed: %+v %v", result, err)
	}

	if err := os.Remove(filepath.Join(pending, "a.json")); err != nil {
		t.Fatal(err)
	}
	result, err := backend.Commit(tmpDir, "archive", ".")
	if err != nil || !result.Success {
		t.Fatalf("deletion commit failed: %+v %v", result, err)
	}
	if status := runGit(t, tmpDir, "status", "--porcelain"); status != "" {
		t.Errorf("expected clean tree, got %q", status)
	}
}

func TestGitBackend_CommitEmptyMessage(t *testing.T) {
	result, err := NewGitBackend().Commit(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.ErrorMessage == "" {
		t.Errorf("expected validation failure, got %+v", result)
	}
}

func TestGitBackend_PushAndPull(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	if err := os.MkdirAll(remote, 0755); err != nil {
		t.Fatal(err)
	}
	runGit(t, remote, "init", "--bare")

	alice := filepath.Join(root, "alice")
	if err := os.MkdirAll(alice, 0755); err != nil {
		t.Fatal(err)
	}
	setupGitRepo(t, alice)
	runGit(t, alice, "remote", "add", "origin", remote)
	runGit(t, alice, "push", "-u", "origin", "main")

	bob := filepath.Join(root, "bob")
	runGit(t, root, "clone", "--branch", "main", remote, bob)
	runGit(t, bob, "config", "user.email", "bob@test.com")
	runGit(t, bob, "config", "user.name", "Bob")

	if err := os.WriteFile(filepath.Join(alice, "handoff.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	syncer := NewSyncer(NewGitBackend(), alice, "origin", 0, nil)
	if _, err := syncer.Sync(context.Background(), false, "xas sync"); err != nil {
		t.Fatalf("alice sync failed: %v", err)
	}

	bobSyncer := NewSyncer(NewGitBackend(), bob, "origin", 0, nil)
	if _, err := bobSyncer.Sync(context.Background(), true, ""); err != nil {
		t.Fatalf("bob pull failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(bob, "handoff.json")); err != nil {
		t.Errorf("expected bob to receive handoff.json: %v", err)
	}
}
