package integration_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohare93/xagentsync/internal/cli"
	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/store"
)

// TestEnv holds the test environment setup
type TestEnv struct {
	TempDir       string
	SyncDir       string
	OriginalFlags cli.GlobalOptions
}

// SetupTestEnv creates an isolated sync directory and resets global flags
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tempDir := t.TempDir()
	syncDir := filepath.Join(tempDir, "handoffs")
	if err := os.MkdirAll(syncDir, 0755); err != nil {
		t.Fatalf("Failed to create sync dir: %v", err)
	}
	for _, name := range []string{"XAS_DIR", "XAS_AGENT", "XAS_VERBOSE", "XAS_AUTO_COMMIT", "XAS_AUTO_PUSH"} {
		t.Setenv(name, "")
	}

	env := &TestEnv{
		TempDir:       tempDir,
		SyncDir:       syncDir,
		OriginalFlags: cli.GlobalOpts,
	}
	cli.GlobalOpts = cli.GlobalOptions{}
	t.Cleanup(func() { cli.GlobalOpts = env.OriginalFlags })
	return env
}

// Result captures one command invocation
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes xas with args against the test sync directory. Global flags
// are reset first so invocations do not leak into each other.
func (env *TestEnv) Run(t *testing.T, args ...string) Result {
	t.Helper()
	cli.GlobalOpts = cli.GlobalOptions{}

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--dir", env.SyncDir}, args...))
	err := cmd.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// MustRun executes xas and fails the test on error
func (env *TestEnv) MustRun(t *testing.T, args ...string) string {
	t.Helper()
	r := env.Run(t, args...)
	if r.Err != nil {
		t.Fatalf("xas %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), r.Err, r.Stdout, r.Stderr)
	}
	return r.Stdout
}

// Init runs xas init with auto-commit disabled and sets an identity
func (env *TestEnv) Init(t *testing.T, agent string) {
	t.Helper()
	env.MustRun(t, "init")
	env.DisableAutoCommit(t)
	env.MustRun(t, "whoami", "--set", agent)
}

// DisableAutoCommit rewrites the config so done does not shell out to git
func (env *TestEnv) DisableAutoCommit(t *testing.T) {
	t.Helper()
	path := filepath.Join(env.SyncDir, store.StateDirName, "config.yaml")
	data := "vcs: git\nauto_commit: false\nauto_push: false\nremote: origin\nsync_retries: 0\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// GetStore returns a store over the test sync directory
func (env *TestEnv) GetStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(env.SyncDir, nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return st
}

// Pending returns the pending handoffs, newest first
func (env *TestEnv) Pending(t *testing.T) []*handoff.Handoff {
	t.Helper()
	hs, err := env.GetStore(t).LoadAll(store.Filter{Status: handoff.StatusPending})
	if err != nil {
		t.Fatalf("Failed to load pending: %v", err)
	}
	return hs
}

// Archived returns the archived handoffs, newest first
func (env *TestEnv) Archived(t *testing.T) []*handoff.Handoff {
	t.Helper()
	hs, err := env.GetStore(t).LoadAll(store.Filter{Status: handoff.StatusArchived})
	if err != nil {
		t.Fatalf("Failed to load archive: %v", err)
	}
	return hs
}

// WIP returns the work-in-progress handoff or nil
func (env *TestEnv) WIP(t *testing.T) *handoff.Handoff {
	t.Helper()
	h, err := env.GetStore(t).WIP().Load()
	if err != nil {
		t.Fatalf("Failed to load WIP: %v", err)
	}
	return h
}

// DecodeJSON unmarshals command output
func DecodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("Failed to decode JSON output: %v\n%s", err, out)
	}
}
