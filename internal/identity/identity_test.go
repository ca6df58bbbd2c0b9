package identity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCurrentAuthorNotSet(t *testing.T) {
	p := New(t.TempDir())
	if _, err := p.CurrentAuthor(); !errors.Is(err, ErrNotSet) {
		t.Errorf("expected ErrNotSet, got %v", err)
	}
}

func TestSetAndCurrentAuthor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".xas")
	p := New(dir)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	a, err := p.Set("  claude-backend ", now)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if a.ID != "claude-backend" {
		t.Errorf("expected trimmed name, got %q", a.ID)
	}

	got, err := New(dir).CurrentAuthor()
	if err != nil {
		t.Fatalf("CurrentAuthor failed: %v", err)
	}
	if got != "claude-backend" {
		t.Errorf("expected claude-backend, got %q", got)
	}

	stored, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !stored.SetAt.Equal(now) {
		t.Errorf("expected set_at %v, got %v", now, stored.SetAt)
	}
}

func TestOverrideWins(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	if _, err := p.Set("stored", time.Now()); err != nil {
		t.Fatal(err)
	}
	p.Override = "from-env"

	got, err := p.CurrentAuthor()
	if err != nil {
		t.Fatal(err)
	}
	if got != "from-env" {
		t.Errorf("expected override, got %q", got)
	}

	p.Override = "has space"
	if _, err := p.CurrentAuthor(); err == nil {
		t.Error("expected invalid override to fail")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"agent-a", true},
		{"ops@team.example", true},
		{"v1.2_bot", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
		{"semi;colon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateName(%q) error = %v, want valid=%v", tt.name, err, tt.valid)
			}
		})
	}
}

func TestGetCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir).Get(); err == nil || errors.Is(err, ErrNotSet) {
		t.Errorf("expected parse error, got %v", err)
	}
}
