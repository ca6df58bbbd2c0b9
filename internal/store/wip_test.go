package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/ohare93/xagentsync/internal/handoff"
)

func startWIP(t *testing.T) *handoff.Handoff {
	t.Helper()
	b := handoff.NewBuilder(nil)
	wip, err := b.Start(handoff.ModeDebug, "500 on large payloads", handoff.Meta{Author: "agent-a"})
	if err != nil {
		t.Fatal(err)
	}
	return wip
}

func TestWIPLoadAbsent(t *testing.T) {
	s := newTestStore(t)
	h, err := s.WIP().Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if h != nil {
		t.Errorf("expected no WIP, got %s", h.ID)
	}
}

func TestWIPSaveLoadClear(t *testing.T) {
	s := newTestStore(t)
	w := s.WIP()
	wip := startWIP(t)

	if err := w.Save(wip); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := w.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil || got.ID != wip.ID || got.Mode != handoff.ModeDebug {
		t.Fatalf("unexpected WIP after load: %+v", got)
	}

	if err := w.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(w.Path()); !os.IsNotExist(err) {
		t.Error("expected WIP file to be removed")
	}
	if err := w.Clear(); err != nil {
		t.Errorf("clearing twice should succeed: %v", err)
	}
}

func TestWIPSaveRejectsFinalized(t *testing.T) {
	s := newTestStore(t)
	record, err := handoff.Finalize(startWIP(t), baseTime)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WIP().Save(record); err == nil {
		t.Error("expected saving a pending handoff as WIP to fail")
	}
}

func TestWIPSaveWhileLocked(t *testing.T) {
	s := newTestStore(t)
	held := flock.New(filepath.Join(s.StateDir(), wipLockFile))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer held.Unlock()

	err = s.WIP().Save(startWIP(t))
	if !errors.Is(err, ErrWIPLocked) {
		t.Errorf("expected ErrWIPLocked, got %v", err)
	}
}

func TestWIPLoadCorrupt(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.WIP().Path(), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WIP().Load(); err == nil {
		t.Error("expected corrupt WIP to fail loading")
	}
}
