package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SyncResult reports what a sync did.
type SyncResult struct {
	Pulled bool
	Commit *CommitResult
	Pushed bool
}

// Syncer shares the sync directory through a VCS remote. Network steps are
// retried with exponential backoff; configuration and merge failures are not.
type Syncer struct {
	Backend VCS
	Dir     string
	Remote  string
	// Retries is the number of extra attempts for pull and push.
	Retries int
	Log     *slog.Logger

	// NewBackOff builds the retry policy; replaceable for tests.
	NewBackOff func() backoff.BackOff
}

// NewSyncer returns a Syncer with the default retry policy.
func NewSyncer(backend VCS, dir, remote string, retries int, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Syncer{
		Backend:    backend,
		Dir:        dir,
		Remote:     remote,
		Retries:    retries,
		Log:        log,
		NewBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	return bo
}

// Commit records the sync directory with message. A commit that the backend
// rejects is returned as an error.
func (s *Syncer) Commit(message string) (*CommitResult, error) {
	result, err := s.Backend.Commit(s.Dir, message, ".")
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("%s commit failed: %s", s.Backend.Type(), result.ErrorMessage)
	}
	return result, nil
}

// Pull fetches and integrates remote records.
func (s *Syncer) Pull(ctx context.Context) error {
	return s.retry(ctx, "pull", func(ctx context.Context) error {
		return s.Backend.Pull(ctx, s.Dir, s.Remote)
	})
}

// Push publishes local commits.
func (s *Syncer) Push(ctx context.Context) error {
	return s.retry(ctx, "push", func(ctx context.Context) error {
		return s.Backend.Push(ctx, s.Dir, s.Remote)
	})
}

// Sync pulls, then unless pullOnly commits local changes with message and
// pushes.
func (s *Syncer) Sync(ctx context.Context, pullOnly bool, message string) (*SyncResult, error) {
	result := &SyncResult{}
	if err := s.Pull(ctx); err != nil {
		return result, err
	}
	result.Pulled = true
	if pullOnly {
		return result, nil
	}

	commit, err := s.Commit(message)
	if err != nil {
		return result, err
	}
	result.Commit = commit

	if err := s.Push(ctx); err != nil {
		return result, err
	}
	result.Pushed = true
	return result, nil
}

func (s *Syncer) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	newBackOff := s.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	retries := s.Retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)

	log := s.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && !cmdErr.Temporary() {
			return backoff.Permanent(err)
		}
		log.Warn("sync step failed", "op", op, "attempt", attempt, "error", err)
		return err
	}, policy)
}
