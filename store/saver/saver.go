// Package saver coalesces player saves: a record is written after a number
// of changes or an elapsed interval, whichever comes first. Failed writes
// are logged and retried on the next trigger.
package saver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/store"
)

// Policy is the save trigger.
type Policy struct {
	Every    int           // changes before a save; <= 0 means 5
	Interval time.Duration // max time a change waits; <= 0 means 30s
}

// Saver owns the pending record for one player.
type Saver struct {
	store  store.PlayerStore
	policy Policy
	logger *slog.Logger

	// flushMu serializes writes so an older record never lands after a
	// newer one.
	flushMu sync.Mutex
	mu      sync.Mutex
	pending *save.Record
	changes int
	due     chan struct{}
}

// New returns a saver writing to st.
func New(st store.PlayerStore, policy Policy, logger *slog.Logger) *Saver {
	if policy.Every <= 0 {
		policy.Every = 5
	}
	if policy.Interval <= 0 {
		policy.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		store:  st,
		policy: policy,
		logger: logger,
		due:    make(chan struct{}, 1),
	}
}

// Mark records a change. The record must not be shared with the caller.
// It reports whether the change count reached the policy and woke Run.
func (s *Saver) Mark(r *save.Record) bool {
	s.mu.Lock()
	s.pending = r
	s.changes++
	ready := s.changes >= s.policy.Every
	s.mu.Unlock()

	if ready {
		select {
		case s.due <- struct{}{}:
		default:
		}
	}
	return ready
}

// Pending reports whether a change is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush writes the pending record now. On failure the record stays pending
// unless a newer one replaced it meanwhile.
func (s *Saver) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	r := s.pending
	s.mu.Unlock()
	if r == nil {
		return nil
	}

	if err := s.store.SavePlayer(ctx, r); err != nil {
		s.logger.WarnContext(ctx, "player save failed",
			"wallet", r.Player.WalletAddress, "turn", r.Turn, "error", err)
		return err
	}

	s.mu.Lock()
	if s.pending == r {
		s.pending = nil
		s.changes = 0
	}
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "player saved", "wallet", r.Player.WalletAddress, "turn", r.Turn)
	return nil
}

// Run flushes on the change trigger and on every interval until ctx ends,
// then makes a final attempt with a short deadline.
func (s *Saver) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			_ = s.Flush(final)
			cancel()
			return nil
		case <-s.due:
			_ = s.Flush(ctx)
		case <-ticker.C:
			_ = s.Flush(ctx)
		}
	}
}
