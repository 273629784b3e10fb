// Package session runs one player's engine for a host: it loads or creates
// the player record, serializes commands and ticks, persists changes
// through the saver, and forwards notifications.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/kaito/engine"
	"github.com/nathoo/kaito/engine/events"
	"github.com/nathoo/kaito/engine/leaderboard"
	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/notify"
	"github.com/nathoo/kaito/store"
	"github.com/nathoo/kaito/store/saver"
	"github.com/nathoo/kaito/types"
)

// Options configure Open.
type Options struct {
	Wallet string
	Name   string
	Trait  string
	Seed   int64
	// Clock defaults to time.Now.
	Clock        func() time.Time
	SavePolicy   saver.Policy
	TickInterval time.Duration
	Sinks        []notify.Sink
}

// Turn is the outcome of one command, or of a tick.
type Turn struct {
	types.Result
	Notes []types.Notification
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	eng    *engine.Engine
	store  store.PlayerStore
	saver  *saver.Saver
	notes  *notify.Dispatcher
	logger *slog.Logger
	clock  func() time.Time
	tick   time.Duration
	wallet string
}

// Open loads the player for opts.Wallet, or creates a new one when the store
// has none.
func Open(ctx context.Context, defs *state.Defs, st store.PlayerStore, opts Options, logger *slog.Logger) (*Session, error) {
	wallet := strings.TrimSpace(opts.Wallet)
	if wallet == "" {
		return nil, fmt.Errorf("wallet address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = 5 * time.Second
	}

	s := &Session{
		store:  st,
		saver:  saver.New(st, opts.SavePolicy, logger),
		notes:  notify.NewDispatcher(64, logger, opts.Sinks...),
		logger: logger,
		clock:  clock,
		tick:   tick,
		wallet: wallet,
	}

	rec, err := st.LoadPlayer(ctx, wallet)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p := state.NewPlayer(defs, wallet, opts.Name, clock())
		p.Trait = opts.Trait
		s.eng = engine.New(defs, p, opts.Seed, clock)
		logger.InfoContext(ctx, "player created", "wallet", wallet, "town", p.Town)
		s.markLocked()
	case err != nil:
		return nil, fmt.Errorf("load player %s: %w", wallet, err)
	default:
		s.eng = engine.New(defs, rec.Player, rec.RNGSeed, clock)
		s.eng.Restore(rec)
		logger.InfoContext(ctx, "player loaded", "wallet", wallet, "level", rec.Player.Level, "turn", rec.Turn)
	}
	return s, nil
}

// Wallet is the session's player key.
func (s *Session) Wallet() string { return s.wallet }

// Defs returns the world definitions.
func (s *Session) Defs() *state.Defs { return s.eng.Defs }

// Step runs one player command. World time is advanced first.
func (s *Session) Step(input string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(func() types.Result { return s.eng.Step(input) })
}

// Do runs one parsed action.
func (s *Session) Do(act types.Action) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(func() types.Result { return s.eng.Do(act) })
}

// BeginAttack starts a delayed attack. See engine.Engine.BeginAttack.
func (s *Session) BeginAttack(act types.Action) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(func() types.Result { return s.eng.BeginAttack(act) })
}

// ResolveAttack lands a delayed attack.
func (s *Session) ResolveAttack(act types.Action) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(func() types.Result { return s.eng.ResolveAttack(act) })
}

// Attacking reports whether an attack is in flight.
func (s *Session) Attacking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Attacking()
}

// Tick advances world time to now.
func (s *Session) Tick(now time.Time) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.eng.Tick(now)
	return s.finish(res, now, res.Changed)
}

func (s *Session) apply(run func() types.Result) Turn {
	now := s.clock()
	ticked := s.eng.Tick(now)
	res := run()
	if len(ticked.Output) > 0 || len(ticked.Events) > 0 {
		res.Output = append(ticked.Output, res.Output...)
		res.Events = append(ticked.Events, res.Events...)
	}
	// A rejected command changes nothing, but the tick before it may have.
	mark := (res.Changed && !res.Rejected) || ticked.Changed
	res.Changed = res.Changed || ticked.Changed
	return s.finish(res, now, mark)
}

func (s *Session) finish(res types.Result, now time.Time, mark bool) Turn {
	t := Turn{Result: res, Notes: events.Derive(res.Events, now)}
	if len(t.Notes) > 0 {
		if n := s.notes.Send(s.wallet, t.Notes...); n < len(t.Notes) {
			s.logger.Warn("notifications dropped", "wallet", s.wallet, "count", len(t.Notes)-n)
		}
	}
	if mark {
		s.markLocked()
	}
	return t
}

func (s *Session) markLocked() {
	rec, err := s.eng.Snapshot()
	if err != nil {
		s.logger.Error("snapshot failed", "wallet", s.wallet, "error", err)
		return
	}
	s.saver.Mark(rec)
}

// View calls fn with the engine under the session lock. fn must not keep
// references to the state.
func (s *Session) View(fn func(e *engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.eng)
}

// Snapshot returns an independent record of the current state.
func (s *Session) Snapshot() (*save.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot()
}

// Restore replaces the state with a record, keeping this session's wallet.
func (s *Session) Restore(r *save.Record) error {
	if r.Player.WalletAddress != "" && r.Player.WalletAddress != s.wallet {
		return fmt.Errorf("record belongs to %s, not %s", r.Player.WalletAddress, s.wallet)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Player.WalletAddress = s.wallet
	s.eng.Restore(r)
	s.markLocked()
	return nil
}

// Save writes the current state to the store immediately.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.markLocked()
	s.mu.Unlock()
	return s.saver.Flush(ctx)
}

// Leaderboards are the two public rankings.
type Leaderboards struct {
	ByLevel  []leaderboard.Ranked
	ByReward []leaderboard.Ranked
}

// Top writes any pending change, then ranks stored players. Other
// sessions' unsaved progress is not reflected.
func (s *Session) Top(ctx context.Context) (Leaderboards, error) {
	if err := s.saver.Flush(ctx); err != nil {
		s.logger.WarnContext(ctx, "leaderboard may be stale", "error", err)
	}
	entries, err := s.store.ListTopPlayers(ctx, 500)
	if err != nil {
		return Leaderboards{}, fmt.Errorf("list top players: %w", err)
	}
	return Leaderboards{
		ByLevel:  leaderboard.ByLevel(entries),
		ByReward: leaderboard.ByReward(entries),
	}, nil
}

// Run drives the tick loop, the saver, and notification delivery until ctx
// ends. Pending changes are saved before it returns.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.tickLoop(ctx)
		return nil
	})
	g.Go(func() error { return s.saver.Run(ctx) })
	g.Go(func() error { return s.notes.Run(ctx) })
	return g.Wait()
}

func (s *Session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := s.Tick(s.clock())
			for _, line := range t.Output {
				s.logger.DebugContext(ctx, "world", "wallet", s.wallet, "message", line)
			}
		}
	}
}
