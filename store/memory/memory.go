// Package memory is an in-process PlayerStore used when no database path is
// configured, and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/store"
	"github.com/nathoo/kaito/types"
)

// Store keeps encoded records so callers never share memory with it.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
	entries map[string]types.LeaderboardEntry
}

// New returns an empty store.
func New() *Store {
	return &Store{
		records: map[string][]byte{},
		entries: map[string]types.LeaderboardEntry{},
	}
}

func (s *Store) LoadPlayer(ctx context.Context, wallet string) (*save.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.records[strings.TrimSpace(wallet)]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	r, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode player %s: %w", wallet, err)
	}
	return r, nil
}

func (s *Store) SavePlayer(ctx context.Context, r *save.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("record is required")
	}
	wallet := strings.TrimSpace(r.Player.WalletAddress)
	if wallet == "" {
		return fmt.Errorf("wallet address is required")
	}
	data, err := save.Encode(r)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", wallet, err)
	}
	s.mu.Lock()
	s.records[wallet] = data
	s.entries[wallet] = store.Entry(r)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListTopPlayers(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	out := make([]types.LeaderboardEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].WalletAddress < out[j].WalletAddress
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
