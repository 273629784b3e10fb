// Package store defines where player records live between sessions.
package store

import (
	"context"
	"errors"

	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/types"
)

//go:generate go tool mockgen -destination=./mock/store_mock.go -package=mock . PlayerStore

// ErrNotFound is returned by LoadPlayer for an unknown wallet.
var ErrNotFound = errors.New("player not found")

// PlayerStore persists player records keyed by wallet address.
type PlayerStore interface {
	// LoadPlayer returns the stored record for wallet, or ErrNotFound.
	LoadPlayer(ctx context.Context, wallet string) (*save.Record, error)
	// SavePlayer upserts the record under its player's wallet.
	SavePlayer(ctx context.Context, r *save.Record) error
	// ListTopPlayers returns up to limit players ordered by level, then XP.
	ListTopPlayers(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)
}

// Entry projects a record onto its leaderboard row.
func Entry(r *save.Record) types.LeaderboardEntry {
	p := r.Player
	return types.LeaderboardEntry{
		WalletAddress: p.WalletAddress,
		Name:          p.Name,
		Level:         p.Level,
		Gold:          p.Gold,
		XP:            p.XP,
	}
}
