// Package sqlite is a PlayerStore backed by a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/store"
	"github.com/nathoo/kaito/store/sqlite/migrations"
	"github.com/nathoo/kaito/types"
)

// Store provides SQLite-backed player persistence.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) LoadPlayer(ctx context.Context, wallet string) (*save.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM players WHERE wallet_address = ?`,
		strings.TrimSpace(wallet),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", wallet, err)
	}
	r, err := save.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode player %s: %w", wallet, err)
	}
	return r, nil
}

func (s *Store) SavePlayer(ctx context.Context, r *save.Record) error {
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
	e := store.Entry(r)
	_, err = s.db.ExecContext(ctx, `
INSERT INTO players (wallet_address, name, level, gold, xp, record, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (wallet_address) DO UPDATE SET
	name = excluded.name,
	level = excluded.level,
	gold = excluded.gold,
	xp = excluded.xp,
	record = excluded.record,
	updated_at = excluded.updated_at
`,
		wallet, e.Name, e.Level, e.Gold, e.XP, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", wallet, err)
	}
	return nil
}

// ListTopPlayers reads the projected columns only. Missing values read as
// zero.
func (s *Store) ListTopPlayers(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT wallet_address, COALESCE(name, ''), COALESCE(level, 0), COALESCE(gold, 0), COALESCE(xp, 0)
FROM players
ORDER BY COALESCE(level, 0) DESC, COALESCE(xp, 0) DESC, wallet_address
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top players: %w", err)
	}
	defer rows.Close()

	var out []types.LeaderboardEntry
	for rows.Next() {
		var e types.LeaderboardEntry
		if err := rows.Scan(&e.WalletAddress, &e.Name, &e.Level, &e.Gold, &e.XP); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player rows: %w", err)
	}
	return out, nil
}
