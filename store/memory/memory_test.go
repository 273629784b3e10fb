package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/store"
)

func record(wallet string, xp int) *save.Record {
	p := state.NewPlayer(enginetest.Defs(), wallet, "P"+wallet, enginetest.T0)
	p.XP = xp
	p.Level = state.LevelForXP(xp)
	return &save.Record{Player: p}
}

func TestSaveLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := record("0xa", 200)
	if err := s.SavePlayer(ctx, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Mutating the saved record must not leak into the store.
	r.Player.Gold = 999

	got, err := s.LoadPlayer(ctx, "0xa")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Player.Gold != state.StartGold || got.Player.Level != 2 {
		t.Fatalf("player = gold %d level %d", got.Player.Gold, got.Player.Level)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := New().LoadPlayer(context.Background(), "0xmissing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListTopPlayers(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, r := range []*save.Record{record("0xa", 10), record("0xb", 900), record("0xc", 400)} {
		if err := s.SavePlayer(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	top, err := s.ListTopPlayers(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(top) != 2 || top[0].WalletAddress != "0xb" || top[1].WalletAddress != "0xc" {
		t.Fatalf("top = %+v", top)
	}
	if _, err := s.ListTopPlayers(ctx, -1); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New().SavePlayer(ctx, record("0xa", 0)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
