package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/engine/world"
	"github.com/nathoo/kaito/types"
)

func TestBuyPrice(t *testing.T) {
	tests := []struct {
		price int
		level float64
		want  int
	}{
		{10, 1, 10},
		{10, 1.5, 6},
		{6, 3, 2},
		{5, 2, 2},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := BuyPrice(tt.price, tt.level); got != tt.want {
			t.Errorf("BuyPrice(%d, %v) = %d, want %d", tt.price, tt.level, got, tt.want)
		}
	}
}

func TestBuy(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)

	if _, err := Buy(s, defs, "water", 1); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if s.Player.Gold != 1 || enginetest.Qty(s, "Water") != 3 {
		t.Errorf("gold=%d water=%d", s.Player.Gold, enginetest.Qty(s, "Water"))
	}
	if _, err := Buy(s, defs, "Herbs", 1); !errors.Is(err, state.ErrInsufficientGold) {
		t.Errorf("expected insufficient gold, got %v", err)
	}
	if _, err := Buy(s, defs, "Sword", 1); !errors.Is(err, state.ErrUnknown) {
		t.Errorf("expected unknown offer, got %v", err)
	}
	if s.Player.Gold != 1 {
		t.Error("rejected purchases must not charge")
	}
}

func TestBuy_InventoryFull(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	s.Player.InventorySlots = 2
	s.Player.Gold = 100

	if _, err := Buy(s, defs, "Water", 1); !errors.Is(err, state.ErrInventoryFull) {
		t.Fatalf("expected full stack rejection, got %v", err)
	}
	if s.Player.Gold != 100 {
		t.Error("gold should be untouched")
	}
}

func TestBuy_FestivalLowersPrice(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	world.Trigger(s, defs.Events[0], enginetest.T0)

	if _, err := Buy(s, defs, "Herbs", 1); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	// floor(6 / 1.5)
	if s.Player.Gold != 1 {
		t.Errorf("gold = %d, want 1", s.Player.Gold)
	}
}

func TestSellPrice(t *testing.T) {
	defs := enginetest.Defs()
	tests := []struct {
		name     string
		town     string
		weather  string
		festival bool
		item     string
		want     int
	}{
		{"town demand", "Riverside", "sunny", false, "Healing Potion", 9},
		{"rain bonus", "Riverside", "rainy", false, "Healing Potion", 14},
		{"festival and rain", "Riverside", "rainy", true, "Healing Potion", 21},
		{"reward multiplier", "Emberfall", "sunny", false, "Goblin Ear", 6},
		{"base gold fallback", "Riverside", "sunny", false, "Herbal Salve", 10},
		{"unsellable", "Riverside", "sunny", false, "Mushroom", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := enginetest.NewState(defs)
			s.World.Weather = tt.weather
			if tt.festival {
				world.Trigger(s, defs.Events[0], enginetest.T0)
			}
			got := SellPrice(s, defs, defs.Towns[tt.town], tt.item, enginetest.T0.Add(time.Minute))
			if got != tt.want {
				t.Errorf("SellPrice = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSell(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	enginetest.Give(s, "Healing Potion", 2)

	if _, err := Sell(s, defs, enginetest.T0, "Healing Potion", 2); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if s.Player.Gold != state.StartGold+18 || enginetest.Qty(s, "Healing Potion") != 0 {
		t.Errorf("gold=%d potions=%d", s.Player.Gold, enginetest.Qty(s, "Healing Potion"))
	}
	if s.Player.Stats.ItemsSold != 2 || s.Player.WeeklyTasks[0].Progress != 2 {
		t.Errorf("sale not recorded: %+v / %+v", s.Player.Stats, s.Player.WeeklyTasks[0])
	}
	if _, err := Sell(s, defs, enginetest.T0, "Healing Potion", 1); !errors.Is(err, state.ErrInsufficientItems) {
		t.Errorf("expected insufficient items, got %v", err)
	}
	enginetest.Give(s, "Mushroom", 1)
	if _, err := Sell(s, defs, enginetest.T0, "Mushroom", 1); !errors.Is(err, state.ErrInvalid) {
		t.Errorf("expected unsellable, got %v", err)
	}
}

func TestSell_TownLevelsUp(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)

	enginetest.Give(s, "Herbs", 9)
	Sell(s, defs, enginetest.T0, "Herbs", 9)
	if state.TownLevel(s, "Riverside") != 1 {
		t.Fatal("9 sales should not level the town")
	}
	enginetest.Give(s, "Herbs", 1)
	res, _ := Sell(s, defs, enginetest.T0, "Herbs", 1)
	if state.TownLevel(s, "Riverside") != 2 {
		t.Fatalf("level = %v, want 2", state.TownLevel(s, "Riverside"))
	}
	found := false
	for _, e := range res.Events {
		if e.Type == "town_level_up" {
			found = true
		}
	}
	if !found {
		t.Error("expected town_level_up event")
	}
	if s.World.Towns["Riverside"].Sales != 0 {
		t.Errorf("sales counter should restart, got %d", s.World.Towns["Riverside"].Sales)
	}
}

func TestSell_TownLevelCapped(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	s.World.Towns["Riverside"] = types.TownState{Level: 3}

	enginetest.Give(s, "Herbs", 10)
	Sell(s, defs, enginetest.T0, "Herbs", 10)
	if lvl := state.TownLevel(s, "Riverside"); lvl != 3 {
		t.Errorf("level = %v, want cap 3", lvl)
	}
}

func TestSell_LevelUpDuringFestival(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	world.Trigger(s, defs.Events[0], enginetest.T0)

	enginetest.Give(s, "Herbs", 10)
	Sell(s, defs, enginetest.T0.Add(time.Minute), "Herbs", 10)
	if lvl := state.TownLevel(s, "Riverside"); lvl != 2.5 {
		t.Fatalf("level = %v, want 2.5", lvl)
	}
	world.Tick(s, defs, rng.Fixed(0.99), s.World.Event.ExpiresAt)
	if lvl := state.TownLevel(s, "Riverside"); lvl != 2 {
		t.Errorf("level after festival = %v, want 2", lvl)
	}
}

func TestContribute(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)

	if _, err := Contribute(s, 0); !errors.Is(err, state.ErrInvalid) {
		t.Errorf("expected invalid, got %v", err)
	}
	if _, err := Contribute(s, 6); !errors.Is(err, state.ErrInsufficientGold) {
		t.Errorf("expected insufficient gold, got %v", err)
	}
	if _, err := Contribute(s, 3); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if s.Player.Gold != 2 || s.Player.GuildContribution != 3 {
		t.Errorf("gold=%d guild=%d", s.Player.Gold, s.Player.GuildContribution)
	}
}

func TestTravel(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)

	if _, err := Travel(s, defs, "emberfall"); err != nil {
		t.Fatalf("Travel: %v", err)
	}
	if s.Player.Town != "Emberfall" {
		t.Errorf("town = %q", s.Player.Town)
	}
	if _, err := Travel(s, defs, "Emberfall"); !errors.Is(err, state.ErrInvalid) {
		t.Errorf("expected already-here rejection, got %v", err)
	}
	if _, err := Travel(s, defs, "Atlantis"); !errors.Is(err, state.ErrUnknown) {
		t.Errorf("expected unknown town, got %v", err)
	}
	s.Combat = &types.CombatSession{ID: "x", EnemyHealth: 5}
	if _, err := Travel(s, defs, "Riverside"); !errors.Is(err, state.ErrInCombat) {
		t.Errorf("expected in-combat, got %v", err)
	}
}
