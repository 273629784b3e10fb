package skills

import (
	"errors"
	"math"
	"testing"

	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLevelForUses(t *testing.T) {
	tests := []struct {
		uses int
		want int
	}{
		{0, 1},
		{4, 1},
		{5, 2},
		{19, 4},
		{20, 5},
		{500, 5},
	}
	for _, tt := range tests {
		if got := LevelForUses(tt.uses); got != tt.want {
			t.Errorf("LevelForUses(%d) = %d, want %d", tt.uses, got, tt.want)
		}
	}
}

func TestScale_OnlyPresentFields(t *testing.T) {
	base := types.SkillEffect{Damage: 20, StunChance: 0.25}
	got := Scale(base, 3)

	if !approx(got.Damage, 22) {
		t.Errorf("damage = %v, want 22", got.Damage)
	}
	if !approx(got.StunChance, 0.35) {
		t.Errorf("stun = %v, want 0.35", got.StunChance)
	}
	if got.HealBonus != 0 || got.CostReduction != 0 || got.CooldownReduction != 0 || got.RareChance != 0 {
		t.Errorf("absent fields must stay zero, got %+v", got)
	}
}

func TestScale_PassiveFields(t *testing.T) {
	base := types.SkillEffect{HealBonus: 5, CostReduction: 0.1, CooldownReduction: 0.1, RareChance: 0.1}
	got := Scale(base, 5)

	if !approx(got.HealBonus, 13) {
		t.Errorf("heal bonus = %v, want 13", got.HealBonus)
	}
	if !approx(got.CostReduction, 0.3) {
		t.Errorf("cost reduction = %v, want 0.3", got.CostReduction)
	}
	if !approx(got.CooldownReduction, 0.18) {
		t.Errorf("cooldown reduction = %v, want 0.18", got.CooldownReduction)
	}
	if !approx(got.RareChance, 0.14) {
		t.Errorf("rare chance = %v, want 0.14", got.RareChance)
	}
}

func TestUse_LevelsUpEveryFiveUses(t *testing.T) {
	sk := types.Skill{Name: "Power Strike", Level: 1, Base: types.SkillEffect{Damage: 20}}
	sk.Effect = sk.Base

	for i := 1; i <= 4; i++ {
		if Use(&sk) {
			t.Fatalf("unexpected level-up at use %d", i)
		}
	}
	if !Use(&sk) {
		t.Fatal("expected level-up at 5 uses")
	}
	if sk.Level != 2 || !approx(sk.Effect.Damage, 21) {
		t.Errorf("expected level 2 with 21 damage, got level %d / %v", sk.Level, sk.Effect.Damage)
	}
}

func TestUse_DoesNotCompound(t *testing.T) {
	sk := types.Skill{Level: 1, Base: types.SkillEffect{Damage: 10}}
	for i := 0; i < 40; i++ {
		Use(&sk)
	}
	if sk.Level != 5 || !approx(sk.Effect.Damage, 12) {
		t.Errorf("expected level 5 with 12 damage, got %d / %v", sk.Level, sk.Effect.Damage)
	}
}

func TestUnlock(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	s.Player.Gold = 25

	res, err := Unlock(&s.Player, defs, "Power Strike")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if !res.Changed || s.Player.Gold != 5 {
		t.Errorf("expected 20 gold spent, gold=%d", s.Player.Gold)
	}
	if Find(&s.Player, "Power Strike") == nil {
		t.Error("expected Power Strike to be held")
	}
}

func TestUnlock_Rejections(t *testing.T) {
	defs := enginetest.Defs()
	tests := []struct {
		name  string
		skill string
		gold  int
		want  error
	}{
		{"unknown", "Fireball", 100, state.ErrUnknown},
		{"already known", state.BasicAttack, 100, state.ErrAlreadyUnlocked},
		{"too poor", "Double Strike", 39, state.ErrInsufficientGold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := enginetest.NewState(defs)
			s.Player.Gold = tt.gold
			before := len(s.Player.Skills)

			_, err := Unlock(&s.Player, defs, tt.skill)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if s.Player.Gold != tt.gold || len(s.Player.Skills) != before {
				t.Error("rejected unlock must not change the player")
			}
		})
	}
}

func TestPassive_SumsHeldSkills(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	enginetest.Unlock(s, defs, "Quick Gather")
	enginetest.Unlock(s, defs, "Lucky Find")

	got := Passive(&s.Player)
	if !approx(got.CooldownReduction, 0.1) || !approx(got.RareChance, 0.1) {
		t.Errorf("unexpected passive totals: %+v", got)
	}
}

func TestUsePassive_OnlyContributors(t *testing.T) {
	defs := enginetest.Defs()
	s := enginetest.NewState(defs)
	enginetest.Unlock(s, defs, "Quick Gather")

	var leveled []string
	for i := 0; i < 5; i++ {
		leveled = UsePassive(&s.Player, CooldownReduction)
	}
	if len(leveled) != 1 || leveled[0] != "Quick Gather" {
		t.Errorf("expected Quick Gather to level on the 5th use, got %v", leveled)
	}
	if Find(&s.Player, state.BasicAttack).Uses != 0 {
		t.Error("Basic Attack must not count passive uses")
	}
	evts := LevelUpEvents(&s.Player, leveled)
	if len(evts) != 1 || evts[0].Data["level"] != 2 {
		t.Errorf("unexpected events: %v", evts)
	}
}
