package engine

import (
	"testing"

	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/types"
)

func TestIsCombatVerb(t *testing.T) {
	tests := []struct {
		verb string
		want bool
	}{
		{"attack", true},
		{"heal", true},
		{"use", true},
		{"flee", true},
		{"status", true},
		{"gather", false},
		{"travel", false},
		{"craft", false},
		{"sell", false},
	}
	for _, tt := range tests {
		if got := isCombatVerb(tt.verb); got != tt.want {
			t.Errorf("isCombatVerb(%q) = %v, want %v", tt.verb, got, tt.want)
		}
	}
}

func TestSkillArg(t *testing.T) {
	e, _ := testEngine(t)
	enginetest.Unlock(e.State, e.Defs, "Power Strike")

	got, err := e.skillArg(types.Action{Verb: "attack"})
	if err != nil || got != "" {
		t.Errorf("no argument = %q, %v; want basic attack", got, err)
	}
	got, err = e.skillArg(types.Action{Verb: "attack", Args: []string{"power"}})
	if err != nil || got != "Power Strike" {
		t.Errorf("power = %q, %v; want Power Strike", got, err)
	}
	if _, err := e.skillArg(types.Action{Verb: "attack", Args: []string{"Lucky Find"}}); err == nil {
		t.Error("a skill the player does not hold should not resolve")
	}
}

func TestBeginAttack_NotInCombat(t *testing.T) {
	e, _ := testEngine(t)
	turns := e.State.TurnCount

	result := e.BeginAttack(types.Action{Verb: "attack"})
	if !result.Rejected {
		t.Fatal("attack outside combat should be rejected")
	}
	if e.Attacking() {
		t.Error("no attack should be in flight")
	}
	if e.State.TurnCount != turns+1 {
		t.Errorf("turn count = %d, want %d", e.State.TurnCount, turns+1)
	}
}

func TestResolveAttack_WithoutBegin(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("fight wolf")

	result := e.ResolveAttack(types.Action{Verb: "attack"})
	if !result.Rejected {
		t.Fatal("resolving with nothing in flight should be rejected")
	}
	if e.State.Combat.EnemyHealth != 80 {
		t.Errorf("wolf health = %d, want 80", e.State.Combat.EnemyHealth)
	}
}

func TestBeginAttack_UnknownSkill(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("fight goblin")

	result := e.BeginAttack(types.Action{Verb: "attack", Args: []string{"Double Strike"}})
	if !result.Rejected {
		t.Fatal("an unheld skill should be rejected")
	}
	if e.Attacking() {
		t.Error("rejected attack must not be in flight")
	}
}
