package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// testEngine returns an engine over the test world with a clock the test
// can move forward.
func testEngine(t testing.TB) (*Engine, *time.Time) {
	t.Helper()
	defs := enginetest.Defs()
	now := enginetest.T0
	e := New(defs, state.NewPlayer(defs, "0xtest", "Kaito", now), 7, func() time.Time { return now })
	return e, &now
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func playerJSON(t testing.TB, p types.Player) string {
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal player: %v", err)
	}
	return string(data)
}

func TestStep_EmptyInput(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Step("   ")
	if !outputContains(result.Output, "What do you want to do?") {
		t.Errorf("expected prompt, got: %v", result.Output)
	}
	if e.State.TurnCount != 0 {
		t.Errorf("empty input should not take a turn, got %d", e.State.TurnCount)
	}
}

func TestStep_UnknownVerbSuggests(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Step("gahter")
	if !result.Rejected {
		t.Fatal("expected rejection")
	}
	if !outputContains(result.Output, `Did you mean "gather"?`) {
		t.Errorf("expected suggestion, got: %v", result.Output)
	}
}

func TestStep_GatherCooldown(t *testing.T) {
	e, now := testEngine(t)

	result := e.Step("gather")
	if result.Rejected || !result.Changed {
		t.Fatalf("first gather should succeed: %v", result.Output)
	}
	if e.State.Player.Stats.Gathers != 1 {
		t.Errorf("Gathers = %d", e.State.Player.Stats.Gathers)
	}

	result = e.Step("gather")
	if !result.Rejected || !outputContains(result.Output, "rest before gathering") {
		t.Fatalf("second gather should hit the cooldown: %v", result.Output)
	}

	*now = now.Add(5 * time.Minute)
	if result = e.Step("forage"); result.Rejected {
		t.Fatalf("gather after the cooldown should succeed: %v", result.Output)
	}
}

func TestStep_RejectionLeavesPlayerUntouched(t *testing.T) {
	e, _ := testEngine(t)
	before := playerJSON(t, e.State.Player)

	for _, cmd := range []string{
		"craft water, mushroom", // not held
		"craft lime, water",     // unknown ingredient
		"buy dragon egg",
		"sell healing potion",
		"learn power strike", // 5 gold, costs 20
		"complete daily_craft",
		"attack",
		"travel riverside",
		"gather 6", // costs 6 gold
	} {
		result := e.Step(cmd)
		if !result.Rejected {
			t.Errorf("%q should be rejected: %v", cmd, result.Output)
		}
		if after := playerJSON(t, e.State.Player); after != before {
			t.Fatalf("%q mutated the player record", cmd)
		}
	}
}

func TestStep_CraftResolvesFuzzyNames(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Step("brew heal watr, herbs")
	if result.Rejected {
		t.Fatalf("craft rejected: %v", result.Output)
	}
	if enginetest.Qty(e.State, "Water") != 1 || enginetest.Qty(e.State, "Herbs") != 0 {
		t.Errorf("ingredients not consumed: %v", e.State.Player.Inventory)
	}
}

func TestStep_CombatRestrictsVerbs(t *testing.T) {
	e, _ := testEngine(t)
	if result := e.Step("fight wolf"); result.Rejected {
		t.Fatalf("fight rejected: %v", result.Output)
	}
	result := e.Step("gather")
	if !result.Rejected || !outputContains(result.Output, "middle of a fight") {
		t.Errorf("gather mid-fight should be rejected: %v", result.Output)
	}
	if result := e.Step("status"); result.Rejected {
		t.Errorf("status should be allowed in combat: %v", result.Output)
	}
}

func TestStep_FightToVictory(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("fight wolf")

	attacks := 0
	for e.State.Combat.Outcome == "" && attacks < 20 {
		if result := e.Step("attack"); result.Rejected {
			t.Fatalf("attack rejected: %v", result.Output)
		}
		attacks++
	}

	// Basic Attack reaches level 2 after five uses: 5×10 + 3×11 = 83 ≥ 80.
	if attacks != 8 {
		t.Errorf("attacks = %d, want 8", attacks)
	}
	p := e.State.Player
	if e.State.Combat.Outcome != types.OutcomeWin {
		t.Fatalf("outcome = %q", e.State.Combat.Outcome)
	}
	if p.Health != 30 {
		t.Errorf("health = %d, want 30", p.Health)
	}
	if p.Gold != state.StartGold+15 {
		t.Errorf("gold = %d, want %d", p.Gold, state.StartGold+15)
	}
	// 8 attacks × 15 XP + 30 victory XP.
	if p.XP != 150 || p.Level != 2 {
		t.Errorf("xp = %d level = %d", p.XP, p.Level)
	}
	if p.DailyTasks[1].Progress != 1 {
		t.Errorf("defeat task progress = %d", p.DailyTasks[1].Progress)
	}

	if result := e.Step("leave"); result.Rejected {
		t.Errorf("leave rejected: %v", result.Output)
	}
	if e.State.Combat != nil {
		t.Error("session should be discarded")
	}
}

func TestBeginResolveAttack(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("fight goblin")
	act := types.Action{Verb: "attack"}

	if result := e.BeginAttack(act); result.Rejected {
		t.Fatalf("begin rejected: %v", result.Output)
	}
	if !e.Attacking() {
		t.Fatal("attack should be in flight")
	}
	result := e.Step("attack")
	if !result.Rejected || !outputContains(result.Output, "still landing") {
		t.Errorf("second attack should be busy: %v", result.Output)
	}
	if result := e.ResolveAttack(act); result.Rejected {
		t.Fatalf("resolve rejected: %v", result.Output)
	}
	if e.Attacking() {
		t.Error("attack should have landed")
	}
	if e.State.Combat.EnemyHealth != 40 {
		t.Errorf("goblin health = %d, want 40", e.State.Combat.EnemyHealth)
	}
}

func TestStep_TravelAndBuy(t *testing.T) {
	e, _ := testEngine(t)
	if result := e.Step("go to emberfall"); result.Rejected {
		t.Fatalf("travel rejected: %v", result.Output)
	}
	if e.State.Player.Town != "Emberfall" {
		t.Fatalf("town = %q", e.State.Player.Town)
	}

	if result := e.Step("buy coal"); !result.Rejected {
		t.Fatal("coal costs 9, player has 5")
	}
	e.State.Player.Gold = 20
	if result := e.Step("buy coal"); result.Rejected {
		t.Fatalf("buy rejected: %v", result.Output)
	}
	if e.State.Player.Gold != 11 || enginetest.Qty(e.State, "Coal") != 1 {
		t.Errorf("gold = %d coal = %d", e.State.Player.Gold, enginetest.Qty(e.State, "Coal"))
	}
}

func TestStep_TalkAcceptComplete(t *testing.T) {
	e, _ := testEngine(t)

	result := e.Step("talk to mira")
	if !outputContains(result.Output, "accept Old Mira") {
		t.Errorf("expected quest offer, got: %v", result.Output)
	}
	if result := e.Step("accept mira"); result.Rejected {
		t.Fatalf("accept rejected: %v", result.Output)
	}
	if result := e.Step("complete mira_herbs"); !result.Rejected {
		t.Fatal("quest should not be completable yet")
	}

	e.State.Player.Quests[0].Progress = 5
	result = e.Step("turn in mira_herbs")
	if result.Rejected {
		t.Fatalf("complete rejected: %v", result.Output)
	}
	p := e.State.Player
	if p.Gold != state.StartGold+20 || p.XP != 50 || len(p.Quests) != 0 {
		t.Errorf("gold = %d xp = %d quests = %d", p.Gold, p.XP, len(p.Quests))
	}
}

func TestStep_TurnCountAndCommandLog(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("look")
	e.Step("inventory")
	e.Step("xyzzy")

	if e.State.TurnCount != 3 {
		t.Errorf("TurnCount = %d, want 3", e.State.TurnCount)
	}
	if len(e.State.CommandLog) != 3 || e.State.CommandLog[2] != "xyzzy" {
		t.Errorf("CommandLog = %v", e.State.CommandLog)
	}
}

func TestStep_InfoCommands(t *testing.T) {
	e, _ := testEngine(t)
	tests := []struct {
		cmd  string
		want string
	}{
		{"inventory", "Water x2"},
		{"status", "HP 100/100"},
		{"quests", "no quests"},
		{"tasks", "daily_craft"},
		{"skills", "Power Strike (Warrior) 20 gold"},
		{"weather", "sunny"},
		{"look", "Old Mira"},
		{"market", "buy  Herbs: 6 gold"},
		{"help", "gather [n]"},
	}
	for _, tt := range tests {
		result := e.Step(tt.cmd)
		if result.Rejected || result.Changed {
			t.Errorf("%q: rejected=%v changed=%v", tt.cmd, result.Rejected, result.Changed)
		}
		if !outputContains(result.Output, tt.want) {
			t.Errorf("%q: expected %q in %v", tt.cmd, tt.want, result.Output)
		}
	}
}

func TestTick_RotatesWeather(t *testing.T) {
	e, _ := testEngine(t)
	later := enginetest.T0.Add(31 * time.Minute)

	result := e.Tick(later)
	if !result.Changed {
		t.Fatal("tick past the weather period should change state")
	}
	if !e.State.World.WeatherChangedAt.Equal(later) {
		t.Errorf("WeatherChangedAt = %v", e.State.World.WeatherChangedAt)
	}
	if e.State.RNGPosition != e.RNG.Position() {
		t.Error("RNG position not tracked")
	}
}

func TestSnapshotRestore(t *testing.T) {
	e, _ := testEngine(t)
	e.Step("gather")
	e.Step("craft heal water, herbs")

	r, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	e2, _ := testEngine(t)
	e2.Restore(r)
	if playerJSON(t, e2.State.Player) != playerJSON(t, e.State.Player) {
		t.Error("restored player differs")
	}
	if e2.RNG.Position() != e.RNG.Position() {
		t.Errorf("rng position %d != %d", e2.RNG.Position(), e.RNG.Position())
	}
	if e2.RNG.Float64() != e.RNG.Float64() {
		t.Error("restored RNG diverges")
	}
}

var commands = []string{
	"gather", "gather 2", "gather 10", "craft heal water, herbs", "craft water, mushroom",
	"craft herbs, herbs", "use healing potion", "use swift tonic", "equip combat blade",
	"fight", "fight wolf", "attack", "attack power strike", "heal water, herbs", "flee", "leave",
	"buy water", "buy 3 herbs", "sell herbs", "sell 2 water", "sell healing potion",
	"travel emberfall", "travel riverside", "talk mira", "accept mira",
	"complete mira_herbs", "claim daily_craft", "learn power strike", "learn quick gather",
	"contribute 2", "contribute 50", "status", "market",
}

// The invariants hold over any command sequence, and a rejected command
// never changes the player record.
func TestStep_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e, now := testEngine(t)
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			cmd := rapid.SampledFrom(commands).Draw(rt, "cmd")
			before := playerJSON(t, e.State.Player)

			result := e.Step(cmd)

			if result.Rejected && playerJSON(t, e.State.Player) != before {
				rt.Fatalf("rejected %q mutated the player", cmd)
			}
			p := e.State.Player
			if p.Gold < 0 {
				rt.Fatalf("gold went negative after %q: %d", cmd, p.Gold)
			}
			if p.Level != state.LevelForXP(p.XP) {
				rt.Fatalf("level %d does not match xp %d", p.Level, p.XP)
			}
			if p.Health < 0 || p.Health > p.MaxHealth {
				rt.Fatalf("health %d out of range", p.Health)
			}
			if len(p.Inventory) > p.InventorySlots {
				rt.Fatalf("%d stacks exceed %d slots", len(p.Inventory), p.InventorySlots)
			}
			for _, it := range p.Inventory {
				if it.Quantity <= 0 || it.Quantity > p.InventorySlots {
					rt.Fatalf("stack %s has %d units", it.Name, it.Quantity)
				}
			}

			*now = now.Add(time.Duration(rapid.IntRange(0, 600).Draw(rt, "seconds")) * time.Second)
			e.Tick(*now)
		}
	})
}
