// Package engine provides the Do/Step/Tick orchestrator that wires together
// parsing, name resolution and the per-system engines into a single turn.
package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nathoo/kaito/engine/combat"
	"github.com/nathoo/kaito/engine/craft"
	"github.com/nathoo/kaito/engine/dialogue"
	"github.com/nathoo/kaito/engine/economy"
	"github.com/nathoo/kaito/engine/gather"
	"github.com/nathoo/kaito/engine/parser"
	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/resolve"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/engine/skills"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/engine/world"
	"github.com/nathoo/kaito/types"
)

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *rng.Seeded
	// Clock returns the current wall-clock time. Tests pin it.
	Clock func() time.Time
}

// New creates an engine around a player record. A nil clock means
// time.Now.
func New(defs *state.Defs, p types.Player, seed int64, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	s := state.NewState(defs, p, clock())
	s.RNGSeed = seed
	return &Engine{
		Defs:  defs,
		State: s,
		RNG:   rng.New(seed),
		Clock: clock,
	}
}

// Restore replaces the state with a loaded record and re-creates the RNG
// at the saved position.
func (e *Engine) Restore(r *save.Record) {
	save.Apply(e.State, r)
	e.RNG = rng.Restore(e.State.RNGSeed, e.State.RNGPosition)
}

// Snapshot returns an independent save record of the current state.
func (e *Engine) Snapshot() (*save.Record, error) {
	e.State.RNGPosition = e.RNG.Position()
	return save.Snapshot(e.State, e.Defs, e.Clock())
}

// Step parses and runs one player command.
func (e *Engine) Step(input string) types.Result {
	act := parser.Parse(input)
	if act.Verb == "" {
		return types.Result{Output: []string{"What do you want to do?"}}
	}
	e.State.CommandLog = append(e.State.CommandLog, input)
	return e.Do(act)
}

// Do runs one parsed action. A rejected action leaves the player record
// untouched and yields a Result with Rejected set.
func (e *Engine) Do(act types.Action) types.Result {
	if act.Verb == "" {
		return types.Result{Output: []string{"What do you want to do?"}}
	}
	defer e.endTurn()

	if !parser.Known(act.Verb) {
		msg := fmt.Sprintf("I don't know how to %q.", act.Verb)
		if s := parser.Suggest(act.Verb); s != "" {
			msg += fmt.Sprintf(" Did you mean %q?", s)
		}
		return types.Result{Output: []string{msg}, Rejected: true}
	}
	if combat.Active(e.State) && !isCombatVerb(act.Verb) {
		return reject(state.Reject(state.ErrInCombat, "You're in the middle of a fight! (attack, heal, use, flee)"))
	}

	res, err := e.dispatch(act)
	if err != nil {
		return reject(err)
	}
	return res
}

// Tick advances time-gated world state to now.
func (e *Engine) Tick(now time.Time) types.Result {
	res := world.Tick(e.State, e.Defs, e.RNG, now)
	e.State.RNGPosition = e.RNG.Position()
	return res
}

func (e *Engine) endTurn() {
	e.State.RNGPosition = e.RNG.Position()
	e.State.TurnCount++
}

func reject(err error) types.Result {
	return types.Result{Output: []string{err.Error()}, Rejected: true}
}

func (e *Engine) dispatch(act types.Action) (types.Result, error) {
	s, defs, now := e.State, e.Defs, e.Clock()

	switch act.Verb {
	case "gather":
		if act.Count != 0 {
			return gather.GatherBatch(s, defs, e.RNG, now, act.Count)
		}
		return gather.Gather(s, defs, e.RNG, now)

	case "craft":
		sel, err := e.names(act.Args, resolve.Items(s, defs))
		if err != nil {
			return types.Result{}, err
		}
		return craft.Craft(s, defs, e.RNG, now, sel, types.RecipeType(act.Type))

	case "heal":
		sel, err := e.names(act.Args, resolve.Items(s, defs))
		if err != nil {
			return types.Result{}, err
		}
		if combat.Active(s) {
			return combat.CraftHeal(s, defs, e.RNG, sel)
		}
		return craft.Craft(s, defs, e.RNG, now, sel, types.RecipeHeal)

	case "use":
		item, err := e.name(act, "Use what?", resolve.Held(s))
		if err != nil {
			return types.Result{}, err
		}
		return craft.UsePotion(s, defs, now, item)

	case "equip":
		item, err := e.name(act, "Equip what?", resolve.Held(s))
		if err != nil {
			return types.Result{}, err
		}
		return craft.Equip(s, defs, item)

	case "fight":
		name := ""
		if len(act.Args) > 0 {
			var err error
			if name, err = resolve.Name(act.Args[0], resolve.Enemies(s, defs)); err != nil {
				return types.Result{}, err
			}
		}
		return combat.Start(s, defs, e.RNG, name)

	case "attack":
		sk, err := e.skillArg(act)
		if err != nil {
			return types.Result{}, err
		}
		return combat.Attack(s, defs, e.RNG, sk)

	case "flee":
		return combat.Flee(s)

	case "leave":
		return combat.Leave(s)

	case "buy":
		item, err := e.name(act, "Buy what?", offerNames(s, defs))
		if err != nil {
			return types.Result{}, err
		}
		return economy.Buy(s, defs, item, count(act))

	case "sell":
		item, err := e.name(act, "Sell what?", resolve.Held(s))
		if err != nil {
			return types.Result{}, err
		}
		return economy.Sell(s, defs, now, item, count(act))

	case "contribute":
		amount := act.Count
		if amount == 0 && len(act.Args) > 0 {
			amount, _ = strconv.Atoi(act.Args[0])
		}
		return economy.Contribute(s, amount)

	case "travel":
		town, err := e.name(act, "Travel where? ("+joinNames(defs.TownOrder)+")", resolve.Towns(defs))
		if err != nil {
			return types.Result{}, err
		}
		return economy.Travel(s, defs, town)

	case "talk":
		npc, err := e.name(act, "Talk to whom?", resolve.NPCs(s, defs))
		if err != nil {
			return types.Result{}, err
		}
		return dialogue.Talk(s, defs, npc)

	case "accept":
		npc, err := e.name(act, "Accept whose quest?", resolve.NPCs(s, defs))
		if err != nil {
			return types.Result{}, err
		}
		return dialogue.Accept(s, defs, npc)

	case "complete", "claim":
		id, err := e.name(act, "Complete which quest or task?", resolve.Objectives(s))
		if err != nil {
			return types.Result{}, err
		}
		for _, q := range s.Player.Quests {
			if q.ID == id {
				return quests.CompleteQuest(&s.Player, id)
			}
		}
		return quests.CompleteTask(&s.Player, id)

	case "learn":
		sk, err := e.name(act, "Learn which skill?", resolve.Skills(defs))
		if err != nil {
			return types.Result{}, err
		}
		return skills.Unlock(&s.Player, defs, sk)

	case "inventory":
		return e.inventory(), nil
	case "status":
		return e.status(), nil
	case "quests":
		return e.questList(), nil
	case "tasks":
		return e.taskList(), nil
	case "skills":
		return e.skillList(), nil
	case "weather":
		return e.weather(now), nil
	case "look":
		return e.look(now), nil
	case "market":
		return e.market(now), nil
	case "help":
		return help(), nil
	}
	return types.Result{}, state.Reject(state.ErrInvalid, "Nothing happens.")
}

// name resolves the action's single argument against a candidate pool.
func (e *Engine) name(act types.Action, prompt string, pool []string) (string, error) {
	if len(act.Args) == 0 {
		return "", state.Reject(state.ErrInvalid, "%s", prompt)
	}
	return resolve.Name(act.Args[0], pool)
}

// names resolves every argument of a selection list.
func (e *Engine) names(args []string, pool []string) ([]string, error) {
	if len(args) == 0 {
		return nil, state.Reject(state.ErrInvalid, "Name the ingredients, separated by commas.")
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		n, err := resolve.Name(a, pool)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func count(act types.Action) int {
	if act.Count > 0 {
		return act.Count
	}
	return 1
}

func offerNames(s *types.State, defs *state.Defs) []string {
	t, _ := state.CurrentTown(s, defs)
	out := make([]string, 0, len(t.Offers))
	for _, o := range t.Offers {
		out = append(out, o.Item)
	}
	return out
}
