// Package gather resolves gather actions: ingredient selection, rare-drop
// rolls, weather bonuses, and the per-town cooldown gate.
package gather

import (
	"fmt"
	"math"
	"time"

	"github.com/nathoo/kaito/engine/inventory"
	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/skills"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// MaxBatch is the largest queued gather.
const MaxBatch = 10

// Cooldown returns the effective cooldown of a town for the player at now.
// Skill and buff reductions add up; the sum is clamped to [0, 1].
func Cooldown(p *types.Player, town types.Town, now time.Time) time.Duration {
	reduction := skills.Passive(p).CooldownReduction + state.ActiveBuffs(p, types.BuffCooldown, now)
	reduction = math.Min(math.Max(reduction, 0), 1)
	base := time.Duration(town.GatherCooldownMinutes) * time.Minute
	return time.Duration(math.Round(float64(base) * (1 - reduction)))
}

// Remaining returns how long until the player may gather in town again.
func Remaining(p *types.Player, town types.Town, now time.Time) time.Duration {
	last, ok := p.LastGather[town.Name]
	if !ok {
		return 0
	}
	left := Cooldown(p, town, now) - now.Sub(last)
	if left < 0 {
		return 0
	}
	return left
}

// Gather performs a single gather in the player's current town.
func Gather(s *types.State, defs *state.Defs, src rng.Source, now time.Time) (types.Result, error) {
	town, ok := state.CurrentTown(s, defs)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "You are not in a town.")
	}
	p := &s.Player
	if left := Remaining(p, town, now); left > 0 {
		return types.Result{}, state.Reject(state.ErrCooldown, "You need to rest before gathering in %s again (%s left).", town.Name, left.Round(time.Second))
	}

	res := roll(s, defs, town, src, now)
	if p.LastGather == nil {
		p.LastGather = map[string]time.Time{}
	}
	p.LastGather[town.Name] = now
	return res, nil
}

// GatherBatch performs count gathers for count gold, gated by its own cooldown.
func GatherBatch(s *types.State, defs *state.Defs, src rng.Source, now time.Time, count int) (types.Result, error) {
	town, ok := state.CurrentTown(s, defs)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "You are not in a town.")
	}
	if count < 1 || count > MaxBatch {
		return types.Result{}, state.Reject(state.ErrInvalid, "You can queue between 1 and %d gathers.", MaxBatch)
	}
	p := &s.Player
	if !p.LastBatchGather.IsZero() {
		if left := defs.Game.BatchGatherCooldown - now.Sub(p.LastBatchGather); left > 0 {
			return types.Result{}, state.Reject(state.ErrCooldown, "Your gatherers are still out (%s left).", left.Round(time.Second))
		}
	}
	if p.Gold < count {
		return types.Result{}, state.Reject(state.ErrInsufficientGold, "Queuing %d gathers costs %d gold; you have %d.", count, count, p.Gold)
	}

	p.Gold -= count
	res := types.Result{
		Output:  []string{fmt.Sprintf("You pay %d gold to queue %d gathers in %s.", count, count, town.Name)},
		Changed: true,
	}
	for i := 0; i < count; i++ {
		r := roll(s, defs, town, src, now)
		res.Output = append(res.Output, r.Output...)
		res.Events = append(res.Events, r.Events...)
	}
	p.LastBatchGather = now
	return res, nil
}

// roll performs the random part of one gather and its side effects.
func roll(s *types.State, defs *state.Defs, town types.Town, src rng.Source, now time.Time) types.Result {
	p := &s.Player
	res := types.Result{Changed: true}
	obtained := map[string]int{}
	var order []string
	got := func(name string) bool {
		if inventory.Add(p, name, 1) == 1 {
			if obtained[name] == 0 {
				order = append(order, name)
			}
			obtained[name]++
			return true
		}
		res.Output = append(res.Output, fmt.Sprintf("Your bag is full; the %s is left behind.", name))
		return false
	}

	if state.EventActive(s, types.EventStorm, now) {
		res.Output = append(res.Output, "The storm halts gathering. You find nothing.")
	} else if len(town.Ingredients) > 0 {
		name := town.Ingredients[src.Intn(len(town.Ingredients))]
		res.Output = append(res.Output, fmt.Sprintf("You gather 1 %s.", name))
		got(name)
	}

	passive := skills.Passive(p)
	boost := state.ActiveBuffs(p, types.BuffRareChance, now)
	for _, rare := range town.RareIngredients {
		chance := rare.Chance*(1+passive.RareChance) + boost
		if rng.Chance(src, chance) {
			res.Output = append(res.Output, fmt.Sprintf("Rare find: %s!", rare.Name))
			if got(rare.Name) {
				p.RareItems = append(p.RareItems, rare.Name)
				res.Events = append(res.Events, types.Event{Type: "rare_found", Data: map[string]any{"item": rare.Name}})
			}
		}
	}

	if w, ok := state.CurrentWeather(s, defs); ok && w.GatherBonus != nil {
		if rng.Chance(src, w.GatherBonus.Chance) {
			res.Output = append(res.Output, fmt.Sprintf("The %s weather yields an extra %s.", w.Name, w.GatherBonus.Item))
			got(w.GatherBonus.Item)
		}
	}

	for _, name := range order {
		n := obtained[name]
		res.Events = append(res.Events, types.Event{Type: "item_gathered", Data: map[string]any{"item": name, "quantity": n}})
		res.Events = append(res.Events, quests.Record(p, types.KindGather, name, n)...)
	}

	p.Stats.Gathers++
	leveled := skills.UsePassive(p, skills.CooldownReduction)
	leveled = append(leveled, skills.UsePassive(p, skills.RareChance)...)
	res.Events = append(res.Events, skills.LevelUpEvents(p, leveled)...)
	return res
}
