// Package skills tracks per-skill use counts and derives effect magnitudes
// from skill level.
package skills

import (
	"fmt"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

const (
	// UsesPerLevel is how many uses advance a skill one level.
	UsesPerLevel = 5
	// MaxLevel caps skill levels.
	MaxLevel = 5
)

// LevelForUses returns min(floor(uses/5) + 1, 5).
func LevelForUses(uses int) int {
	lvl := uses/UsesPerLevel + 1
	if lvl > MaxLevel {
		lvl = MaxLevel
	}
	if lvl < 1 {
		lvl = 1
	}
	return lvl
}

// Scale derives the effect at a level from the base effect. Only fields
// present in the base are scaled.
func Scale(base types.SkillEffect, level int) types.SkillEffect {
	l := float64(level - 1)
	e := base
	if base.Damage != 0 {
		e.Damage = base.Damage * (1 + 0.05*l)
	}
	if base.HealBonus != 0 {
		e.HealBonus = base.HealBonus + 2*l
	}
	if base.CostReduction != 0 {
		e.CostReduction = base.CostReduction + 0.05*l
	}
	if base.CooldownReduction != 0 {
		e.CooldownReduction = base.CooldownReduction + 0.02*l
	}
	if base.RareChance != 0 {
		e.RareChance = base.RareChance + 0.01*l
	}
	if base.StunChance != 0 {
		e.StunChance = base.StunChance + 0.05*l
	}
	return e
}

// Find returns a pointer to the named skill in the player's list.
func Find(p *types.Player, name string) *types.Skill {
	for i := range p.Skills {
		if p.Skills[i].Name == name {
			return &p.Skills[i]
		}
	}
	return nil
}

// Use counts one use of a skill and reports whether it levelled up.
func Use(sk *types.Skill) bool {
	before := sk.Level
	sk.Uses++
	sk.Level = LevelForUses(sk.Uses)
	sk.Effect = Scale(sk.Base, sk.Level)
	return sk.Level > before
}

// Passive sums the passive effect fields of every held skill.
func Passive(p *types.Player) types.SkillEffect {
	var total types.SkillEffect
	for _, sk := range p.Skills {
		total.HealBonus += sk.Effect.HealBonus
		total.CostReduction += sk.Effect.CostReduction
		total.CooldownReduction += sk.Effect.CooldownReduction
		total.RareChance += sk.Effect.RareChance
	}
	return total
}

// Field selects a passive effect field.
type Field func(types.SkillEffect) float64

// Passive effect selectors for UsePassive.
var (
	HealBonus         Field = func(e types.SkillEffect) float64 { return e.HealBonus }
	CostReduction     Field = func(e types.SkillEffect) float64 { return e.CostReduction }
	CooldownReduction Field = func(e types.SkillEffect) float64 { return e.CooldownReduction }
	RareChance        Field = func(e types.SkillEffect) float64 { return e.RareChance }
)

// UsePassive counts a use for each skill contributing the field and
// returns the names of skills that levelled up.
func UsePassive(p *types.Player, f Field) []string {
	var leveled []string
	for i := range p.Skills {
		if f(p.Skills[i].Base) == 0 {
			continue
		}
		if Use(&p.Skills[i]) {
			leveled = append(leveled, p.Skills[i].Name)
		}
	}
	return leveled
}

// Unlock buys a skill from its tree.
func Unlock(p *types.Player, defs *state.Defs, name string) (types.Result, error) {
	def, ok := defs.Skills[name]
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no skill called %s.", name)
	}
	if Find(p, name) != nil {
		return types.Result{}, state.Reject(state.ErrAlreadyUnlocked, "You already know %s.", name)
	}
	if p.Gold < def.Cost {
		return types.Result{}, state.Reject(state.ErrInsufficientGold, "%s costs %d gold; you have %d.", name, def.Cost, p.Gold)
	}
	p.Gold -= def.Cost
	p.Skills = append(p.Skills, types.Skill{
		Name: def.Name, Tree: def.Tree, Level: 1, Base: def.Base, Effect: Scale(def.Base, 1),
	})
	return types.Result{
		Output:  []string{fmt.Sprintf("You learned %s (%s tree) for %d gold.", def.Name, def.Tree, def.Cost)},
		Events:  []types.Event{{Type: "skill_unlocked", Data: map[string]any{"skill": def.Name}}},
		Changed: true,
	}, nil
}

// LevelUpEvents builds skill_level_up events for the named skills.
func LevelUpEvents(p *types.Player, names []string) []types.Event {
	var evts []types.Event
	for _, n := range names {
		sk := Find(p, n)
		if sk == nil {
			continue
		}
		evts = append(evts, types.Event{
			Type: "skill_level_up",
			Data: map[string]any{"skill": n, "level": sk.Level},
		})
	}
	return evts
}
