// Package craft matches ingredient selections to recipes and resolves
// crafting, potion use, and equipping crafted gear.
package craft

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/nathoo/kaito/engine/inventory"
	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/skills"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// Success chances.
const (
	BaseSuccess      = 0.8
	CraftsmanBonus   = 0.1
	TraitCraftsman   = "craftsman"
	lightRecipeXP    = 10
	standardRecipeXP = 20
)

// SuccessChance returns the player's craft success probability.
func SuccessChance(p *types.Player) float64 {
	if p.Trait == TraitCraftsman {
		return BaseSuccess + CraftsmanBonus
	}
	return BaseSuccess
}

// Match finds the recipe whose ingredient multiset equals the selection.
// An empty recipeType matches any type. A match above the player's level
// is reported with its unlock level.
func Match(defs *state.Defs, level int, recipeType types.RecipeType, selection []string) (types.Recipe, error) {
	want := sorted(selection)
	for _, r := range defs.Recipes {
		if recipeType != "" && r.Type != recipeType {
			continue
		}
		if !slices.Equal(sorted(r.Ingredients), want) {
			continue
		}
		if r.UnlockLevel > level {
			return types.Recipe{}, state.Reject(state.ErrNoRecipe, "%s unlocks at level %d.", r.Name, r.UnlockLevel)
		}
		return r, nil
	}
	kind := "recipe"
	if recipeType != "" {
		kind = string(recipeType) + " recipe"
	}
	return types.Recipe{}, state.Reject(state.ErrNoRecipe, "No %s uses %s.", kind, strings.Join(selection, ", "))
}

func sorted(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return out
}

// Consume uses up a recipe's ingredients. Each unit is waived when a roll
// lands under the player's cost reduction. It returns the waived count.
func Consume(p *types.Player, src rng.Source, ingredients []string) int {
	reduction := skills.Passive(p).CostReduction
	waived := 0
	for _, name := range ingredients {
		if rng.Chance(src, reduction) {
			waived++
			continue
		}
		inventory.Remove(p, name, 1)
	}
	return waived
}

// HealAmount is round(MaxHealth * HealPercent) plus the skill heal bonus.
func HealAmount(p *types.Player, r types.Recipe) int {
	base := int(math.Round(float64(p.MaxHealth) * r.HealPercent))
	return base + int(math.Round(skills.Passive(p).HealBonus))
}

// Heal applies a heal recipe to the player and returns the health gained.
func Heal(p *types.Player, r types.Recipe) int {
	before := p.Health
	p.Health += HealAmount(p, r)
	state.ClampHealth(p)
	return p.Health - before
}

// Craft attempts the recipe matching selection.
func Craft(s *types.State, defs *state.Defs, src rng.Source, now time.Time, selection []string, recipeType types.RecipeType) (types.Result, error) {
	if inCombat(s) {
		return types.Result{}, state.Reject(state.ErrInCombat, "You cannot work the cauldron mid-fight. Try \"heal\".")
	}
	p := &s.Player
	if len(selection) == 0 {
		return types.Result{}, state.Reject(state.ErrInvalid, "Select the ingredients to craft with.")
	}
	r, err := Match(defs, p.Level, recipeType, selection)
	if err != nil {
		return types.Result{}, err
	}
	if name, missing := inventory.Missing(p, r.Ingredients); missing {
		need := inventory.Count(r.Ingredients)[name]
		return types.Result{}, state.Reject(state.ErrInsufficientItems, "%s needs %d %s; you have %d.", r.Name, need, name, inventory.Quantity(p, name))
	}

	ok := rng.Chance(src, SuccessChance(p))
	waived := Consume(p, src, r.Ingredients)
	res := types.Result{Changed: true}
	if waived > 0 {
		res.Output = append(res.Output, fmt.Sprintf("Efficient brewing saves %d ingredient(s).", waived))
	}
	leveled := skills.UsePassive(p, skills.CostReduction)

	if !ok {
		res.Output = append(res.Output, fmt.Sprintf("The %s fizzles. The craft failed.", r.Name))
		res.Events = append(res.Events, types.Event{Type: "craft_failed", Data: map[string]any{"item": r.Name}})
		res.Events = append(res.Events, skills.LevelUpEvents(p, leveled)...)
		return res, nil
	}

	if inventory.Add(p, r.Name, 1) == 1 {
		res.Output = append(res.Output, fmt.Sprintf("You craft a %s.", r.Name))
	} else {
		res.Output = append(res.Output, fmt.Sprintf("You craft a %s, but your bag is full and it is lost.", r.Name))
	}
	res.Events = append(res.Events, types.Event{Type: "item_crafted", Data: map[string]any{"item": r.Name, "type": r.Type}})
	p.Stats.PotionsCrafted++

	if r.Type == types.RecipeGather {
		res.Output = append(res.Output, applyBuff(p, r, now))
	}

	xp := standardRecipeXP
	if r.Type == types.RecipeHeal || r.Type == types.RecipeGather {
		xp = lightRecipeXP
	}
	res.Output = append(res.Output, fmt.Sprintf("  +%d XP", xp))
	if state.GrantXP(p, xp) {
		res.Output = append(res.Output, fmt.Sprintf("You reached level %d!", p.Level))
		res.Events = append(res.Events, types.Event{Type: "level_up", Data: map[string]any{"level": p.Level}})
	}
	res.Events = append(res.Events, quests.Record(p, types.KindCraft, r.Name, 1)...)
	res.Events = append(res.Events, skills.LevelUpEvents(p, leveled)...)
	return res, nil
}

// applyBuff installs a gather recipe's buff, replacing one of the same type.
func applyBuff(p *types.Player, r types.Recipe, now time.Time) string {
	b := types.GatherBuff{Type: r.Effect, Value: r.Bonus, ExpiresAt: now.Add(r.Duration)}
	for i := range p.Buffs {
		if p.Buffs[i].Type == b.Type {
			p.Buffs[i] = b
			return fmt.Sprintf("%s refreshed for %s.", r.Name, r.Duration)
		}
	}
	p.Buffs = append(p.Buffs, b)
	return fmt.Sprintf("%s takes effect for %s.", r.Name, r.Duration)
}

// UsePotion drinks one crafted potion from the inventory.
func UsePotion(s *types.State, defs *state.Defs, now time.Time, item string) (types.Result, error) {
	p := &s.Player
	r, ok := state.FindRecipe(defs, item)
	if !ok || (r.Type != types.RecipeHeal && r.Type != types.RecipeGather) {
		return types.Result{}, state.Reject(state.ErrInvalid, "%s is not something you can drink.", item)
	}
	if !inventory.Has(p, r.Name, 1) {
		return types.Result{}, state.Reject(state.ErrInsufficientItems, "You have no %s.", r.Name)
	}

	var out []string
	var leveled []string
	switch r.Type {
	case types.RecipeHeal:
		if p.Health >= p.MaxHealth {
			return types.Result{}, state.Reject(state.ErrInvalid, "You are already at full health.")
		}
		gained := Heal(p, r)
		leveled = skills.UsePassive(p, skills.HealBonus)
		out = append(out, fmt.Sprintf("You drink a %s and recover %d health (%d/%d).", r.Name, gained, p.Health, p.MaxHealth))
		if inCombat(s) {
			s.Combat.PlayerHealth = p.Health
			s.Combat.Log = append(s.Combat.Log, out[0])
		}
	case types.RecipeGather:
		out = append(out, applyBuff(p, r, now))
	}
	inventory.Remove(p, r.Name, 1)

	res := types.Result{Output: out, Changed: true}
	res.Events = append(res.Events, types.Event{Type: "potion_used", Data: map[string]any{"item": r.Name}})
	res.Events = append(res.Events, skills.LevelUpEvents(p, leveled)...)
	return res, nil
}

// Equip wears a crafted weapon or armor piece. The replaced piece goes back
// to the inventory when there is room.
func Equip(s *types.State, defs *state.Defs, item string) (types.Result, error) {
	p := &s.Player
	r, ok := state.FindRecipe(defs, item)
	if !ok || (r.Type != types.RecipeEquip && r.Type != types.RecipeArmor) {
		return types.Result{}, state.Reject(state.ErrInvalid, "%s cannot be equipped.", item)
	}
	if !inventory.Has(p, r.Name, 1) {
		return types.Result{}, state.Reject(state.ErrInsufficientItems, "You have no %s.", r.Name)
	}

	inventory.Remove(p, r.Name, 1)
	bonus := int(math.Round(r.Bonus))
	var prev string
	var out []string
	if r.Type == types.RecipeEquip {
		prev = p.Equipment.Weapon
		p.Equipment.Weapon, p.Equipment.WeaponBonus = r.Name, bonus
		out = append(out, fmt.Sprintf("You wield the %s (+%d damage).", r.Name, bonus))
	} else {
		prev = p.Equipment.Armor
		p.Equipment.Armor, p.Equipment.ArmorBonus = r.Name, bonus
		out = append(out, fmt.Sprintf("You put on the %s (+%d defense).", r.Name, bonus))
	}
	if prev != "" {
		if inventory.Add(p, prev, 1) == 1 {
			out = append(out, fmt.Sprintf("The %s goes back in your bag.", prev))
		} else {
			out = append(out, fmt.Sprintf("No room for the %s; you leave it behind.", prev))
		}
	}
	return types.Result{
		Output:  out,
		Events:  []types.Event{{Type: "item_equipped", Data: map[string]any{"item": r.Name, "type": r.Type}}},
		Changed: true,
	}, nil
}

func inCombat(s *types.State) bool {
	return s.Combat != nil && s.Combat.Outcome == ""
}
