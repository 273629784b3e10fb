// Package enginetest provides a small fixed world for engine tests.
package enginetest

import (
	"time"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// T0 is the reference wall-clock time used by tests.
var T0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Defs returns the test world: two towns, six recipes, two enemies.
func Defs() *state.Defs {
	return (&state.Defs{
		Game: types.GameDef{
			Title:     "Test Adventure",
			Version:   "1.0",
			StartTown: "Riverside",
		},
		TownOrder: []string{"Riverside", "Emberfall"},
		Towns: map[string]types.Town{
			"Riverside": {
				Name:                  "Riverside",
				Ingredients:           []string{"Water", "Herbs", "Mushroom"},
				RareIngredients:       []types.RareIngredient{{Name: "Moonflower", Chance: 0.05}},
				GatherCooldownMinutes: 5,
				RewardMultiplier:      1,
				Demand:                map[string]float64{"Healing Potion": 1.2},
				Offers:                []types.Offer{{Item: "Water", Price: 4}, {Item: "Herbs", Price: 6}},
				NPCs: []types.NPC{{
					Name:     "Old Mira",
					Greeting: "'The river gives to those who ask politely.'",
					Quest: &types.Quest{
						ID: "mira_herbs", Description: "Gather 5 Herbs for Mira",
						Kind: types.KindGather, Item: "Herbs", Target: 5,
						Reward: types.Reward{Gold: 20, XP: 50},
					},
				}},
				Enemies: []string{"Goblin", "Wolf"},
			},
			"Emberfall": {
				Name:                  "Emberfall",
				Ingredients:           []string{"Ore", "Coal"},
				RareIngredients:       []types.RareIngredient{{Name: "Fire Crystal", Chance: 0.05}},
				GatherCooldownMinutes: 10,
				RewardMultiplier:      1.5,
				Demand:                map[string]float64{"Combat Blade": 1.3},
				Offers:                []types.Offer{{Item: "Coal", Price: 9}},
				NPCs: []types.NPC{{
					Name: "Smith Brann",
					Quest: &types.Quest{
						ID: "brann_blade", Description: "Craft a Combat Blade",
						Kind: types.KindCraft, Item: "Combat Blade", Target: 1,
						Reward: types.Reward{Gold: 40, XP: 80},
					},
				}},
				Enemies: []string{"Wolf"},
			},
		},
		Recipes: []types.Recipe{
			{Name: "Healing Potion", Ingredients: []string{"Water", "Herbs"}, Type: types.RecipeHeal, HealPercent: 0.3, SellValue: 8},
			{Name: "Swift Tonic", Ingredients: []string{"Water", "Mushroom"}, Type: types.RecipeGather, Effect: types.BuffCooldown, Bonus: 0.2, Duration: 10 * time.Minute, SellValue: 6},
			{Name: "Lucky Brew", Ingredients: []string{"Herbs", "Moonflower"}, Type: types.RecipeGather, Effect: types.BuffRareChance, Bonus: 0.1, Duration: 30 * time.Minute},
			{Name: "Herbal Salve", Ingredients: []string{"Herbs", "Herbs"}, Type: types.RecipeSell, BaseGold: 10},
			{Name: "Combat Blade", Ingredients: []string{"Ore", "Ore", "Coal"}, Type: types.RecipeEquip, Bonus: 5, UnlockLevel: 2, SellValue: 30},
			{Name: "Iron Armor", Ingredients: []string{"Ore", "Coal", "Coal"}, Type: types.RecipeArmor, Bonus: 3, UnlockLevel: 2, SellValue: 28},
		},
		Enemies: map[string]types.Enemy{
			"Goblin": {Name: "Goblin", Health: 50, Damage: 8, Gold: 10, XP: 20, Drop: "Goblin Ear", DropChance: 0.3},
			"Wolf":   {Name: "Wolf", Health: 80, Damage: 10, Gold: 15, XP: 30, Drop: "Wolf Pelt", DropChance: 0.25},
		},
		SkillOrder: []string{
			state.BasicAttack, "Power Strike", "Double Strike", "Stunning Blow",
			"Efficient Brewing", "Healing Touch", "Quick Gather", "Lucky Find",
		},
		Skills: map[string]types.SkillDef{
			state.BasicAttack:   {Name: state.BasicAttack, Tree: "Warrior", Base: types.SkillEffect{Damage: 10}},
			"Power Strike":      {Name: "Power Strike", Tree: "Warrior", Cost: 20, Base: types.SkillEffect{Damage: 20}},
			"Double Strike":     {Name: "Double Strike", Tree: "Warrior", Cost: 40, Base: types.SkillEffect{Damage: 12, DoubleStrike: true}},
			"Stunning Blow":     {Name: "Stunning Blow", Tree: "Warrior", Cost: 30, Base: types.SkillEffect{Damage: 8, StunChance: 0.25}},
			"Efficient Brewing": {Name: "Efficient Brewing", Tree: "Herbalist", Cost: 25, Base: types.SkillEffect{CostReduction: 0.1}},
			"Healing Touch":     {Name: "Healing Touch", Tree: "Herbalist", Cost: 20, Base: types.SkillEffect{HealBonus: 5}},
			"Quick Gather":      {Name: "Quick Gather", Tree: "Explorer", Cost: 25, Base: types.SkillEffect{CooldownReduction: 0.1}},
			"Lucky Find":        {Name: "Lucky Find", Tree: "Explorer", Cost: 30, Base: types.SkillEffect{RareChance: 0.1}},
		},
		Weather: []types.Weather{
			{Name: "sunny", GatherBonus: &types.GatherBonus{Item: "Herbs", Chance: 0.2}, CombatMultiplier: 1},
			{Name: "rainy", GatherBonus: &types.GatherBonus{Item: "Water", Chance: 0.3}, CombatMultiplier: 0.9, DemandBonus: map[string]float64{"Healing Potion": 1.5}},
			{Name: "foggy", GatherBonus: &types.GatherBonus{Item: "Mushroom", Chance: 0.2}, CombatMultiplier: 1.2},
		},
		Events: []types.EventDef{
			{Type: types.EventFestival, Description: "A festival fills the streets!", Duration: 30 * time.Minute},
			{Type: types.EventRaid, Description: "Bandits raid the outskirts!", Duration: 15 * time.Minute},
			{Type: types.EventStorm, Description: "A storm rolls in. Gathering is halted.", Duration: 10 * time.Minute},
		},
		DailyTasks: []types.Task{
			{Quest: types.Quest{ID: "daily_craft", Description: "Craft 3 potions", Kind: types.KindCraft, Target: 3, Reward: types.Reward{Gold: 15, XP: 30}}},
			{Quest: types.Quest{ID: "daily_defeat", Description: "Defeat 3 enemies", Kind: types.KindDefeat, Target: 3, Reward: types.Reward{Gold: 20, XP: 40}}},
		},
		WeeklyTasks: []types.Task{
			{Quest: types.Quest{ID: "weekly_sell", Description: "Sell 20 items", Kind: types.KindSell, Target: 20, Reward: types.Reward{Gold: 100, XP: 200}}},
		},
		ItemValues: map[string]int{"Goblin Ear": 4, "Wolf Pelt": 7, "Moonflower": 15, "Water": 1, "Herbs": 2},
	}).WithDefaults()
}

// NewState returns a fresh session for wallet "0xtest" at T0.
func NewState(defs *state.Defs) *types.State {
	p := state.NewPlayer(defs, "0xtest", "Kaito", T0)
	return state.NewState(defs, p, T0)
}

// Qty returns the quantity of an item in the player's inventory.
func Qty(s *types.State, name string) int {
	for _, it := range s.Player.Inventory {
		if it.Name == name {
			return it.Quantity
		}
	}
	return 0
}

// Give sets an item quantity directly, bypassing capacity rules.
func Give(s *types.State, name string, qty int) {
	for i, it := range s.Player.Inventory {
		if it.Name == name {
			s.Player.Inventory[i].Quantity = qty
			return
		}
	}
	s.Player.Inventory = append(s.Player.Inventory, types.InventoryItem{Name: name, Quantity: qty})
}

// Unlock grants a skill from the definitions without paying for it.
func Unlock(s *types.State, defs *state.Defs, name string) {
	def := defs.Skills[name]
	s.Player.Skills = append(s.Player.Skills, types.Skill{
		Name: def.Name, Tree: def.Tree, Level: 1, Base: def.Base, Effect: def.Base,
	})
}
