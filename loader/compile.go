// Package loader loads Lua world content into Go structs at startup.
// The Lua VM is discarded after loading; no Lua runs during play.
package loader

import (
	"fmt"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getMinutes reads a duration given in minutes.
func getMinutes(tbl *lua.LTable, key string) time.Duration {
	return time.Duration(getNumber(tbl, key) * float64(time.Minute))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList converts an array table of strings.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	out := make([]string, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableList returns the table elements of an array table.
func tableList(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// tableToFloatMap converts a Lua table to a map[string]float64.
func tableToFloatMap(tbl *lua.LTable) map[string]float64 {
	if tbl == nil {
		return nil
	}
	m := map[string]float64{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = float64(n)
			}
		}
	})
	return m
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Towns:      map[string]types.Town{},
		Enemies:    map[string]types.Enemy{},
		Skills:     map[string]types.SkillDef{},
		ItemValues: map[string]int{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.towns {
		if _, dup := defs.Towns[raw.name]; dup {
			return nil, fmt.Errorf("duplicate town %q", raw.name)
		}
		defs.Towns[raw.name] = compileTown(raw)
		defs.TownOrder = append(defs.TownOrder, raw.name)
	}

	for _, raw := range coll.recipes {
		if _, dup := state.FindRecipe(defs, raw.name); dup {
			return nil, fmt.Errorf("duplicate recipe %q", raw.name)
		}
		defs.Recipes = append(defs.Recipes, compileRecipe(raw))
	}

	for _, raw := range coll.enemies {
		if _, dup := defs.Enemies[raw.name]; dup {
			return nil, fmt.Errorf("duplicate enemy %q", raw.name)
		}
		defs.Enemies[raw.name] = compileEnemy(raw)
	}

	for _, raw := range coll.skills {
		if _, dup := defs.Skills[raw.name]; dup {
			return nil, fmt.Errorf("duplicate skill %q", raw.name)
		}
		defs.Skills[raw.name] = compileSkill(raw)
		defs.SkillOrder = append(defs.SkillOrder, raw.name)
	}

	for _, raw := range coll.weather {
		defs.Weather = append(defs.Weather, compileWeather(raw))
	}

	for _, raw := range coll.events {
		defs.Events = append(defs.Events, types.EventDef{
			Type:        raw.name,
			Description: getString(raw.table, "description"),
			Duration:    getMinutes(raw.table, "duration"),
		})
	}

	for _, raw := range coll.tasks {
		task := types.Task{Quest: compileQuest(raw.table)}
		task.ID = raw.name
		switch period := getString(raw.table, "period"); period {
		case "daily", "":
			defs.DailyTasks = append(defs.DailyTasks, task)
		case "weekly":
			defs.WeeklyTasks = append(defs.WeeklyTasks, task)
		default:
			return nil, fmt.Errorf("task %q: unknown period %q", raw.name, period)
		}
	}

	for _, raw := range coll.items {
		defs.ItemValues[raw.name] = getInt(raw.table, "value")
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:               getString(tbl, "title"),
		Author:              getString(tbl, "author"),
		Version:             getString(tbl, "version"),
		Intro:               getString(tbl, "intro"),
		StartTown:           getString(tbl, "start"),
		WeatherPeriod:       getMinutes(tbl, "weather_period"),
		EventPeriod:         getMinutes(tbl, "event_period"),
		EventChance:         getNumber(tbl, "event_chance"),
		BatchGatherCooldown: getMinutes(tbl, "batch_cooldown"),
		SalesThreshold:      getInt(tbl, "sales_threshold"),
		MaxTownLevel:        getNumber(tbl, "max_town_level"),
	}
}

func compileTown(raw rawDef) types.Town {
	tbl := raw.table
	t := types.Town{
		Name:                  raw.name,
		Ingredients:           stringList(getTable(tbl, "ingredients")),
		GatherCooldownMinutes: getInt(tbl, "cooldown"),
		RewardMultiplier:      getNumber(tbl, "reward_multiplier"),
		Demand:                tableToFloatMap(getTable(tbl, "demand")),
		Enemies:               stringList(getTable(tbl, "enemies")),
	}
	if t.RewardMultiplier == 0 {
		t.RewardMultiplier = 1
	}
	for _, r := range tableList(getTable(tbl, "rare")) {
		t.RareIngredients = append(t.RareIngredients, types.RareIngredient{
			Name:   getString(r, "name"),
			Chance: getNumber(r, "chance"),
		})
	}
	for _, o := range tableList(getTable(tbl, "offers")) {
		t.Offers = append(t.Offers, types.Offer{Item: getString(o, "item"), Price: getInt(o, "price")})
	}
	for _, n := range tableList(getTable(tbl, "npcs")) {
		npc := types.NPC{Name: getString(n, "name"), Greeting: getString(n, "greeting")}
		if q := getTable(n, "quest"); q != nil {
			quest := compileQuest(q)
			npc.Quest = &quest
		}
		t.NPCs = append(t.NPCs, npc)
	}
	return t
}

func compileQuest(tbl *lua.LTable) types.Quest {
	q := types.Quest{
		ID:          getString(tbl, "id"),
		Description: getString(tbl, "description"),
		Kind:        getString(tbl, "kind"),
		Item:        getString(tbl, "item"),
		Target:      getInt(tbl, "target"),
	}
	if r := getTable(tbl, "reward"); r != nil {
		q.Reward = types.Reward{Gold: getInt(r, "gold"), XP: getInt(r, "xp")}
	}
	return q
}

func compileRecipe(raw rawDef) types.Recipe {
	tbl := raw.table
	return types.Recipe{
		Name:        raw.name,
		Ingredients: stringList(getTable(tbl, "ingredients")),
		Type:        types.RecipeType(getString(tbl, "type")),
		BaseGold:    getInt(tbl, "base_gold"),
		SellValue:   getInt(tbl, "sell_value"),
		HealPercent: getNumber(tbl, "heal_percent"),
		Effect:      getString(tbl, "effect"),
		Bonus:       getNumber(tbl, "bonus"),
		Duration:    getMinutes(tbl, "duration"),
		UnlockLevel: getInt(tbl, "unlock_level"),
	}
}

func compileEnemy(raw rawDef) types.Enemy {
	tbl := raw.table
	return types.Enemy{
		Name:       raw.name,
		Health:     getInt(tbl, "health"),
		Damage:     getInt(tbl, "damage"),
		Gold:       getInt(tbl, "gold"),
		XP:         getInt(tbl, "xp"),
		Drop:       getString(tbl, "drop"),
		DropChance: getNumber(tbl, "drop_chance"),
	}
}

func compileSkill(raw rawDef) types.SkillDef {
	tbl := raw.table
	return types.SkillDef{
		Name: raw.name,
		Tree: getString(tbl, "tree"),
		Cost: getInt(tbl, "cost"),
		Base: types.SkillEffect{
			Damage:            getNumber(tbl, "damage"),
			HealBonus:         getNumber(tbl, "heal_bonus"),
			CostReduction:     getNumber(tbl, "cost_reduction"),
			CooldownReduction: getNumber(tbl, "cooldown_reduction"),
			RareChance:        getNumber(tbl, "rare_chance"),
			StunChance:        getNumber(tbl, "stun_chance"),
			DoubleStrike:      getBool(tbl, "double_strike", false),
		},
	}
}

func compileWeather(raw rawDef) types.Weather {
	tbl := raw.table
	w := types.Weather{
		Name:             raw.name,
		CombatMultiplier: getNumber(tbl, "combat"),
		DemandBonus:      tableToFloatMap(getTable(tbl, "demand")),
	}
	if w.CombatMultiplier == 0 {
		w.CombatMultiplier = 1
	}
	if b := getTable(tbl, "bonus"); b != nil {
		w.GatherBonus = &types.GatherBonus{Item: getString(b, "item"), Chance: getNumber(b, "chance")}
	}
	return w
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
