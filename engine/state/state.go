// Package state holds the immutable world definitions, the default player
// record, and the lookups and formulas every engine shares.
package state

import (
	"time"

	"github.com/nathoo/kaito/types"
)

// XPPerLevel is the XP width of one level.
const XPPerLevel = 150

// Starting values for a fresh player record.
const (
	StartGold      = 5
	StartHealth    = 100
	StartSlots     = 10
	BasicAttack    = "Basic Attack"
	basicAttackDmg = 10
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game        types.GameDef
	Towns       map[string]types.Town
	TownOrder   []string
	Recipes     []types.Recipe
	Enemies     map[string]types.Enemy
	Skills      map[string]types.SkillDef
	SkillOrder  []string
	Weather     []types.Weather
	Events      []types.EventDef
	DailyTasks  []types.Task
	WeeklyTasks []types.Task
	ItemValues  map[string]int
}

// WithDefaults fills zero tuning values with the standard ones.
func (d *Defs) WithDefaults() *Defs {
	g := &d.Game
	if g.WeatherPeriod == 0 {
		g.WeatherPeriod = 30 * time.Minute
	}
	if g.EventPeriod == 0 {
		g.EventPeriod = 10 * time.Minute
	}
	if g.EventChance == 0 {
		g.EventChance = 0.3
	}
	if g.BatchGatherCooldown == 0 {
		g.BatchGatherCooldown = 3 * time.Minute
	}
	if g.SalesThreshold == 0 {
		g.SalesThreshold = 10
	}
	if g.MaxTownLevel == 0 {
		g.MaxTownLevel = 3
	}
	if g.StartTown == "" && len(d.TownOrder) > 0 {
		g.StartTown = d.TownOrder[0]
	}
	return d
}

// LevelForXP is the one level formula: floor(xp / 150) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// GrantXP adds XP, recomputes the level, and reports a level-up.
func GrantXP(p *types.Player, amount int) bool {
	if amount <= 0 {
		return false
	}
	before := p.Level
	p.XP += amount
	p.Level = LevelForXP(p.XP)
	return p.Level > before
}

// NewPlayer returns the default record for a first session.
func NewPlayer(defs *Defs, wallet, name string, now time.Time) types.Player {
	p := types.Player{
		WalletAddress:  wallet,
		Name:           name,
		Level:          1,
		Gold:           StartGold,
		Health:         StartHealth,
		MaxHealth:      StartHealth,
		InventorySlots: StartSlots,
		Inventory: []types.InventoryItem{
			{Name: "Water", Quantity: 2},
			{Name: "Herbs", Quantity: 1},
		},
		Town:       defs.Game.StartTown,
		RareItems:  []string{},
		Skills:     []types.Skill{basicAttack(defs)},
		Quests:     []types.Quest{},
		Buffs:      []types.GatherBuff{},
		LastGather: map[string]time.Time{},
	}
	p.DailyTasks = cloneTasks(defs.DailyTasks)
	p.WeeklyTasks = cloneTasks(defs.WeeklyTasks)
	p.DailyResetAt = now
	p.WeeklyResetAt = now
	return p
}

func basicAttack(defs *Defs) types.Skill {
	base := types.SkillEffect{Damage: basicAttackDmg}
	tree := "Warrior"
	if def, ok := defs.Skills[BasicAttack]; ok {
		base = def.Base
		tree = def.Tree
	}
	return types.Skill{Name: BasicAttack, Tree: tree, Level: 1, Base: base, Effect: base}
}

func cloneTasks(tasks []types.Task) []types.Task {
	out := make([]types.Task, len(tasks))
	for i, t := range tasks {
		t.Progress = 0
		t.Completed = false
		out[i] = t
	}
	return out
}

// FreshTasks returns un-progressed copies of task templates.
func FreshTasks(tasks []types.Task) []types.Task {
	return cloneTasks(tasks)
}

// NewWorld creates world state with every town at level 1.
func NewWorld(defs *Defs, now time.Time) types.World {
	w := types.World{
		Towns:            map[string]types.TownState{},
		WeatherChangedAt: now,
		LastEventRoll:    now,
	}
	if len(defs.Weather) > 0 {
		w.Weather = defs.Weather[0].Name
	}
	for _, name := range defs.TownOrder {
		w.Towns[name] = types.TownState{Level: 1}
	}
	return w
}

// NewState creates a fresh session state around a player record.
func NewState(defs *Defs, p types.Player, now time.Time) *types.State {
	if p.LastGather == nil {
		p.LastGather = map[string]time.Time{}
	}
	return &types.State{
		Player:     p,
		World:      NewWorld(defs, now),
		CommandLog: []string{},
	}
}

// CurrentTown returns the definition of the player's town.
func CurrentTown(s *types.State, defs *Defs) (types.Town, bool) {
	t, ok := defs.Towns[s.Player.Town]
	return t, ok
}

// TownLevel returns the runtime level of a town, 1 when unset.
func TownLevel(s *types.State, town string) float64 {
	ts, ok := s.World.Towns[town]
	if !ok || ts.Level <= 0 {
		return 1
	}
	return ts.Level
}

// CurrentWeather returns the active weather definition.
func CurrentWeather(s *types.State, defs *Defs) (types.Weather, bool) {
	for _, w := range defs.Weather {
		if w.Name == s.World.Weather {
			return w, true
		}
	}
	return types.Weather{}, false
}

// CombatMultiplier returns the weather's combat multiplier, 1 by default.
func CombatMultiplier(s *types.State, defs *Defs) float64 {
	if w, ok := CurrentWeather(s, defs); ok && w.CombatMultiplier > 0 {
		return w.CombatMultiplier
	}
	return 1
}

// ActiveEvent returns the world event if it has not expired at now.
func ActiveEvent(s *types.State, now time.Time) (*types.WorldEvent, bool) {
	ev := s.World.Event
	if ev == nil || !now.Before(ev.ExpiresAt) {
		return nil, false
	}
	return ev, true
}

// EventActive reports whether an event of the given type is running.
func EventActive(s *types.State, eventType string, now time.Time) bool {
	ev, ok := ActiveEvent(s, now)
	return ok && ev.Type == eventType
}

// FindRecipe returns the recipe producing the named item.
func FindRecipe(defs *Defs, name string) (types.Recipe, bool) {
	for _, r := range defs.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return types.Recipe{}, false
}

// ItemValue returns the base sale value of an item, 0 if unsellable.
func ItemValue(defs *Defs, name string) int {
	if r, ok := FindRecipe(defs, name); ok {
		if r.SellValue > 0 {
			return r.SellValue
		}
		if r.BaseGold > 0 {
			return r.BaseGold
		}
	}
	return defs.ItemValues[name]
}

// ActiveBuffs returns the sum of unexpired buff values of a type.
func ActiveBuffs(p *types.Player, buffType string, now time.Time) float64 {
	total := 0.0
	for _, b := range p.Buffs {
		if b.Type == buffType && now.Before(b.ExpiresAt) {
			total += b.Value
		}
	}
	return total
}

// ClampHealth keeps health within [0, MaxHealth].
func ClampHealth(p *types.Player) {
	if p.Health < 0 {
		p.Health = 0
	}
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
}
