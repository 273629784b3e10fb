// Package types defines the shared data structures for the Kaito engine.
// This package holds data definitions only; behavior lives in the engine packages.
package types

import "time"

// RecipeType classifies what a crafted item is for.
type RecipeType string

const (
	RecipeSell   RecipeType = "sell"
	RecipeHeal   RecipeType = "heal"
	RecipeGather RecipeType = "gather"
	RecipeEquip  RecipeType = "equip"
	RecipeArmor  RecipeType = "armor"
)

// Buff types installed by gather recipes.
const (
	BuffRareChance = "rareChanceBoost"
	BuffCooldown   = "cooldownReduction"
)

// Objective kinds shared by quests and tasks.
const (
	KindGather = "gather"
	KindCraft  = "craft"
	KindDefeat = "defeat"
	KindSell   = "sell"
)

// World event types.
const (
	EventFestival = "festival"
	EventRaid     = "raid"
	EventStorm    = "storm"
)

// Combat outcomes. The zero value means the fight is still on.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomeFled = "fled"
)

// Action is a parsed player command.
type Action struct {
	Verb  string
	Args  []string // comma-separated names, already trimmed
	Type  string   // craft type for "craft"
	Count int      // batch size for "gather"
}

// Event is emitted by engine transitions.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single engine transition.
type Result struct {
	Output   []string
	Events   []Event
	Changed  bool // state was mutated and should be persisted
	Rejected bool // validation rejection, state untouched
}

// Notification is a fire-and-forget message for an external channel.
type Notification struct {
	Kind  string
	Title string
	Body  string
	At    time.Time
}

// InventoryItem is one stack in the player's bag.
type InventoryItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Equipment holds the equipped weapon and armor with their bonuses.
type Equipment struct {
	Weapon      string `json:"weapon,omitempty"`
	WeaponBonus int    `json:"weapon_bonus,omitempty"`
	Armor       string `json:"armor,omitempty"`
	ArmorBonus  int    `json:"armor_bonus,omitempty"`
}

// Stats counts lifetime actions.
type Stats struct {
	Gathers         int `json:"gathers"`
	PotionsCrafted  int `json:"potions_crafted"`
	EnemiesDefeated int `json:"enemies_defeated"`
	ItemsSold       int `json:"items_sold"`
}

// Reward is granted when a quest or task is completed.
type Reward struct {
	Gold int `json:"gold"`
	XP   int `json:"xp"`
}

// Quest is a progress counter against a target. Item "" matches any item.
type Quest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Item        string `json:"item,omitempty"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Reward      Reward `json:"reward"`
}

// Task is a daily or weekly quest that stays in the list once completed.
type Task struct {
	Quest
	Completed bool `json:"completed"`
}

// SkillEffect holds effect magnitudes. Zero fields are absent.
type SkillEffect struct {
	Damage            float64 `json:"damage,omitempty"`
	HealBonus         float64 `json:"heal_bonus,omitempty"`
	CostReduction     float64 `json:"cost_reduction,omitempty"`
	CooldownReduction float64 `json:"cooldown_reduction,omitempty"`
	RareChance        float64 `json:"rare_chance,omitempty"`
	StunChance        float64 `json:"stun_chance,omitempty"`
	DoubleStrike      bool    `json:"double_strike,omitempty"`
}

// Skill is a skill the player holds.
type Skill struct {
	Name   string      `json:"name"`
	Tree   string      `json:"tree"`
	Uses   int         `json:"uses"`
	Level  int         `json:"level"`
	Base   SkillEffect `json:"base"`
	Effect SkillEffect `json:"effect"`
}

// SkillDef is a skill that can be unlocked from a tree.
type SkillDef struct {
	Name string
	Tree string
	Cost int
	Base SkillEffect
}

// GatherBuff is a timed gather modifier.
type GatherBuff struct {
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Player is the persisted player record.
type Player struct {
	WalletAddress     string               `json:"wallet_address"`
	Name              string               `json:"name"`
	Level             int                  `json:"level"`
	XP                int                  `json:"xp"`
	Gold              int                  `json:"gold"`
	Health            int                  `json:"health"`
	MaxHealth         int                  `json:"max_health"`
	InventorySlots    int                  `json:"inventory_slots"`
	Inventory         []InventoryItem      `json:"inventory"`
	Equipment         Equipment            `json:"equipment"`
	Trait             string               `json:"trait,omitempty"`
	Avatar            string               `json:"avatar,omitempty"`
	Town              string               `json:"town"`
	RareItems         []string             `json:"rare_items"`
	Skills            []Skill              `json:"skills"`
	Quests            []Quest              `json:"quests"`
	DailyTasks        []Task               `json:"daily_tasks"`
	WeeklyTasks       []Task               `json:"weekly_tasks"`
	Buffs             []GatherBuff         `json:"buffs"`
	LastGather        map[string]time.Time `json:"last_gather"`
	LastBatchGather   time.Time            `json:"last_batch_gather"`
	DailyResetAt      time.Time            `json:"daily_reset_at"`
	WeeklyResetAt     time.Time            `json:"weekly_reset_at"`
	GuildContribution int                  `json:"guild_contribution"`
	Stats             Stats                `json:"stats"`
}

// Recipe maps an exact ingredient multiset to an output.
type Recipe struct {
	Name        string
	Ingredients []string
	Type        RecipeType
	BaseGold    int
	SellValue   int
	HealPercent float64
	Effect      string        // buff type for gather recipes
	Bonus       float64       // buff value, weapon or armor bonus
	Duration    time.Duration // buff duration
	UnlockLevel int
}

// RareIngredient is a low-probability gather bonus.
type RareIngredient struct {
	Name   string
	Chance float64
}

// Offer is an item an NPC sells.
type Offer struct {
	Item  string
	Price int
}

// NPC lives in a town and may offer a quest.
type NPC struct {
	Name     string
	Greeting string
	Quest    *Quest
}

// Town is a static town definition.
type Town struct {
	Name                  string
	Ingredients           []string
	RareIngredients       []RareIngredient
	GatherCooldownMinutes int
	RewardMultiplier      float64
	Demand                map[string]float64
	Offers                []Offer
	NPCs                  []NPC
	Enemies               []string
}

// TownState is the runtime state of a town.
type TownState struct {
	Level float64 `json:"level"`
	Sales int     `json:"sales"`
}

// Enemy is a base enemy definition.
type Enemy struct {
	Name       string  `json:"name"`
	Health     int     `json:"health"`
	Damage     int     `json:"damage"`
	Gold       int     `json:"gold"`
	XP         int     `json:"xp"`
	Drop       string  `json:"drop,omitempty"`
	DropChance float64 `json:"drop_chance,omitempty"`
}

// CombatSession is an ephemeral fight.
type CombatSession struct {
	ID           string   `json:"id"`
	PlayerHealth int      `json:"player_health"`
	Enemy        Enemy    `json:"enemy"` // scaled snapshot
	EnemyHealth  int      `json:"enemy_health"`
	Log          []string `json:"log"`
	IsAttacking  bool     `json:"is_attacking"`
	Outcome      string   `json:"outcome,omitempty"`
}

// GatherBonus is the weather's extra ingredient roll.
type GatherBonus struct {
	Item   string
	Chance float64
}

// Weather is a weather definition.
type Weather struct {
	Name             string
	GatherBonus      *GatherBonus
	CombatMultiplier float64
	DemandBonus      map[string]float64
}

// EventDef is a world event template.
type EventDef struct {
	Type        string
	Description string
	Duration    time.Duration
}

// WorldEvent is an active world event.
type WorldEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Town           string    `json:"town,omitempty"`
	TownLevelDelta float64   `json:"town_level_delta,omitempty"`
}

// World is the per-session ambient state.
type World struct {
	Weather          string               `json:"weather"`
	WeatherChangedAt time.Time            `json:"weather_changed_at"`
	Event            *WorldEvent          `json:"event,omitempty"`
	LastEventRoll    time.Time            `json:"last_event_roll"`
	Towns            map[string]TownState `json:"towns"`
}

// LeaderboardEntry is a read-only projection of a player.
type LeaderboardEntry struct {
	WalletAddress string
	Name          string
	Level         int
	Gold          int
	XP            int
}

// GameDef holds game metadata and tuning from Lua.
type GameDef struct {
	Title               string
	Author              string
	Version             string
	Intro               string
	StartTown           string
	WeatherPeriod       time.Duration
	EventPeriod         time.Duration
	EventChance         float64
	BatchGatherCooldown time.Duration
	SalesThreshold      int
	MaxTownLevel        float64
}

// State is the complete mutable session state.
type State struct {
	Player      Player         `json:"player"`
	World       World          `json:"world"`
	Combat      *CombatSession `json:"combat,omitempty"`
	RNGSeed     int64          `json:"rng_seed"`
	RNGPosition int64          `json:"rng_position"`
	TurnCount   int            `json:"turn"`
	CommandLog  []string       `json:"command_log"`
}
