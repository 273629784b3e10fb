// Package save implements the JSON player record exchanged with stores and
// save files.
package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nathoo/kaito/engine/inventory"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// Record is the JSON-serializable player record.
type Record struct {
	Version     string       `json:"version"`
	Game        string       `json:"game"`
	SavedAt     time.Time    `json:"saved_at"`
	Turn        int          `json:"turn"`
	Player      types.Player `json:"player"`
	World       *types.World `json:"world,omitempty"`
	RNGSeed     int64        `json:"rng_seed"`
	RNGPosition int64        `json:"rng_position"`
	CommandLog  []string     `json:"command_log"`
}

// Snapshot copies the state into an independent record. The copy shares no
// memory with s, so it can be handed to another goroutine.
func Snapshot(s *types.State, defs *state.Defs, now time.Time) (*Record, error) {
	r := &Record{
		Version:     defs.Game.Version,
		Game:        defs.Game.Title,
		SavedAt:     now,
		Turn:        s.TurnCount,
		Player:      s.Player,
		World:       &s.World,
		RNGSeed:     s.RNGSeed,
		RNGPosition: s.RNGPosition,
		CommandLog:  s.CommandLog,
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Decode(data)
}

// Encode serializes a record to indented JSON.
func Encode(r *Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Save serializes the state to JSON bytes.
func Save(s *types.State, defs *state.Defs, now time.Time) ([]byte, error) {
	r, err := Snapshot(s, defs, now)
	if err != nil {
		return nil, err
	}
	return Encode(r)
}

// Decode deserializes JSON bytes into a normalized Record.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	Normalize(&r.Player)
	if r.CommandLog == nil {
		r.CommandLog = []string{}
	}
	if r.World != nil && r.World.Towns == nil {
		r.World.Towns = map[string]types.TownState{}
	}
	return &r, nil
}

// Normalize repairs a player record read from storage: nil collections
// become empty, numeric fields are coerced into their valid ranges, and the
// level is recomputed from XP.
func Normalize(p *types.Player) {
	if p.Inventory == nil {
		p.Inventory = []types.InventoryItem{}
	}
	if p.RareItems == nil {
		p.RareItems = []string{}
	}
	if p.Skills == nil {
		p.Skills = []types.Skill{}
	}
	if p.Quests == nil {
		p.Quests = []types.Quest{}
	}
	if p.Buffs == nil {
		p.Buffs = []types.GatherBuff{}
	}
	if p.LastGather == nil {
		p.LastGather = map[string]time.Time{}
	}
	if p.InventorySlots <= 0 {
		p.InventorySlots = state.StartSlots
	}
	if p.MaxHealth <= 0 {
		p.MaxHealth = state.StartHealth
	}
	p.Gold = max(p.Gold, 0)
	p.XP = max(p.XP, 0)
	p.GuildContribution = max(p.GuildContribution, 0)
	p.Level = state.LevelForXP(p.XP)
	state.ClampHealth(p)
	inventory.Prune(p)
}

// Apply applies a loaded record onto a state. A record without world state
// keeps the state's current world.
func Apply(s *types.State, r *Record) {
	s.Player = r.Player
	if r.World != nil {
		s.World = *r.World
	}
	s.TurnCount = r.Turn
	s.RNGSeed = r.RNGSeed
	s.RNGPosition = r.RNGPosition
	s.CommandLog = r.CommandLog
	s.Combat = nil
}
