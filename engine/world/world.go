// Package world rotates the weather and runs timed world events. Everything
// is driven by Tick polling stored timestamps; nothing is scheduled.
package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// FestivalBoost is the temporary town level bonus of a festival.
const FestivalBoost = 0.5

// Tick advances all time-gated world state to now.
func Tick(s *types.State, defs *state.Defs, src rng.Source, now time.Time) types.Result {
	var res types.Result

	if ev := s.World.Event; ev != nil && !now.Before(ev.ExpiresAt) {
		merge(&res, expire(s, now))
	}

	if len(defs.Weather) > 0 && now.Sub(s.World.WeatherChangedAt) >= defs.Game.WeatherPeriod {
		w := defs.Weather[src.Intn(len(defs.Weather))]
		s.World.Weather = w.Name
		s.World.WeatherChangedAt = now
		res.Output = append(res.Output, fmt.Sprintf("The weather turns %s.", w.Name))
		res.Events = append(res.Events, types.Event{Type: "weather_changed", Data: map[string]any{"weather": w.Name}})
		res.Changed = true
	}

	if s.World.Event == nil && len(defs.Events) > 0 && now.Sub(s.World.LastEventRoll) >= defs.Game.EventPeriod {
		s.World.LastEventRoll = now
		res.Changed = true
		if rng.Chance(src, defs.Game.EventChance) {
			def := defs.Events[src.Intn(len(defs.Events))]
			merge(&res, Trigger(s, def, now))
		}
	}

	if pruneBuffs(&s.Player, now) {
		res.Changed = true
	}

	if evts := quests.ResetTasks(&s.Player, defs, now); len(evts) > 0 {
		res.Events = append(res.Events, evts...)
		res.Output = append(res.Output, "Your tasks have been refreshed.")
		res.Changed = true
	}

	return res
}

// Trigger starts a world event and applies its one-shot effect.
func Trigger(s *types.State, def types.EventDef, now time.Time) types.Result {
	ev := &types.WorldEvent{
		ID:          uuid.NewString(),
		Type:        def.Type,
		Description: def.Description,
		StartedAt:   now,
		ExpiresAt:   now.Add(def.Duration),
	}
	town := s.Player.Town
	out := []string{def.Description}
	switch def.Type {
	case types.EventFestival:
		ts := s.World.Towns[town]
		if ts.Level <= 0 {
			ts.Level = 1
		}
		ts.Level += FestivalBoost
		if s.World.Towns == nil {
			s.World.Towns = map[string]types.TownState{}
		}
		s.World.Towns[town] = ts
		ev.Town = town
		ev.TownLevelDelta = FestivalBoost
		out = append(out, fmt.Sprintf("%s celebrates: prices are kinder and demand is up.", town))
	case types.EventRaid:
		out = append(out, fmt.Sprintf("Raiders prowl the roads near %s.", town))
	case types.EventStorm:
		out = append(out, "No one can gather until the storm passes.")
	}
	s.World.Event = ev
	return types.Result{
		Output: out,
		Events: []types.Event{{
			Type: "event_started",
			Data: map[string]any{"id": ev.ID, "type": ev.Type, "description": ev.Description, "expires_at": ev.ExpiresAt},
		}},
		Changed: true,
	}
}

func expire(s *types.State, now time.Time) types.Result {
	ev := s.World.Event
	s.World.Event = nil
	if ev.TownLevelDelta != 0 && ev.Town != "" {
		ts := s.World.Towns[ev.Town]
		ts.Level -= ev.TownLevelDelta
		if ts.Level < 1 {
			ts.Level = 1
		}
		s.World.Towns[ev.Town] = ts
	}
	return types.Result{
		Output: []string{fmt.Sprintf("The %s has ended.", ev.Type)},
		Events: []types.Event{{
			Type: "event_ended",
			Data: map[string]any{"id": ev.ID, "type": ev.Type, "at": now},
		}},
		Changed: true,
	}
}

func pruneBuffs(p *types.Player, now time.Time) bool {
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		if now.Before(b.ExpiresAt) {
			kept = append(kept, b)
		}
	}
	changed := len(kept) != len(p.Buffs)
	p.Buffs = kept
	return changed
}

func merge(dst *types.Result, src types.Result) {
	dst.Output = append(dst.Output, src.Output...)
	dst.Events = append(dst.Events, src.Events...)
	dst.Changed = dst.Changed || src.Changed
}
