// Package events derives player notifications from engine events.
// Derivation is single-pass: a notification never produces further events.
package events

import (
	"fmt"
	"time"

	"github.com/nathoo/kaito/types"
)

// Notification kinds.
const (
	KindItem   = "item"
	KindLevel  = "level"
	KindWorld  = "world"
	KindQuest  = "quest"
	KindCombat = "combat"
	KindMarket = "market"
)

type rule struct {
	kind  string
	title func(types.Event) string
	body  func(types.Event) string
}

var rules = map[string]rule{
	"item_crafted": {KindItem,
		fixed("New item"),
		func(e types.Event) string { return fmt.Sprintf("You crafted %s.", str(e, "item")) }},
	"rare_found": {KindItem,
		fixed("Rare find!"),
		func(e types.Event) string { return fmt.Sprintf("You found a rare %s.", str(e, "item")) }},
	"loot_dropped": {KindItem,
		fixed("Loot"),
		func(e types.Event) string { return fmt.Sprintf("The enemy dropped %s.", str(e, "item")) }},
	"level_up": {KindLevel,
		fixed("Level up"),
		func(e types.Event) string { return fmt.Sprintf("You reached level %d.", num(e, "level")) }},
	"skill_level_up": {KindLevel,
		fixed("Skill improved"),
		func(e types.Event) string {
			return fmt.Sprintf("%s is now level %d.", str(e, "skill"), num(e, "level"))
		}},
	"event_started": {KindWorld,
		func(e types.Event) string { return "World event: " + str(e, "type") },
		func(e types.Event) string { return str(e, "description") }},
	"event_ended": {KindWorld,
		func(e types.Event) string { return "World event over: " + str(e, "type") },
		func(e types.Event) string { return fmt.Sprintf("The %s has ended.", str(e, "type")) }},
	"quest_ready": {KindQuest,
		fixed("Objective complete"),
		func(e types.Event) string {
			return fmt.Sprintf("%s is ready to turn in (complete %s).", str(e, "description"), str(e, "id"))
		}},
	"town_level_up": {KindMarket,
		fixed("Town grows"),
		func(e types.Event) string {
			return fmt.Sprintf("%s has reached level %g.", str(e, "town"), flt(e, "level"))
		}},
	"combat_ended": {KindCombat,
		fixed("Battle over"),
		func(e types.Event) string { return "Outcome: " + str(e, "outcome") }},
}

// Derive converts the notable events of a transition into notifications.
// Routine events (item_gathered, item_sold, ...) produce nothing.
func Derive(evts []types.Event, now time.Time) []types.Notification {
	var out []types.Notification
	for _, e := range evts {
		r, ok := rules[e.Type]
		if !ok {
			continue
		}
		out = append(out, types.Notification{
			Kind:  r.kind,
			Title: r.title(e),
			Body:  r.body(e),
			At:    now,
		})
	}
	return out
}

// Notable reports whether an event type produces a notification.
func Notable(eventType string) bool {
	_, ok := rules[eventType]
	return ok
}

func fixed(s string) func(types.Event) string {
	return func(types.Event) string { return s }
}

func str(e types.Event, key string) string {
	switch v := e.Data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func num(e types.Event, key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func flt(e types.Event, key string) float64 {
	switch v := e.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
