// Package dialogue implements talking to town NPCs and taking their quests.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// FindNPC returns the named NPC of the player's current town.
func FindNPC(s *types.State, defs *state.Defs, name string) (types.NPC, bool) {
	town, ok := state.CurrentTown(s, defs)
	if !ok {
		return types.NPC{}, false
	}
	for _, npc := range town.NPCs {
		if strings.EqualFold(npc.Name, name) {
			return npc, true
		}
	}
	return types.NPC{}, false
}

// Talk returns the NPC's greeting and any quest on offer.
func Talk(s *types.State, defs *state.Defs, name string) (types.Result, error) {
	npc, ok := FindNPC(s, defs, name)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no one called %s here.", name)
	}
	greeting := npc.Greeting
	if greeting == "" {
		greeting = "They nod at you."
	}
	out := []string{fmt.Sprintf("%s: %s", npc.Name, greeting)}
	if q := npc.Quest; q != nil {
		if onQuest(&s.Player, q.ID) {
			out = append(out, fmt.Sprintf("  (You are on \"%s\".)", q.Description))
		} else {
			out = append(out, fmt.Sprintf("  Offers: %s. Reward %d gold, %d XP. (accept %s)", q.Description, q.Reward.Gold, q.Reward.XP, npc.Name))
		}
	}
	return types.Result{Output: out}, nil
}

// Accept takes the NPC's quest.
func Accept(s *types.State, defs *state.Defs, name string) (types.Result, error) {
	npc, ok := FindNPC(s, defs, name)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no one called %s here.", name)
	}
	if npc.Quest == nil {
		return types.Result{}, state.Reject(state.ErrInvalid, "%s has no work for you.", npc.Name)
	}
	return quests.Accept(&s.Player, *npc.Quest)
}

func onQuest(p *types.Player, id string) bool {
	for _, q := range p.Quests {
		if q.ID == id {
			return true
		}
	}
	return false
}
