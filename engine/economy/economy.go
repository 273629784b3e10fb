// Package economy prices NPC purchases and sales, advances town levels from
// sales volume, and handles travel and guild contributions.
package economy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nathoo/kaito/engine/inventory"
	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// FestivalDemand multiplies all demand while a festival runs.
const FestivalDemand = 1.5

// BuyPrice is floor(price / townLevel).
func BuyPrice(price int, townLevel float64) int {
	if townLevel <= 0 {
		townLevel = 1
	}
	return int(math.Floor(float64(price) / townLevel))
}

// Demand combines town demand, the festival, and the weather for an item.
func Demand(s *types.State, defs *state.Defs, town types.Town, item string, now time.Time) float64 {
	d := 1.0
	if v, ok := town.Demand[item]; ok && v > 0 {
		d = v
	}
	if state.EventActive(s, types.EventFestival, now) {
		d *= FestivalDemand
	}
	if w, ok := state.CurrentWeather(s, defs); ok {
		if v, ok := w.DemandBonus[item]; ok && v > 0 {
			d *= v
		}
	}
	return d
}

// SellPrice is floor(value * rewardMultiplier * demand) for one unit.
func SellPrice(s *types.State, defs *state.Defs, town types.Town, item string, now time.Time) int {
	mult := town.RewardMultiplier
	if mult <= 0 {
		mult = 1
	}
	value := state.ItemValue(defs, item)
	return int(math.Floor(float64(value) * mult * Demand(s, defs, town, item, now)))
}

func findOffer(town types.Town, item string) (types.Offer, bool) {
	for _, o := range town.Offers {
		if strings.EqualFold(o.Item, item) {
			return o, true
		}
	}
	return types.Offer{}, false
}

// Buy purchases n units of an NPC offer in the current town.
func Buy(s *types.State, defs *state.Defs, item string, n int) (types.Result, error) {
	town, ok := state.CurrentTown(s, defs)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no market here.")
	}
	if n <= 0 {
		n = 1
	}
	offer, ok := findOffer(town, item)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "No one in %s sells %s.", town.Name, item)
	}
	p := &s.Player
	unit := BuyPrice(offer.Price, state.TownLevel(s, town.Name))
	total := unit * n
	if p.Gold < total {
		return types.Result{}, state.Reject(state.ErrInsufficientGold, "%d %s cost %d gold; you have %d.", n, offer.Item, total, p.Gold)
	}
	if inventory.Room(p, offer.Item) < n {
		return types.Result{}, state.Reject(state.ErrInventoryFull, "You have no room for %d %s.", n, offer.Item)
	}

	p.Gold -= total
	inventory.Add(p, offer.Item, n)
	return types.Result{
		Output:  []string{fmt.Sprintf("You buy %d %s for %d gold.", n, offer.Item, total)},
		Events:  []types.Event{{Type: "item_bought", Data: map[string]any{"item": offer.Item, "quantity": n, "gold": total}}},
		Changed: true,
	}, nil
}

// Sell sells n units from the inventory in the current town.
func Sell(s *types.State, defs *state.Defs, now time.Time, item string, n int) (types.Result, error) {
	town, ok := state.CurrentTown(s, defs)
	if !ok {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no market here.")
	}
	if n <= 0 {
		n = 1
	}
	p := &s.Player
	if !inventory.Has(p, item, n) {
		return types.Result{}, state.Reject(state.ErrInsufficientItems, "You have %d %s.", inventory.Quantity(p, item), item)
	}
	if state.ItemValue(defs, item) <= 0 {
		return types.Result{}, state.Reject(state.ErrInvalid, "No one in %s wants %s.", town.Name, item)
	}

	total := SellPrice(s, defs, town, item, now) * n
	inventory.Remove(p, item, n)
	p.Gold += total
	p.Stats.ItemsSold += n
	res := types.Result{
		Output:  []string{fmt.Sprintf("You sell %d %s for %d gold.", n, item, total)},
		Events:  []types.Event{{Type: "item_sold", Data: map[string]any{"item": item, "quantity": n, "gold": total}}},
		Changed: true,
	}
	res.Events = append(res.Events, quests.Record(p, types.KindSell, item, n)...)
	if line, ok := recordSales(s, defs, town.Name, n, now); ok {
		res.Output = append(res.Output, line)
		res.Events = append(res.Events, types.Event{Type: "town_level_up", Data: map[string]any{"town": town.Name, "level": state.TownLevel(s, town.Name)}})
	}
	return res, nil
}

// recordSales counts sales toward the town's next level. Every
// SalesThreshold sales raise the base level by 1 up to MaxTownLevel; a
// running festival bonus rides on top of the base.
func recordSales(s *types.State, defs *state.Defs, town string, n int, now time.Time) (string, bool) {
	if s.World.Towns == nil {
		s.World.Towns = map[string]types.TownState{}
	}
	ts := s.World.Towns[town]
	if ts.Level <= 0 {
		ts.Level = 1
	}
	delta := 0.0
	if ev, ok := state.ActiveEvent(s, now); ok && ev.Town == town {
		delta = ev.TownLevelDelta
	}
	threshold := defs.Game.SalesThreshold
	ts.Sales += n
	raised := false
	for threshold > 0 && ts.Sales >= threshold {
		ts.Sales -= threshold
		base := ts.Level - delta
		if base < defs.Game.MaxTownLevel {
			ts.Level = math.Min(base+1, defs.Game.MaxTownLevel) + delta
			raised = true
		}
	}
	s.World.Towns[town] = ts
	if !raised {
		return "", false
	}
	return fmt.Sprintf("Trade is booming: %s is now level %g.", town, ts.Level), true
}

// Contribute moves gold into the guild treasury.
func Contribute(s *types.State, amount int) (types.Result, error) {
	p := &s.Player
	if amount <= 0 {
		return types.Result{}, state.Reject(state.ErrInvalid, "Contributions must be positive.")
	}
	if amount > p.Gold {
		return types.Result{}, state.Reject(state.ErrInsufficientGold, "You only have %d gold.", p.Gold)
	}
	p.Gold -= amount
	p.GuildContribution += amount
	return types.Result{
		Output:  []string{fmt.Sprintf("You contribute %d gold to the guild (%d total).", amount, p.GuildContribution)},
		Events:  []types.Event{{Type: "guild_contribution", Data: map[string]any{"gold": amount, "total": p.GuildContribution}}},
		Changed: true,
	}, nil
}

// Travel moves the player to another town.
func Travel(s *types.State, defs *state.Defs, town string) (types.Result, error) {
	if s.Combat != nil && s.Combat.Outcome == "" {
		return types.Result{}, state.Reject(state.ErrInCombat, "You cannot travel mid-fight.")
	}
	var dest types.Town
	found := false
	for _, name := range defs.TownOrder {
		if strings.EqualFold(name, town) {
			dest, found = defs.Towns[name], true
			break
		}
	}
	if !found {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no town called %s.", town)
	}
	if dest.Name == s.Player.Town {
		return types.Result{}, state.Reject(state.ErrInvalid, "You are already in %s.", dest.Name)
	}
	from := s.Player.Town
	s.Player.Town = dest.Name
	s.Combat = nil
	return types.Result{
		Output: []string{
			fmt.Sprintf("You travel from %s to %s.", from, dest.Name),
			fmt.Sprintf("Ingredients here: %s.", strings.Join(dest.Ingredients, ", ")),
		},
		Events:  []types.Event{{Type: "traveled", Data: map[string]any{"from": from, "to": dest.Name}}},
		Changed: true,
	}, nil
}
