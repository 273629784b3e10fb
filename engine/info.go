package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/kaito/engine/economy"
	"github.com/nathoo/kaito/engine/gather"
	"github.com/nathoo/kaito/engine/skills"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

func info(lines ...string) types.Result {
	return types.Result{Output: lines}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func (e *Engine) inventory() types.Result {
	p := &e.State.Player
	if len(p.Inventory) == 0 {
		return info(fmt.Sprintf("Your bag is empty. (0/%d slots)", p.InventorySlots))
	}
	parts := make([]string, 0, len(p.Inventory))
	for _, it := range p.Inventory {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	out := []string{
		fmt.Sprintf("You are carrying (%d/%d slots): %s.", len(p.Inventory), p.InventorySlots, joinNames(parts)),
	}
	if len(p.RareItems) > 0 {
		out = append(out, fmt.Sprintf("Rare finds: %d.", len(p.RareItems)))
	}
	return info(out...)
}

func (e *Engine) status() types.Result {
	p := &e.State.Player
	out := []string{
		fmt.Sprintf("%s, level %d (%d XP, %d to next)", p.Name, p.Level, p.XP, p.Level*state.XPPerLevel-p.XP),
		fmt.Sprintf("HP %d/%d  Gold %d  Town %s", p.Health, p.MaxHealth, p.Gold, p.Town),
	}
	if p.Trait != "" {
		out = append(out, "Trait: "+p.Trait)
	}
	if eq := p.Equipment; eq.Weapon != "" || eq.Armor != "" {
		out = append(out, fmt.Sprintf("Weapon: %s (+%d)  Armor: %s (+%d)",
			orNone(eq.Weapon), eq.WeaponBonus, orNone(eq.Armor), eq.ArmorBonus))
	}
	if p.GuildContribution > 0 {
		out = append(out, fmt.Sprintf("Guild contribution: %d gold", p.GuildContribution))
	}
	if c := e.State.Combat; c != nil && c.Outcome == "" {
		out = append(out, fmt.Sprintf("Fighting %s (%d/%d HP)", c.Enemy.Name, c.EnemyHealth, c.Enemy.Health))
	}
	st := p.Stats
	out = append(out, fmt.Sprintf("Gathers %d  Crafted %d  Defeated %d  Sold %d",
		st.Gathers, st.PotionsCrafted, st.EnemiesDefeated, st.ItemsSold))
	return info(out...)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func progressLine(q types.Quest, done bool) string {
	mark := " "
	switch {
	case done:
		mark = "x"
	case q.Progress >= q.Target:
		mark = "!"
	}
	return fmt.Sprintf("  [%s] %s: %s (%d/%d) +%dg +%dxp",
		mark, q.ID, q.Description, q.Progress, q.Target, q.Reward.Gold, q.Reward.XP)
}

func (e *Engine) questList() types.Result {
	p := &e.State.Player
	if len(p.Quests) == 0 {
		return info("You have no quests. Talk to the townsfolk.")
	}
	out := []string{fmt.Sprintf("Quests (%d/3):", len(p.Quests))}
	for _, q := range p.Quests {
		out = append(out, progressLine(q, false))
	}
	return info(out...)
}

func (e *Engine) taskList() types.Result {
	p := &e.State.Player
	out := []string{"Daily tasks:"}
	for _, t := range p.DailyTasks {
		out = append(out, progressLine(t.Quest, t.Completed))
	}
	out = append(out, "Weekly tasks:")
	for _, t := range p.WeeklyTasks {
		out = append(out, progressLine(t.Quest, t.Completed))
	}
	return info(out...)
}

func (e *Engine) skillList() types.Result {
	p := &e.State.Player
	out := []string{"Your skills:"}
	for _, sk := range p.Skills {
		out = append(out, fmt.Sprintf("  %s (%s) level %d, %d uses", sk.Name, sk.Tree, sk.Level, sk.Uses))
	}
	var learnable []string
	for _, name := range e.Defs.SkillOrder {
		if skills.Find(p, name) != nil {
			continue
		}
		def := e.Defs.Skills[name]
		learnable = append(learnable, fmt.Sprintf("  %s (%s) %d gold", def.Name, def.Tree, def.Cost))
	}
	if len(learnable) > 0 {
		out = append(out, "Learnable:")
		out = append(out, learnable...)
	}
	return info(out...)
}

func (e *Engine) weather(now time.Time) types.Result {
	out := []string{"The sky is " + e.State.World.Weather + "."}
	if ev, ok := state.ActiveEvent(e.State, now); ok {
		out = append(out, fmt.Sprintf("%s (%s left)", ev.Description, ev.ExpiresAt.Sub(now).Round(time.Second)))
	}
	return info(out...)
}

func (e *Engine) look(now time.Time) types.Result {
	s := e.State
	town, ok := state.CurrentTown(s, e.Defs)
	if !ok {
		return info("You are somewhere unknown.")
	}
	out := []string{
		fmt.Sprintf("%s (level %g). The sky is %s.", town.Name, state.TownLevel(s, town.Name), s.World.Weather),
		"Ingredients: " + joinNames(town.Ingredients) + ".",
	}
	if rem := gather.Remaining(&s.Player, town, now); rem > 0 {
		out = append(out, fmt.Sprintf("You can gather again in %s.", rem.Round(time.Second)))
	} else {
		out = append(out, "You can gather here.")
	}
	if len(town.NPCs) > 0 {
		names := make([]string, 0, len(town.NPCs))
		for _, n := range town.NPCs {
			names = append(names, n.Name)
		}
		out = append(out, "People: "+joinNames(names)+".")
	}
	if len(town.Enemies) > 0 {
		out = append(out, "Roaming: "+joinNames(town.Enemies)+".")
	}
	if ev, ok := state.ActiveEvent(s, now); ok {
		out = append(out, ev.Description)
	}
	return info(out...)
}

func (e *Engine) market(now time.Time) types.Result {
	s := e.State
	town, ok := state.CurrentTown(s, e.Defs)
	if !ok {
		return info("There is no market here.")
	}
	level := state.TownLevel(s, town.Name)
	out := []string{fmt.Sprintf("%s market (town level %g):", town.Name, level)}
	for _, o := range town.Offers {
		out = append(out, fmt.Sprintf("  buy  %s: %d gold", o.Item, economy.BuyPrice(o.Price, level)))
	}
	for _, it := range s.Player.Inventory {
		if price := economy.SellPrice(s, e.Defs, town, it.Name, now); price > 0 {
			out = append(out, fmt.Sprintf("  sell %s: %d gold", it.Name, price))
		}
	}
	return info(out...)
}

func help() types.Result {
	return info(
		"gather [n]               gather here, or pay n gold for a batch",
		"craft [type] a, b        craft from ingredients (types: sell, heal, gather, equip, armor)",
		"use <potion>             drink a potion    equip <item>  wear crafted gear",
		"fight [enemy]            start a fight     attack [skill], heal a, b, flee, leave",
		"buy [n] <item>           buy from NPCs     sell [n] <item>, market",
		"travel <town>            move on           look, weather, status, inventory",
		"talk <npc>, accept <npc> quests          complete <id>, quests, tasks",
		"skills, learn <skill>    contribute <n>    help",
	)
}
