package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validRecipeTypes = map[types.RecipeType]bool{
	types.RecipeSell:   true,
	types.RecipeHeal:   true,
	types.RecipeGather: true,
	types.RecipeEquip:  true,
	types.RecipeArmor:  true,
}

var validBuffs = map[string]bool{
	types.BuffRareChance: true,
	types.BuffCooldown:   true,
}

var validKinds = map[string]bool{
	types.KindGather: true,
	types.KindCraft:  true,
	types.KindDefeat: true,
	types.KindSell:   true,
}

var validEvents = map[string]bool{
	types.EventFestival: true,
	types.EventRaid:     true,
	types.EventStorm:    true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}
	errorf := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(format, args...))
	}

	if defs.Game.Title == "" {
		errorf("Game.title is required")
	}
	if len(defs.TownOrder) == 0 {
		errorf("at least one Town is required")
	}
	if start := defs.Game.StartTown; start != "" {
		if _, ok := defs.Towns[start]; !ok {
			errorf("start town %q not found in defined towns", start)
		}
	}

	for _, name := range defs.TownOrder {
		t := defs.Towns[name]
		if len(t.Ingredients) == 0 {
			errorf("town %q has no ingredients", name)
		}
		if t.GatherCooldownMinutes <= 0 {
			errorf("town %q: cooldown must be positive", name)
		}
		for _, r := range t.RareIngredients {
			if r.Name == "" || r.Chance <= 0 || r.Chance > 1 {
				errorf("town %q: rare ingredient %q needs a chance in (0, 1]", name, r.Name)
			}
		}
		for _, e := range t.Enemies {
			if _, ok := defs.Enemies[e]; !ok {
				errorf("town %q references undefined enemy %q", name, e)
			}
		}
		for _, o := range t.Offers {
			if o.Item == "" || o.Price <= 0 {
				errorf("town %q: offer %q needs a positive price", name, o.Item)
			}
		}
		for _, n := range t.NPCs {
			if n.Quest != nil {
				validateQuest(fmt.Sprintf("town %q npc %q quest", name, n.Name), *n.Quest, errorf)
			}
		}
	}

	for _, r := range defs.Recipes {
		if !validRecipeTypes[r.Type] {
			errorf("recipe %q: unknown type %q", r.Name, r.Type)
		}
		if len(r.Ingredients) == 0 {
			errorf("recipe %q has no ingredients", r.Name)
		}
		switch r.Type {
		case types.RecipeHeal:
			if r.HealPercent <= 0 {
				errorf("recipe %q: heal recipes need heal_percent", r.Name)
			}
		case types.RecipeGather:
			if !validBuffs[r.Effect] {
				errorf("recipe %q: unknown buff effect %q", r.Name, r.Effect)
			}
			if r.Duration <= 0 {
				errorf("recipe %q: buff duration must be positive", r.Name)
			}
		case types.RecipeEquip, types.RecipeArmor:
			if r.Bonus <= 0 {
				warnf("recipe %q grants no bonus", r.Name)
			}
		}
		if state.ItemValue(defs, r.Name) == 0 {
			warnf("recipe %q cannot be sold", r.Name)
		}
	}

	for name, e := range defs.Enemies {
		if e.Health <= 0 {
			errorf("enemy %q: health must be positive", name)
		}
		if e.Drop != "" && (e.DropChance <= 0 || e.DropChance > 1) {
			errorf("enemy %q: drop %q needs a chance in (0, 1]", name, e.Drop)
		}
	}

	for _, name := range defs.SkillOrder {
		if defs.Skills[name].Tree == "" {
			errorf("skill %q: tree is required", name)
		}
	}

	seen := map[string]bool{}
	for _, w := range defs.Weather {
		if seen[w.Name] {
			errorf("duplicate weather %q", w.Name)
		}
		seen[w.Name] = true
	}

	for _, ev := range defs.Events {
		if !validEvents[ev.Type] {
			errorf("unknown event type %q", ev.Type)
		}
		if ev.Duration <= 0 {
			errorf("event %q: duration must be positive", ev.Type)
		}
	}

	for _, tk := range defs.DailyTasks {
		validateQuest(fmt.Sprintf("daily task %q", tk.ID), tk.Quest, errorf)
	}
	for _, tk := range defs.WeeklyTasks {
		validateQuest(fmt.Sprintf("weekly task %q", tk.ID), tk.Quest, errorf)
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateQuest(where string, q types.Quest, errorf func(string, ...any)) {
	if q.ID == "" {
		errorf("%s: id is required", where)
	}
	if !validKinds[q.Kind] {
		errorf("%s: unknown kind %q", where, q.Kind)
	}
	if q.Target <= 0 {
		errorf("%s: target must be positive", where)
	}
}
