// Package resolve maps player-typed names onto canonical definition names.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// AmbiguityError indicates multiple names matched a query.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("Which %s? (%s)", e.Name, names)
}

func (e *AmbiguityError) Unwrap() error { return state.ErrInvalid }

// NotFoundError indicates no name matched a query.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("There is no %q here. Did you mean %q?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("There is no %q here.", e.Name)
}

func (e *NotFoundError) Unwrap() error { return state.ErrUnknown }

// Limit is the edit distance tolerated for a name of the given length.
func Limit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Name resolves query against candidates: exact (case-insensitive) first,
// then a whole-word or prefix match, then the single closest name within
// the edit distance limit.
func Name(query string, candidates []string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", &NotFoundError{Name: query}
	}
	for _, c := range candidates {
		if strings.ToLower(c) == q {
			return c, nil
		}
	}

	var partial []string
	for _, c := range candidates {
		if matchesPartial(strings.ToLower(c), q) && !slices.Contains(partial, c) {
			partial = append(partial, c)
		}
	}
	switch len(partial) {
	case 1:
		return partial[0], nil
	case 0:
	default:
		return "", &AmbiguityError{Name: query, Candidates: partial}
	}

	best, ok := closest(q, candidates)
	if ok && len(q) >= 3 {
		return best, nil
	}
	return "", &NotFoundError{Name: query, Suggestion: best}
}

// Suggest returns the closest candidate within the edit distance limit.
func Suggest(query string, candidates []string) string {
	best, _ := closest(strings.ToLower(query), candidates)
	return best
}

// closest returns the nearest candidate and whether it is the only one at
// that distance.
func closest(q string, candidates []string) (string, bool) {
	best, bestDist, ties := "", -1, 0
	for _, c := range candidates {
		lc := strings.ToLower(c)
		dist := levenshtein.ComputeDistance(q, lc)
		if dist > Limit(len(lc)) {
			continue
		}
		switch {
		case bestDist < 0 || dist < bestDist:
			best, bestDist, ties = c, dist, 1
		case dist == bestDist && c != best:
			ties++
		}
	}
	return best, best != "" && ties == 1
}

// matchesPartial checks whether the query is one of the name's words or a
// prefix of the name with at least two characters.
func matchesPartial(name, q string) bool {
	for _, word := range strings.Fields(name) {
		if word == q {
			return true
		}
	}
	return len(q) >= 2 && strings.HasPrefix(name, q)
}

// Held lists the names in the player's inventory.
func Held(s *types.State) []string {
	out := make([]string, 0, len(s.Player.Inventory))
	for _, it := range s.Player.Inventory {
		out = append(out, it.Name)
	}
	return out
}

// Items lists every item name the world knows about, held items first.
func Items(s *types.State, defs *state.Defs) []string {
	out := Held(s)
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	for _, r := range defs.Recipes {
		add(r.Name)
		add(r.Ingredients...)
	}
	for _, name := range defs.TownOrder {
		t := defs.Towns[name]
		add(t.Ingredients...)
		for _, r := range t.RareIngredients {
			add(r.Name)
		}
		for _, o := range t.Offers {
			add(o.Item)
		}
	}
	for _, name := range sortedKeys(defs.Enemies) {
		add(defs.Enemies[name].Drop)
	}
	for _, name := range sortedKeys(defs.ItemValues) {
		add(name)
	}
	return out
}

// Skills lists the skill names of the definitions in tree order.
func Skills(defs *state.Defs) []string {
	return slices.Clone(defs.SkillOrder)
}

// Enemies lists the enemies of the current town.
func Enemies(s *types.State, defs *state.Defs) []string {
	t, _ := state.CurrentTown(s, defs)
	return slices.Clone(t.Enemies)
}

// NPCs lists the NPC names of the current town.
func NPCs(s *types.State, defs *state.Defs) []string {
	t, _ := state.CurrentTown(s, defs)
	out := make([]string, 0, len(t.NPCs))
	for _, n := range t.NPCs {
		out = append(out, n.Name)
	}
	return out
}

// Towns lists every town in definition order.
func Towns(defs *state.Defs) []string {
	return slices.Clone(defs.TownOrder)
}

// Objectives lists the IDs of held quests and tasks.
func Objectives(s *types.State) []string {
	var out []string
	for _, q := range s.Player.Quests {
		out = append(out, q.ID)
	}
	for _, t := range s.Player.DailyTasks {
		out = append(out, t.ID)
	}
	for _, t := range s.Player.WeeklyTasks {
		out = append(out, t.ID)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
