// Package parser converts command strings into Actions.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"slices"
	"strconv"
	"strings"

	"github.com/nathoo/kaito/engine/resolve"
	"github.com/nathoo/kaito/types"
)

// Verbs is the canonical command set.
var Verbs = []string{
	"gather", "craft", "heal", "use", "equip",
	"fight", "attack", "flee", "leave",
	"buy", "sell", "market", "travel",
	"talk", "accept", "complete", "claim",
	"quests", "tasks", "skills", "learn",
	"inventory", "status", "weather", "contribute",
	"look", "help",
}

var verbAliases = map[string]string{
	// Gather
	"forage":  "gather",
	"collect": "gather",
	"harvest": "gather",

	// Craft
	"brew": "craft",
	"make": "craft",
	"cook": "craft",
	"mix":  "craft",

	// Potions and gear
	"drink": "use",
	"quaff": "use",
	"sip":   "use",
	"wield": "equip",
	"wear":  "equip",
	"don":   "equip",

	// Combat
	"battle":  "fight",
	"hunt":    "fight",
	"engage":  "fight",
	"hit":     "attack",
	"strike":  "attack",
	"a":       "attack",
	"run":     "flee",
	"escape":  "flee",
	"retreat": "flee",

	// Market and travel
	"purchase": "buy",
	"shop":     "market",
	"offers":   "market",
	"go":       "travel",
	"walk":     "travel",

	// NPCs and objectives
	"speak":   "talk",
	"chat":    "talk",
	"ask":     "talk",
	"greet":   "talk",
	"finish":  "complete",
	"turnin":  "complete",
	"journal": "quests",
	"q":       "quests",
	"daily":   "tasks",
	"train":   "learn",
	"unlock":  "learn",

	// Misc
	"i":      "inventory",
	"inv":    "inventory",
	"bag":    "inventory",
	"stats":  "status",
	"me":     "status",
	"sky":    "weather",
	"donate": "contribute",
	"guild":  "contribute",
	"l":      "look",
	"h":      "help",
	"?":      "help",
}

var recipeTypes = map[string]types.RecipeType{
	"sell":   types.RecipeSell,
	"heal":   types.RecipeHeal,
	"gather": types.RecipeGather,
	"buff":   types.RecipeGather,
	"equip":  types.RecipeEquip,
	"weapon": types.RecipeEquip,
	"armor":  types.RecipeArmor,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Action.
func Parse(input string) types.Action {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Action{}
	}

	words := strings.Fields(strings.ToLower(input))
	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}
	verb := words[0]
	rest := stripArticles(words[1:])

	act := types.Action{Verb: verb}
	switch verb {
	case "gather", "contribute", "buy", "sell":
		if n, ok := leadingCount(rest); ok {
			act.Count = n
			rest = rest[1:]
		}
		act.Args = list(rest)
	case "craft":
		if len(rest) > 0 {
			if t, ok := recipeTypes[strings.TrimSuffix(rest[0], ":")]; ok && len(rest) > 1 {
				act.Type = string(t)
				rest = rest[1:]
			}
		}
		act.Args = list(rest)
	case "heal":
		act.Args = list(rest)
	default:
		if len(rest) > 0 {
			act.Args = []string{strings.Join(rest, " ")}
		}
	}
	return act
}

// Known reports whether the verb is a canonical command.
func Known(verb string) bool {
	return slices.Contains(Verbs, verb)
}

// Suggest returns the closest canonical verb for an unknown one.
func Suggest(verb string) string {
	return resolve.Suggest(verb, Verbs)
}

// expandMultiWordVerbs handles "talk to", "turn in", "look around" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}
	switch words[0] {
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "turn", "hand":
		if words[1] == "in" {
			return append([]string{"complete"}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return []string{"look"}
		}
	case "travel", "go", "walk":
		if words[1] == "to" {
			return append([]string{"travel"}, words[2:]...)
		}
	case "run", "flee":
		if words[1] == "away" {
			return []string{"flee"}
		}
	case "use", "drink":
		if words[1] == "potion" && len(words) > 2 {
			return append([]string{"use"}, words[2:]...)
		}
	}
	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

func leadingCount(words []string) (int, bool) {
	if len(words) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(words[0], "x"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// list splits the words into a comma-separated name list. "and" and "+"
// also separate names.
func list(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	joined := strings.Join(words, " ")
	joined = strings.ReplaceAll(joined, "+", ",")
	joined = strings.ReplaceAll(joined, " and ", ",")
	var out []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
