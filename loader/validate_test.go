package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:     "Test",
			StartTown: "Riverside",
		},
		TownOrder: []string{"Riverside"},
		Towns: map[string]types.Town{
			"Riverside": {
				Name:                  "Riverside",
				Ingredients:           []string{"Water"},
				GatherCooldownMinutes: 5,
				Enemies:               []string{"Goblin"},
			},
		},
		Enemies: map[string]types.Enemy{
			"Goblin": {Name: "Goblin", Health: 50, Damage: 8},
		},
		Skills:     map[string]types.SkillDef{},
		ItemValues: map[string]int{},
	}
}

func assertContains(t *testing.T, list []string, substr string) {
	t.Helper()
	for _, s := range list {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected an entry containing %q, got %v", substr, list)
}

func validationErrors(t *testing.T, defs *state.Defs) []string {
	t.Helper()
	err := validate(defs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

func TestValidate_ValidDefs(t *testing.T) {
	if err := validate(validDefs()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_EmptyTitle(t *testing.T) {
	defs := validDefs()
	defs.Game.Title = ""
	assertContains(t, validationErrors(t, defs), "title")
}

func TestValidate_MissingStartTown(t *testing.T) {
	defs := validDefs()
	defs.Game.StartTown = "Atlantis"
	assertContains(t, validationErrors(t, defs), "start town")
}

func TestValidate_TownProblems(t *testing.T) {
	defs := validDefs()
	town := defs.Towns["Riverside"]
	town.Enemies = []string{"Dragon"}
	town.RareIngredients = []types.RareIngredient{{Name: "Moonflower", Chance: 1.5}}
	town.Offers = []types.Offer{{Item: "Water", Price: 0}}
	town.GatherCooldownMinutes = 0
	defs.Towns["Riverside"] = town

	errs := validationErrors(t, defs)
	assertContains(t, errs, "undefined enemy")
	assertContains(t, errs, "Moonflower")
	assertContains(t, errs, "positive price")
	assertContains(t, errs, "cooldown")
}

func TestValidate_Recipes(t *testing.T) {
	defs := validDefs()
	defs.Recipes = []types.Recipe{
		{Name: "Odd", Ingredients: []string{"Water"}, Type: "potion"},
		{Name: "Empty", Type: types.RecipeSell, BaseGold: 1},
		{Name: "Bad Buff", Ingredients: []string{"Water"}, Type: types.RecipeGather, Effect: "speed"},
		{Name: "Weak Heal", Ingredients: []string{"Water"}, Type: types.RecipeHeal},
	}

	errs := validationErrors(t, defs)
	assertContains(t, errs, `unknown type "potion"`)
	assertContains(t, errs, `"Empty" has no ingredients`)
	assertContains(t, errs, `unknown buff effect "speed"`)
	assertContains(t, errs, "buff duration")
	assertContains(t, errs, "heal_percent")
}

func TestValidate_EventsAndTasks(t *testing.T) {
	defs := validDefs()
	defs.Events = []types.EventDef{{Type: "eclipse", Duration: time.Minute}, {Type: types.EventStorm}}
	defs.DailyTasks = []types.Task{{Quest: types.Quest{ID: "d", Kind: "dance", Target: 0}}}

	errs := validationErrors(t, defs)
	assertContains(t, errs, `unknown event type "eclipse"`)
	assertContains(t, errs, `event "storm": duration`)
	assertContains(t, errs, `unknown kind "dance"`)
	assertContains(t, errs, "target must be positive")
}

func TestValidate_DuplicateWeather(t *testing.T) {
	defs := validDefs()
	defs.Weather = []types.Weather{{Name: "sunny"}, {Name: "sunny"}}
	assertContains(t, validationErrors(t, defs), "duplicate weather")
}

func TestValidate_SkillNeedsTree(t *testing.T) {
	defs := validDefs()
	defs.SkillOrder = []string{"Mystery"}
	defs.Skills["Mystery"] = types.SkillDef{Name: "Mystery"}
	assertContains(t, validationErrors(t, defs), "tree is required")
}
