// Package combat runs the fight state machine:
// Idle -> InCombat -> {win, lose, fled} -> Idle.
package combat

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/nathoo/kaito/engine/craft"
	"github.com/nathoo/kaito/engine/inventory"
	"github.com/nathoo/kaito/engine/quests"
	"github.com/nathoo/kaito/engine/rng"
	"github.com/nathoo/kaito/engine/skills"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

const (
	// DamageCap limits the skill part of a hit.
	DamageCap = 50
	// WarriorBonus is added to every hit of a warrior.
	WarriorBonus = 5
	// AttackXP is granted for every accepted attack.
	AttackXP = 15
	// TraitWarrior is the trait tag for the damage bonus.
	TraitWarrior = "warrior"
)

// Scale snapshots an enemy for a player level and weather multiplier.
// XP stays at its base value; victory scales it by the level at that time.
func Scale(e types.Enemy, level int, weatherMod float64) types.Enemy {
	l := float64(level - 1)
	out := e
	out.Health = int(math.Round(float64(e.Health) * (1 + 0.15*l) * weatherMod))
	out.Damage = int(math.Round(float64(e.Damage) * (1 + 0.05*l) * weatherMod))
	out.Gold = int(math.Round(float64(e.Gold) * (1 + 0.15*l)))
	return out
}

// Damage computes the player's hit with a skill.
func Damage(p *types.Player, sk *types.Skill) int {
	d := sk.Base.Damage
	if sk.Base.DoubleStrike {
		d *= 2
	}
	d *= 1 + 0.05*float64(sk.Level-1)
	d = math.Min(d, DamageCap) + float64(p.Equipment.WeaponBonus)
	if p.Trait == TraitWarrior {
		d += WarriorBonus
	}
	return int(math.Round(d))
}

// Active reports whether a fight is in progress.
func Active(s *types.State) bool {
	return s.Combat != nil && s.Combat.Outcome == ""
}

// Start opens a session against the named enemy, or a random enemy of the
// current town when name is empty. Zero health does not block a fight.
func Start(s *types.State, defs *state.Defs, src rng.Source, name string) (types.Result, error) {
	if Active(s) {
		return types.Result{}, state.Reject(state.ErrInCombat, "You are already fighting the %s.", s.Combat.Enemy.Name)
	}
	town, _ := state.CurrentTown(s, defs)
	if name == "" {
		if len(town.Enemies) == 0 {
			return types.Result{}, state.Reject(state.ErrUnknown, "Nothing hostile roams around %s.", s.Player.Town)
		}
		name = town.Enemies[src.Intn(len(town.Enemies))]
	}
	base, ok := defs.Enemies[name]
	if !ok || (len(town.Enemies) > 0 && !contains(town.Enemies, name)) {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no %s around %s.", name, s.Player.Town)
	}

	p := &s.Player
	enemy := Scale(base, p.Level, state.CombatMultiplier(s, defs))
	intro := fmt.Sprintf("A %s appears! (%d HP, hits for %d)", enemy.Name, enemy.Health, enemy.Damage)
	s.Combat = &types.CombatSession{
		ID:           uuid.NewString(),
		PlayerHealth: p.Health,
		Enemy:        enemy,
		EnemyHealth:  enemy.Health,
		Log:          []string{intro},
	}
	return types.Result{
		Output:  []string{intro},
		Events:  []types.Event{{Type: "combat_started", Data: map[string]any{"id": s.Combat.ID, "enemy": enemy.Name}}},
		Changed: true,
	}, nil
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func skill(p *types.Player, name string) (*types.Skill, error) {
	if name == "" {
		name = state.BasicAttack
	}
	sk := skills.Find(p, name)
	if sk == nil {
		return nil, state.Reject(state.ErrUnknown, "You do not know %s.", name)
	}
	return sk, nil
}

// BeginAttack marks an attack in flight. While it is pending every other
// attack is rejected with ErrBusy.
func BeginAttack(s *types.State, skillName string) (types.Result, error) {
	if !Active(s) {
		return types.Result{}, state.Reject(state.ErrNotInCombat, "You are not fighting anything.")
	}
	if s.Combat.IsAttacking {
		return types.Result{}, state.Reject(state.ErrBusy, "Your last attack is still landing.")
	}
	sk, err := skill(&s.Player, skillName)
	if err != nil {
		return types.Result{}, err
	}
	s.Combat.IsAttacking = true
	return types.Result{Output: []string{fmt.Sprintf("You ready %s...", sk.Name)}}, nil
}

// ResolveAttack lands the pending attack and the enemy's reply.
func ResolveAttack(s *types.State, defs *state.Defs, src rng.Source, skillName string) (types.Result, error) {
	if !Active(s) {
		return types.Result{}, state.Reject(state.ErrNotInCombat, "You are not fighting anything.")
	}
	if !s.Combat.IsAttacking {
		return types.Result{}, state.Reject(state.ErrInvalid, "No attack is in flight.")
	}
	p := &s.Player
	sk, err := skill(p, skillName)
	if err != nil {
		s.Combat.IsAttacking = false
		return types.Result{}, err
	}
	c := s.Combat
	c.IsAttacking = false

	res := types.Result{Changed: true}
	logf := func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		c.Log = append(c.Log, line)
		res.Output = append(res.Output, line)
	}

	dmg := Damage(p, sk)
	c.EnemyHealth -= dmg
	if c.EnemyHealth < 0 {
		c.EnemyHealth = 0
	}
	logf("Your %s hits the %s for %d. (%d/%d)", sk.Name, c.Enemy.Name, dmg, c.EnemyHealth, c.Enemy.Health)

	if skills.Use(sk) {
		res.Events = append(res.Events, skills.LevelUpEvents(p, []string{sk.Name})...)
	}
	if state.GrantXP(p, AttackXP) {
		res.Events = append(res.Events, types.Event{Type: "level_up", Data: map[string]any{"level": p.Level}})
		logf("You reached level %d!", p.Level)
	}

	if c.EnemyHealth <= 0 {
		victory(s, src, &res, logf)
		return res, nil
	}

	if rng.Chance(src, sk.Effect.StunChance) {
		logf("The %s is stunned and cannot strike back!", c.Enemy.Name)
		return res, nil
	}

	counter := c.Enemy.Damage - p.Equipment.ArmorBonus
	if counter < 0 {
		counter = 0
	}
	c.PlayerHealth -= counter
	if c.PlayerHealth < 0 {
		c.PlayerHealth = 0
	}
	p.Health = c.PlayerHealth
	state.ClampHealth(p)
	logf("The %s hits you for %d. (%d/%d)", c.Enemy.Name, counter, p.Health, p.MaxHealth)

	if c.PlayerHealth <= 0 {
		c.Outcome = types.OutcomeLose
		p.Health = 0
		logf("You collapse. The %s wins this time.", c.Enemy.Name)
		res.Events = append(res.Events, types.Event{Type: "combat_ended", Data: map[string]any{"id": c.ID, "outcome": c.Outcome}})
	}
	return res, nil
}

// Attack is BeginAttack followed immediately by ResolveAttack.
func Attack(s *types.State, defs *state.Defs, src rng.Source, skillName string) (types.Result, error) {
	if _, err := BeginAttack(s, skillName); err != nil {
		return types.Result{}, err
	}
	return ResolveAttack(s, defs, src, skillName)
}

func victory(s *types.State, src rng.Source, res *types.Result, logf func(string, ...any)) {
	p := &s.Player
	c := s.Combat
	e := c.Enemy
	c.Outcome = types.OutcomeWin
	logf("The %s is defeated!", e.Name)

	if e.Drop != "" {
		chance := e.DropChance * (1 + skills.Passive(p).RareChance)
		leveled := skills.UsePassive(p, skills.RareChance)
		res.Events = append(res.Events, skills.LevelUpEvents(p, leveled)...)
		if rng.Chance(src, chance) {
			if inventory.Add(p, e.Drop, 1) == 1 {
				logf("It drops a %s.", e.Drop)
				res.Events = append(res.Events, types.Event{Type: "loot_dropped", Data: map[string]any{"item": e.Drop}})
			} else {
				logf("It drops a %s, but your bag is full.", e.Drop)
			}
		}
	}

	xp := e.XP + 2*(p.Level-1)
	p.Gold += e.Gold
	logf("  +%d gold, +%d XP", e.Gold, xp)
	if state.GrantXP(p, xp) {
		res.Events = append(res.Events, types.Event{Type: "level_up", Data: map[string]any{"level": p.Level}})
		logf("You reached level %d!", p.Level)
	}
	p.Stats.EnemiesDefeated++
	res.Events = append(res.Events, quests.Record(p, types.KindDefeat, e.Name, 1)...)
	res.Events = append(res.Events, types.Event{Type: "combat_ended", Data: map[string]any{"id": c.ID, "outcome": c.Outcome, "enemy": e.Name}})
}

// CraftHeal brews a heal recipe mid-fight. Health is restored and the
// ingredients are consumed; no success roll applies.
func CraftHeal(s *types.State, defs *state.Defs, src rng.Source, selection []string) (types.Result, error) {
	if !Active(s) {
		return types.Result{}, state.Reject(state.ErrNotInCombat, "You are not fighting anything.")
	}
	if s.Combat.IsAttacking {
		return types.Result{}, state.Reject(state.ErrBusy, "Your last attack is still landing.")
	}
	p := &s.Player
	r, err := craft.Match(defs, p.Level, types.RecipeHeal, selection)
	if err != nil {
		return types.Result{}, err
	}
	if name, missing := inventory.Missing(p, r.Ingredients); missing {
		return types.Result{}, state.Reject(state.ErrInsufficientItems, "You are out of %s.", name)
	}

	craft.Consume(p, src, r.Ingredients)
	leveled := skills.UsePassive(p, skills.CostReduction)
	gained := craft.Heal(p, r)
	leveled = append(leveled, skills.UsePassive(p, skills.HealBonus)...)
	s.Combat.PlayerHealth = p.Health

	line := fmt.Sprintf("You brew a %s mid-fight and recover %d health. (%d/%d)", r.Name, gained, p.Health, p.MaxHealth)
	s.Combat.Log = append(s.Combat.Log, line)
	return types.Result{
		Output:  []string{line},
		Events:  skills.LevelUpEvents(p, leveled),
		Changed: true,
	}, nil
}

// Flee abandons an active fight without rewards.
func Flee(s *types.State) (types.Result, error) {
	if !Active(s) {
		return types.Result{}, state.Reject(state.ErrNotInCombat, "There is nothing to flee from.")
	}
	if s.Combat.IsAttacking {
		return types.Result{}, state.Reject(state.ErrBusy, "Your last attack is still landing.")
	}
	c := s.Combat
	c.Outcome = types.OutcomeFled
	s.Combat = nil
	return types.Result{
		Output:  []string{fmt.Sprintf("You flee from the %s.", c.Enemy.Name)},
		Events:  []types.Event{{Type: "combat_ended", Data: map[string]any{"id": c.ID, "outcome": c.Outcome}}},
		Changed: true,
	}, nil
}

// Leave discards a finished session.
func Leave(s *types.State) (types.Result, error) {
	if s.Combat == nil {
		return types.Result{}, state.Reject(state.ErrNotInCombat, "You are not in a fight.")
	}
	if Active(s) {
		return types.Result{}, state.Reject(state.ErrInCombat, "The %s blocks your way. Flee instead.", s.Combat.Enemy.Name)
	}
	s.Combat = nil
	return types.Result{Output: []string{"You leave the battlefield."}, Changed: true}, nil
}
