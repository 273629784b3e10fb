package engine

import (
	"github.com/nathoo/kaito/engine/combat"
	"github.com/nathoo/kaito/engine/resolve"
	"github.com/nathoo/kaito/types"
)

// combatVerbs are the commands allowed while a fight is on.
var combatVerbs = map[string]bool{
	"attack": true, "heal": true, "use": true, "flee": true,
	"status": true, "inventory": true, "skills": true, "help": true,
}

func isCombatVerb(verb string) bool {
	return combatVerbs[verb]
}

// skillArg resolves the attack's skill argument against the skills the
// player holds. No argument means the basic attack.
func (e *Engine) skillArg(act types.Action) (string, error) {
	if len(act.Args) == 0 {
		return "", nil
	}
	held := make([]string, 0, len(e.State.Player.Skills))
	for _, sk := range e.State.Player.Skills {
		held = append(held, sk.Name)
	}
	return resolve.Name(act.Args[0], held)
}

// BeginAttack puts an attack in flight. Hosts with an animation delay call
// BeginAttack, wait, then ResolveAttack with the same action.
func (e *Engine) BeginAttack(act types.Action) types.Result {
	defer e.endTurn()
	sk, err := e.skillArg(act)
	if err != nil {
		return reject(err)
	}
	res, err := combat.BeginAttack(e.State, sk)
	if err != nil {
		return reject(err)
	}
	return res
}

// ResolveAttack lands the attack started by BeginAttack.
func (e *Engine) ResolveAttack(act types.Action) types.Result {
	defer func() { e.State.RNGPosition = e.RNG.Position() }()
	sk, err := e.skillArg(act)
	if err != nil {
		return reject(err)
	}
	res, err := combat.ResolveAttack(e.State, e.Defs, e.RNG, sk)
	if err != nil {
		return reject(err)
	}
	return res
}

// Attacking reports whether an attack is waiting to resolve.
func (e *Engine) Attacking() bool {
	return combat.Active(e.State) && e.State.Combat.IsAttacking
}
