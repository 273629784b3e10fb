package state

import (
	"errors"
	"fmt"
)

// Rejection kinds. Match with errors.Is.
var (
	ErrCooldown          = errors.New("cooldown active")
	ErrInsufficientGold  = errors.New("insufficient gold")
	ErrInsufficientItems = errors.New("insufficient ingredients")
	ErrNoRecipe          = errors.New("no matching recipe")
	ErrUnknown           = errors.New("unknown reference")
	ErrQuestLimit        = errors.New("quest slots full")
	ErrInventoryFull     = errors.New("inventory full")
	ErrBusy              = errors.New("action in flight")
	ErrNotInCombat       = errors.New("not in combat")
	ErrInCombat          = errors.New("in combat")
	ErrAlreadyUnlocked   = errors.New("already unlocked")
	ErrNotCompletable    = errors.New("not completable")
	ErrInvalid           = errors.New("invalid action")
)

// Rejection is a validation failure. State is left untouched.
type Rejection struct {
	Kind error
	Msg  string
}

func (r *Rejection) Error() string { return r.Msg }

func (r *Rejection) Unwrap() error { return r.Kind }

// Reject builds a Rejection with a formatted player-facing message.
func Reject(kind error, format string, args ...any) error {
	return &Rejection{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a validation rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
