package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/kaito/engine"
	"github.com/nathoo/kaito/engine/combat"
	"github.com/nathoo/kaito/engine/state"
)

// statusLine holds the parts of the status bar.
type statusLine struct {
	left, right string
	fighting    bool
}

// statusFor reads the bar from the engine. Call it under the session lock.
func statusFor(e *engine.Engine, now time.Time) statusLine {
	s := e.State
	p := s.Player

	left := []string{fmt.Sprintf(" %s Lv%g", p.Town, state.TownLevel(s, p.Town))}
	if s.World.Weather != "" {
		left = append(left, s.World.Weather)
	}
	if ev, ok := state.ActiveEvent(s, now); ok {
		left = append(left, fmt.Sprintf("%s %s", ev.Type, ev.ExpiresAt.Sub(now).Round(time.Minute)))
	}

	st := statusLine{left: strings.Join(left, " | ")}
	if combat.Active(s) {
		st.fighting = true
		c := s.Combat
		st.left += fmt.Sprintf(" | vs %s %d/%d", c.Enemy.Name, c.EnemyHealth, c.Enemy.Health)
	}
	st.right = fmt.Sprintf("HP %d/%d  Gold %d  Lv %d  T:%d ", p.Health, p.MaxHealth, p.Gold, p.Level, s.TurnCount)
	return st
}

// render produces a full-width status bar. The right side shrinks to the
// essentials when the terminal is narrow.
func (st statusLine) render(width int) string {
	right := st.right
	if lipgloss.Width(st.left)+lipgloss.Width(right)+2 > width {
		if i := strings.Index(right, "  Lv"); i >= 0 {
			right = right[:i] + " "
		}
	}
	gap := max(width-lipgloss.Width(st.left)-lipgloss.Width(right), 0)
	bar := st.left + strings.Repeat(" ", gap) + right

	style := styleStatusBar
	if st.fighting {
		style = styleStatusCombat
	}
	return style.Width(width).Render(bar)
}
