// Package cli provides the plain terminal host: line input, output
// formatting, and meta-command dispatch.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/kaito/engine"
	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/session"
	"github.com/nathoo/kaito/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given session.
func New(s *session.Session) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".kaito", "saves"),
	}
}

// Run starts the game loop: intro, a look around, then prompt, input,
// dispatch and output until input ends or /quit. Pending progress is
// saved on exit.
func (c *CLI) Run(ctx context.Context) {
	if intro := c.Session.Defs().Game.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	c.printTurn(c.Session.Step("look"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				break
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		turn := c.Session.Step(input)
		c.printTurn(turn)
		if c.Trace {
			c.printTrace(turn.Result)
		}
	}

	if err := c.Session.Save(ctx); err != nil {
		c.printSystem(fmt.Sprintf("Could not save progress: %v", err))
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(ctx, arg)
	case "/load":
		c.cmdLoad(arg)
	case "/top":
		c.cmdTop(ctx)
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}
	rec, err := c.Session.Snapshot()
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	data, err := save.Encode(rec)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.WriteFile(filepath.Join(c.SaveDir, name+".json"), data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Session.Save(ctx); err != nil {
		c.printSystem(fmt.Sprintf("Saved to %s, but the player store is unavailable: %v", name, err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}
	data, err := os.ReadFile(filepath.Join(c.SaveDir, name+".json"))
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	rec, err := save.Decode(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Session.Restore(rec); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", name, rec.Turn))
	c.printTurn(c.Session.Step("look"))
}

func (c *CLI) cmdTop(ctx context.Context) {
	boards, err := c.Session.Top(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Leaderboard unavailable: %v", err))
		return
	}
	c.printLine("Top adventurers by level:")
	for _, r := range boards.ByLevel {
		c.printLine(fmt.Sprintf("  %2d. %-16s level %d  (%d xp)", r.Rank, displayName(r.LeaderboardEntry), r.Level, r.XP))
	}
	c.printLine("Top adventurers by reward:")
	for _, r := range boards.ByReward {
		c.printLine(fmt.Sprintf("  %2d. %-16s %.1f  (%d gold, %d xp)", r.Rank, displayName(r.LeaderboardEntry), r.Score, r.Gold, r.XP))
	}
}

func displayName(e types.LeaderboardEntry) string {
	if e.Name != "" {
		return e.Name
	}
	return e.WalletAddress
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /top          Show the leaderboards",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"  again (g)     Repeat your last command",
		"",
	}
	for _, line := range help {
		c.printLine(line)
	}
	c.printTurn(c.Session.Step("help"))
}

func (c *CLI) cmdState() {
	c.Session.View(func(e *engine.Engine) {
		s := e.State
		p := s.Player
		c.printSystem(fmt.Sprintf("Turn: %d  Seed: %d  RNG: %d", s.TurnCount, s.RNGSeed, e.RNG.Position()))
		c.printSystem(fmt.Sprintf("Player: %s (%s) level %d, %d xp, %d gold, %d/%d hp",
			p.Name, p.WalletAddress, p.Level, p.XP, p.Gold, p.Health, p.MaxHealth))
		c.printSystem(fmt.Sprintf("Town: %s (level %.1f)  Weather: %s", p.Town, state.TownLevel(s, p.Town), s.World.Weather))
		if ev := s.World.Event; ev != nil {
			c.printSystem(fmt.Sprintf("Event: %s until %s", ev.Type, ev.ExpiresAt.Format("15:04")))
		}
		c.printSystem(fmt.Sprintf("Inventory: %v", p.Inventory))
		if len(p.Buffs) > 0 {
			c.printSystem(fmt.Sprintf("Buffs: %v", p.Buffs))
		}
		if s.Combat != nil {
			c.printSystem(fmt.Sprintf("Combat: %s %d hp, outcome %q", s.Combat.Enemy.Name, s.Combat.EnemyHealth, s.Combat.Outcome))
		}
	})
}

func (c *CLI) printTrace(result types.Result) {
	c.printSystem(fmt.Sprintf("[trace] changed=%v rejected=%v", result.Changed, result.Rejected))
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func (c *CLI) printTurn(t session.Turn) {
	for _, line := range t.Output {
		c.printLine(line)
	}
	for _, n := range t.Notes {
		c.printLine(fmt.Sprintf("* %s: %s", n.Title, n.Body))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
