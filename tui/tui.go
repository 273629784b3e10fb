package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/kaito/engine"
	"github.com/nathoo/kaito/engine/parser"
	"github.com/nathoo/kaito/engine/save"
	"github.com/nathoo/kaito/session"
	"github.com/nathoo/kaito/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the Kaito TUI.
type Model struct {
	session *session.Session
	sink    *Sink
	clock   func() time.Time
	// delay picks how long an attack takes to land.
	delay func() time.Duration

	viewport viewport.Model
	input    textinput.Model
	history  *History
	status   statusLine

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
	rejected bool     // true when the engine refused the command
}

// attackLandedMsg resolves an attack started by BeginAttack.
type attackLandedMsg struct {
	act types.Action
}

// refreshMsg redraws the status bar so clocks and world changes show.
type refreshMsg time.Time

const refreshEvery = time.Second

// attackDelay is the randomized animation time of one attack.
func attackDelay() time.Duration {
	return 400*time.Millisecond + rand.N(800*time.Millisecond)
}

// New creates a TUI model wired to the given session. sink may be nil.
func New(s *session.Session, sink *Sink) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	m := Model{
		session: s,
		sink:    sink,
		clock:   time.Now,
		delay:   attackDelay,
		input:   ti,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".kaito", "saves"),
	}
	m.refreshStatus()
	return m
}

// Run starts the Bubble Tea program and blocks until the player quits or
// ctx ends.
func Run(ctx context.Context, s *session.Session, sink *Sink) error {
	m := New(s, sink)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces intro text and first look.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput(), m.sink.wait(), refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		g := m.session.Defs().Game
		lines := []string{g.Title + " v" + g.Version, ""}
		if g.Author != "" {
			lines[0] += " by " + g.Author
		}
		if g.Intro != "" {
			lines = append(lines, g.Intro, "")
		}
		lines = append(lines, turnLines(m.session.Step("look"))...)
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-2, 1) // 1 status bar + 1 input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
		m.refreshStatus()

	case attackLandedMsg:
		turn := m.session.ResolveAttack(msg.act)
		m = m.appendTurn("", turn)
		return m, nil

	case noticeMsg:
		m = m.appendOutput(gameOutputMsg{lines: []string{noticeLine(types.Notification(msg))}})
		return m, m.sink.wait()

	case refreshMsg:
		m.refreshStatus()
		return m, refresh()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Attacks land after a short delay; the engine refuses another attack
	// while one is in flight.
	if act := parser.Parse(input); act.Verb == "attack" {
		turn := m.session.BeginAttack(act)
		m = m.appendTurn(input, turn)
		if turn.Rejected {
			return m, nil
		}
		return m, tea.Tick(m.delay(), func(time.Time) tea.Msg { return attackLandedMsg{act: act} })
	}

	m = m.appendTurn(input, m.session.Step(input))
	return m, nil
}

func (m Model) appendTurn(input string, turn session.Turn) Model {
	lines := turnLines(turn)
	if m.trace {
		lines = append(lines, formatTrace(turn.Result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: lines, rejected: turn.Rejected})
	m.refreshStatus()
	return m
}

func turnLines(t session.Turn) []string {
	lines := append([]string(nil), t.Output...)
	for _, n := range t.Notes {
		lines = append(lines, noticeLine(n))
	}
	return lines
}

func noticeLine(n types.Notification) string {
	return fmt.Sprintf("* %s: %s", n.Title, n.Body)
}

func (m *Model) refreshStatus() {
	now := m.clock()
	m.session.View(func(e *engine.Engine) {
		m.status = statusFor(e, now)
	})
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		switch {
		case msg.isSystem:
		case msg.rejected:
			rl.kind = kindError
		default:
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Leading indentation is kept on the first line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			lineLen = 0
		default:
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.status.render(m.width) + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.cmdSave(arg), false
	case "/load":
		return m.cmdLoad(arg), false
	case "/top":
		return m.cmdTop(), false
	case "/help":
		return m.cmdHelp(), false
	case "/state":
		return m.cmdState(), false
	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	rec, err := m.session.Snapshot()
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	data, err := save.Encode(rec)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.WriteFile(filepath.Join(m.saveDir, name+".json"), data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.session.Save(ctx); err != nil {
		return []string{fmt.Sprintf("Saved to %s, but the player store is unavailable: %v", name, err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	data, err := os.ReadFile(filepath.Join(m.saveDir, name+".json"))
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	rec, err := save.Decode(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if err := m.session.Restore(rec); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.refreshStatus()
	output := []string{fmt.Sprintf("Game loaded from %s (turn %d).", name, rec.Turn)}
	return append(output, m.session.Step("look").Output...)
}

func (m *Model) cmdTop() []string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	boards, err := m.session.Top(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Leaderboard unavailable: %v", err)}
	}
	out := []string{"Top adventurers by level:"}
	for _, r := range boards.ByLevel {
		out = append(out, fmt.Sprintf("  %2d. %s, level %d", r.Rank, orWallet(r.LeaderboardEntry), r.Level))
	}
	out = append(out, "Top adventurers by reward:")
	for _, r := range boards.ByReward {
		out = append(out, fmt.Sprintf("  %2d. %s, %.1f", r.Rank, orWallet(r.LeaderboardEntry), r.Score))
	}
	return out
}

func orWallet(e types.LeaderboardEntry) string {
	if e.Name == "" {
		return e.WalletAddress
	}
	return e.Name
}

func (m *Model) cmdHelp() []string {
	out := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /top          Show the leaderboards",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Game commands:",
	}
	out = append(out, m.session.Step("help").Output...)
	return append(out,
		"  again (g)                repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	)
}

func (m *Model) cmdState() []string {
	var out []string
	m.session.View(func(e *engine.Engine) {
		s := e.State
		p := s.Player
		out = []string{
			fmt.Sprintf("Turn: %d  RNG: %d/%d", s.TurnCount, s.RNGSeed, e.RNG.Position()),
			fmt.Sprintf("Town: %s  Weather: %s", p.Town, s.World.Weather),
			fmt.Sprintf("Inventory: %v", p.Inventory),
		}
		if len(p.Buffs) > 0 {
			out = append(out, fmt.Sprintf("Buffs: %v", p.Buffs))
		}
		if s.Combat != nil {
			out = append(out, fmt.Sprintf("Combat: %s %d hp, attacking=%v", s.Combat.Enemy.Name, s.Combat.EnemyHealth, s.Combat.IsAttacking))
		}
	})
	return out
}

func formatTrace(result types.Result) []string {
	lines := []string{fmt.Sprintf("[trace] changed=%v rejected=%v", result.Changed, result.Rejected)}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
