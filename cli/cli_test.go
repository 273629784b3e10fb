package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nathoo/kaito/engine"
	"github.com/nathoo/kaito/engine/enginetest"
	"github.com/nathoo/kaito/session"
	"github.com/nathoo/kaito/store/memory"
)

func newTestSession(t *testing.T, st *memory.Store) *session.Session {
	t.Helper()
	defs := enginetest.Defs()
	defs.Game.Intro = "Welcome to the test."
	s, err := session.Open(context.Background(), defs, st, session.Options{
		Wallet: "0xtest",
		Name:   "Kaito",
		Seed:   7,
		Clock:  func() time.Time { return enginetest.T0 },
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Session: newTestSession(t, memory.New()),
		In:      strings.NewReader(input),
		Out:     &out,
		SaveDir: t.TempDir(),
	}
	return c, &out
}

func TestCLI_IntroAndStartingTown(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Welcome to the test.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "Riverside (level 1)") {
		t.Error("expected starting town description in output")
	}
}

func TestCLI_BasicGameplay(t *testing.T) {
	c, out := newTestCLI(t, "gather\nstatus\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "HP 100/100") {
		t.Errorf("expected status line, got:\n%s", output)
	}
}

func TestCLI_Travel(t *testing.T) {
	c, out := newTestCLI(t, "travel emberfall\nlook\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Emberfall (level 1)") {
		t.Error("expected Emberfall description after travelling")
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{"/save", "/load", "/top", "/quit", "gather [n]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Travel and save.
	var out bytes.Buffer
	c := &CLI{
		Session: newTestSession(t, memory.New()),
		In:      strings.NewReader("travel emberfall\n/save test\n/quit\n"),
		Out:     &out,
		SaveDir: dir,
	}
	c.Run(ctx)
	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Errorf("expected save confirmation, got:\n%s", out.String())
	}

	// Start fresh in another store and load.
	var out2 bytes.Buffer
	c2 := &CLI{
		Session: newTestSession(t, memory.New()),
		In:      strings.NewReader("/load test\n/quit\n"),
		Out:     &out2,
		SaveDir: dir,
	}
	c2.Run(ctx)

	loadOutput := out2.String()
	if !strings.Contains(loadOutput, "Game loaded from test") {
		t.Error("expected load confirmation")
	}
	if !strings.Contains(loadOutput, "Emberfall (level 1)") {
		t.Error("expected Emberfall description after loading save")
	}
}

func TestCLI_LoadMissing(t *testing.T) {
	c, out := newTestCLI(t, "/load nothing\n/quit\n")
	c.Run(context.Background())
	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_SavesToStoreOnExit(t *testing.T) {
	st := memory.New()
	c := &CLI{
		Session: newTestSession(t, st),
		In:      strings.NewReader("gather\n"),
		Out:     io.Discard,
		SaveDir: t.TempDir(),
	}
	c.Run(context.Background())

	rec, err := st.LoadPlayer(context.Background(), "0xtest")
	if err != nil {
		t.Fatalf("load from store: %v", err)
	}
	if len(rec.CommandLog) != 2 || rec.CommandLog[1] != "gather" {
		t.Fatalf("command log = %v", rec.CommandLog)
	}
}

func TestCLI_Top(t *testing.T) {
	c, out := newTestCLI(t, "/top\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Top adventurers by level:") || !strings.Contains(output, "Top adventurers by reward:") {
		t.Fatalf("expected both boards, got:\n%s", output)
	}
	if !strings.Contains(output, " 1. Kaito") {
		t.Errorf("expected Kaito ranked first, got:\n%s", output)
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\ngather\n/trace\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace] changed=true") {
		t.Error("expected trace line for gather")
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "/state\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Town: Riverside") {
		t.Error("expected town in state output")
	}
	if !strings.Contains(output, "Turn:") {
		t.Error("expected turn count in state output")
	}
}

func TestCLI_AgainRepeatsLastCommand(t *testing.T) {
	c, out := newTestCLI(t, "g\nstatus\ng\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Nothing to repeat.") {
		t.Error("expected nothing-to-repeat message")
	}
	if strings.Count(output, "HP 100/100") != 2 {
		t.Errorf("expected status twice, got:\n%s", output)
	}
	c.Session.View(func(e *engine.Engine) {
		if got := e.State.CommandLog; len(got) != 3 || got[2] != "status" {
			t.Errorf("command log = %v", got)
		}
	})
}

func TestCLI_EmptyInputAndComments(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\n\n/quit\n")
	c.Run(context.Background())

	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines and comments should be skipped")
	}
}
