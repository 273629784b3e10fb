// Kaito's Adventure is a text RPG of gathering, crafting and trading across
// three towns.
// Usage: kaito [--version] [--plain] [--script <file>] [--trace] [content_directory]
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nathoo/kaito/cli"
	"github.com/nathoo/kaito/config"
	"github.com/nathoo/kaito/content"
	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/loader"
	"github.com/nathoo/kaito/notify"
	"github.com/nathoo/kaito/session"
	"github.com/nathoo/kaito/store"
	"github.com/nathoo/kaito/store/memory"
	"github.com/nathoo/kaito/store/saver"
	"github.com/nathoo/kaito/store/sqlite"
	"github.com/nathoo/kaito/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var contentDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("kaito %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if contentDir == "" {
		contentDir = cfg.ContentDir
	}
	useTUI := scriptFile == "" && !plain && isTerminal()

	if err := run(cfg, contentDir, scriptFile, trace, useTUI); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, contentDir, scriptFile string, trace, useTUI bool) error {
	logger, closeLog, err := newLogger(cfg, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defs, err := loadContent(contentDir)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := cfg.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	opts := session.Options{
		Wallet:       cfg.Wallet,
		Name:         cfg.Name,
		Trait:        cfg.Trait,
		Seed:         seed,
		SavePolicy:   saver.Policy{Every: cfg.SaveEvery, Interval: cfg.SaveInterval},
		TickInterval: cfg.TickInterval,
		Sinks:        []notify.Sink{notify.LogSink{Logger: logger}},
	}
	var sink *tui.Sink
	if useTUI {
		sink = tui.NewSink()
		opts.Sinks = append(opts.Sinks, sink)
	}

	sess, err := session.Open(ctx, defs, st, opts, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sess.Run(runCtx) }()

	var hostErr error
	if useTUI {
		hostErr = tui.Run(ctx, sess, sink)
	} else {
		g := defs.Game
		fmt.Printf("%s v%s by %s\n\n", g.Title, g.Version, g.Author)
		c := cli.New(sess)
		c.Trace = trace
		if scriptFile != "" {
			f, err := os.Open(scriptFile)
			if err != nil {
				cancel()
				<-done
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			c.In = f
			c.EchoInput = true
		}
		c.Run(ctx)
	}

	// Stopping the session flushes the last record.
	cancel()
	if err := <-done; err != nil {
		logger.Error("session stopped", "error", err)
	}
	return hostErr
}

func loadContent(dir string) (*state.Defs, error) {
	if dir == "" {
		return content.Load()
	}
	return loader.Load(dir)
}

// openStore uses SQLite when a database path is configured and an in-memory
// store otherwise.
func openStore(ctx context.Context, cfg config.Config) (store.PlayerStore, func(), error) {
	if cfg.DBPath == "" {
		return memory.New(), func() {}, nil
	}
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open player store: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

// newLogger writes to stderr in plain mode. The TUI owns the terminal, so
// there logs go to KAITO_LOG_FILE or nowhere.
func newLogger(cfg config.Config, useTUI bool) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case useTUI:
		w = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
