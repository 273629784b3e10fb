// Package config reads host settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls the player identity, persistence, and loop timing.
type Config struct {
	Wallet       string        `env:"KAITO_WALLET"        envDefault:"local"`
	Name         string        `env:"KAITO_NAME"          envDefault:"Kaito"`
	Trait        string        `env:"KAITO_TRAIT"`
	DBPath       string        `env:"KAITO_DB_PATH"`
	ContentDir   string        `env:"KAITO_CONTENT_DIR"`
	SaveEvery    int           `env:"KAITO_SAVE_EVERY"    envDefault:"5"`
	SaveInterval time.Duration `env:"KAITO_SAVE_INTERVAL" envDefault:"30s"`
	TickInterval time.Duration `env:"KAITO_TICK_INTERVAL" envDefault:"5s"`
	LogLevel     string        `env:"KAITO_LOG_LEVEL"     envDefault:"info"`
	LogFile      string        `env:"KAITO_LOG_FILE"`
	Seed         int64         `env:"KAITO_SEED"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses a fixed variable set instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the host cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Wallet) == "" {
		return fmt.Errorf("KAITO_WALLET must not be empty")
	}
	if c.SaveEvery <= 0 {
		return fmt.Errorf("KAITO_SAVE_EVERY must be positive, got %d", c.SaveEvery)
	}
	if c.SaveInterval <= 0 || c.TickInterval <= 0 {
		return fmt.Errorf("KAITO_SAVE_INTERVAL and KAITO_TICK_INTERVAL must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto slog.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("KAITO_LOG_LEVEL: %w", err)
	}
	return l, nil
}
