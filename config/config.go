// Package config reads batch settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nathoo/gauntlet/harness"
)

// ErrInvalid marks a configuration the simulator cannot run with.
var ErrInvalid = errors.New("invalid configuration")

// Config is the run configuration. Flags in cmd/gauntlet override it.
type Config struct {
	Trials     int           `env:"GAUNTLET_TRIALS"     envDefault:"1000"`
	Seed       int64         `env:"GAUNTLET_SEED"       envDefault:"42"`
	Workers    int           `env:"GAUNTLET_WORKERS"`
	SafetyCap  int           `env:"GAUNTLET_SAFETY_CAP" envDefault:"1000"`
	Hero       string        `env:"GAUNTLET_HERO"`
	Content    string        `env:"GAUNTLET_CONTENT"    envDefault:"content"`
	Budget     time.Duration `env:"GAUNTLET_BUDGET"`
	Confidence float64       `env:"GAUNTLET_CONFIDENCE" envDefault:"0.95"`
	LogLevel   string        `env:"GAUNTLET_LOG_LEVEL"  envDefault:"info"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []string
	if c.Trials <= 0 {
		errs = append(errs, fmt.Sprintf("trials must be positive, got %d", c.Trials))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	if c.SafetyCap < 0 {
		errs = append(errs, fmt.Sprintf("safety cap must not be negative, got %d", c.SafetyCap))
	}
	if c.Budget < 0 {
		errs = append(errs, fmt.Sprintf("budget must not be negative, got %s", c.Budget))
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		errs = append(errs, fmt.Sprintf("confidence must be in (0,1), got %v", c.Confidence))
	}
	if c.Content == "" {
		errs = append(errs, "content directory is required")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Level returns the slog level named by LogLevel, or info if it is unknown.
func (c Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Harness converts the configuration into a batch configuration.
func (c Config) Harness(log *slog.Logger) harness.Config {
	return harness.Config{
		Trials:     c.Trials,
		Seed:       c.Seed,
		Workers:    c.Workers,
		SafetyCap:  c.SafetyCap,
		Hero:       c.Hero,
		Budget:     c.Budget,
		Confidence: c.Confidence,
		Logger:     log,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
