// Gauntlet runs Monte Carlo balance batches of a card-driven co-op combat
// campaign and reports win rates, encounter pressure and card contribution.
// Usage: gauntlet [--version] [--plain] [--trials N] [--seed S] [--hero ID]
// [--workers N] [--cap N] [--budget DUR] [--confidence C] <content_dir>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nathoo/gauntlet/cli"
	"github.com/nathoo/gauntlet/config"
	"github.com/nathoo/gauntlet/harness"
	"github.com/nathoo/gauntlet/loader"
	"github.com/nathoo/gauntlet/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: gauntlet [--version] [--plain] [--trials N] [--seed S] [--hero ID] [--workers N] [--cap N] [--budget DUR] [--confidence C] <content_dir>"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plain := false
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		value := func() string {
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			i++
			return args[i]
		}
		switch args[i] {
		case "--version":
			fmt.Printf("gauntlet %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trials":
			cfg.Trials = atoi("--trials", value())
		case "--seed":
			s, err := strconv.ParseInt(value(), 10, 64)
			if err != nil {
				fail("--seed", err)
			}
			cfg.Seed = s
		case "--hero":
			cfg.Hero = value()
		case "--workers":
			cfg.Workers = atoi("--workers", value())
		case "--cap":
			cfg.SafetyCap = atoi("--cap", value())
		case "--budget":
			d, err := time.ParseDuration(value())
			if err != nil {
				fail("--budget", err)
			}
			cfg.Budget = d
		case "--confidence":
			c, err := strconv.ParseFloat(value(), 64)
			if err != nil {
				fail("--confidence", err)
			}
			cfg.Confidence = c
		default:
			cfg.Content = args[i]
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n%s\n", err, usage)
		os.Exit(1)
	}

	interactive := !plain && isatty.IsTerminal(os.Stdout.Fd())

	// The TUI owns the terminal; only warnings reach stderr while it runs.
	level := cfg.Level()
	if interactive && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	defs, err := loader.Load(cfg.Content, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hcfg := cfg.Harness(log)
	if interactive {
		hcfg.Logger = slog.New(slog.DiscardHandler)
		if _, err := tui.Run(ctx, defs, hcfg); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	c := cli.New(os.Stdout, defs)
	summary, err := harness.Run(ctx, defs, hcfg, c.Observer())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	c.Report(summary)
}

func atoi(flag, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fail(flag, err)
	}
	return n
}

func fail(flag string, err error) {
	fmt.Fprintf(os.Stderr, "invalid %s: %v\n%s\n", flag, err, usage)
	os.Exit(1)
}
