// Package harness runs batches of independent campaign runs on a bounded
// worker pool and folds their results into a summary.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/gauntlet/engine"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// ErrInvalidConfig marks a batch that cannot start.
var ErrInvalidConfig = errors.New("invalid batch configuration")

// Config controls one batch.
type Config struct {
	Trials     int
	Seed       int64
	Workers    int           // 0 means runtime.NumCPU()
	SafetyCap  int           // 0 means engine.DefaultSafetyCap
	Hero       string        // "" means the campaign's hero
	Budget     time.Duration // 0 means no time limit
	Confidence float64       // 0 means 0.95
	Logger     *slog.Logger
}

// Progress is reported after every completed run.
type Progress struct {
	Completed     int
	Total         int
	Wins          int
	NonConvergent int
}

// Observer receives progress. Calls are serialized.
type Observer func(Progress)

// Run executes cfg.Trials runs. Each run index gets its own RNG derived
// from cfg.Seed, and results are folded in index order, so a batch is
// reproducible whatever the worker count. Cancellation of ctx or the time
// budget stops scheduling; runs already finished are still summarized.
// Catalog problems surfacing during a run abort the batch with an error.
func Run(ctx context.Context, defs *state.Defs, cfg Config, observe Observer) (*Summary, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d: %w", cfg.Trials, ErrInvalidConfig)
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = 0.95
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		return nil, fmt.Errorf("confidence must be in (0,1), got %v: %w", cfg.Confidence, ErrInvalidConfig)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	hero := cfg.Hero
	if hero == "" {
		hero = defs.Campaign.Hero
	}
	if _, ok := defs.Heroes[hero]; !ok {
		return nil, fmt.Errorf("unknown hero %q: %w", hero, ErrInvalidConfig)
	}

	if cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Budget)
		defer cancel()
	}

	log.Info("batch started", "hero", hero, "trials", cfg.Trials, "seed", cfg.Seed, "workers", workers)
	start := time.Now()

	results := make([]*types.RunResult, cfg.Trials)
	var completed, wins, stalled atomic.Int64
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Trials; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			e := engine.New(defs, hero, cfg.Seed, i)
			if cfg.SafetyCap > 0 {
				e.SafetyCap = cfg.SafetyCap
			}
			r, err := e.Run()
			if err != nil {
				return err
			}
			results[i] = &r

			n := completed.Add(1)
			if r.Won {
				wins.Add(1)
			}
			if r.Stalled {
				stalled.Add(1)
				log.Debug("run stalled", "index", i, "seed", r.Seed, "encounter", len(r.Encounters))
			}
			if observe != nil {
				mu.Lock()
				observe(Progress{
					Completed:     int(n),
					Total:         cfg.Trials,
					Wins:          int(wins.Load()),
					NonConvergent: int(stalled.Load()),
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	s := Summarize(results, hero, cfg)
	if ctx.Err() != nil {
		s.Cancelled = true
		log.Warn("batch cut short", "reason", ctx.Err(), "completed", s.Completed, "requested", s.Requested)
	}
	log.Info("batch finished",
		"completed", s.Completed,
		"win_rate", s.WinRate.Mean,
		"non_convergent", s.NonConvergent,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return s, nil
}

// Summary aggregates a batch.
type Summary struct {
	Hero          string
	Seed          int64
	Confidence    float64
	Requested     int
	Completed     int
	Wins          int
	WinRate       Interval
	NonConvergent int
	Cancelled     bool
	Encounters    []EncounterStats
	Cards         []CardStats
	Defeats       []DefeatCount
}

// EncounterStats covers one encounter position of the campaign. Values
// are taken over the runs that reached it.
type EncounterStats struct {
	Index       int
	Reached     int
	Cleared     int
	HPAfter     Interval
	DamageDealt Interval
	DamageTaken Interval
	Exchanges   Interval
	Taint       Interval
}

// CardStats is one card's contribution across the batch.
type CardStats struct {
	ID          string
	MeanDamage  float64 // HP removed per completed run
	Drafts      int
	RunsDrafted int
	WinRate     float64 // among runs that drafted it
}

// DefeatCount is how often the hero fell to an encounter.
type DefeatCount struct {
	EncounterID string
	Defeats     int
	Stalls      int
}

type encounterAcc struct {
	reached, cleared int

	hp, dealt, taken, exchanges, taint Accumulator
}

type cardAcc struct {
	damage, drafts, runsDrafted, winsDrafted int
}

// Summarize folds run results in index order. Nil entries are runs that
// never completed and are skipped.
func Summarize(results []*types.RunResult, hero string, cfg Config) *Summary {
	conf := cfg.Confidence
	if conf == 0 {
		conf = 0.95
	}
	z := ZScore(conf)
	s := &Summary{Hero: hero, Seed: cfg.Seed, Confidence: conf, Requested: cfg.Trials}

	var encs []*encounterAcc
	cards := map[string]*cardAcc{}
	defeats := map[string]*DefeatCount{}
	card := func(id string) *cardAcc {
		c, ok := cards[id]
		if !ok {
			c = &cardAcc{}
			cards[id] = c
		}
		return c
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		s.Completed++
		if r.Won {
			s.Wins++
		}
		if r.Stalled {
			s.NonConvergent++
		}

		for _, er := range r.Encounters {
			for len(encs) <= er.Index {
				encs = append(encs, &encounterAcc{})
			}
			acc := encs[er.Index]
			acc.reached++
			if er.Outcome == types.OutcomeVictory {
				acc.cleared++
			}
			acc.hp.Add(float64(er.HPAfter))
			acc.dealt.Add(float64(er.DamageDealt))
			acc.taken.Add(float64(er.DamageTaken))
			acc.exchanges.Add(float64(er.Exchanges))
			acc.taint.Add(float64(er.Taint))

			if er.Outcome != types.OutcomeVictory {
				d, ok := defeats[er.EncounterID]
				if !ok {
					d = &DefeatCount{EncounterID: er.EncounterID}
					defeats[er.EncounterID] = d
				}
				if er.Outcome == types.OutcomeStalled {
					d.Stalls++
				} else {
					d.Defeats++
				}
			}
		}

		for id, dmg := range r.CardDamage {
			card(id).damage += dmg
		}
		seen := map[string]bool{}
		for _, id := range r.Drafted {
			c := card(id)
			c.drafts++
			if !seen[id] {
				seen[id] = true
				c.runsDrafted++
				if r.Won {
					c.winsDrafted++
				}
			}
		}
	}

	s.WinRate = Wilson(s.Wins, s.Completed, z)
	for i, acc := range encs {
		s.Encounters = append(s.Encounters, EncounterStats{
			Index:       i,
			Reached:     acc.reached,
			Cleared:     acc.cleared,
			HPAfter:     acc.hp.Interval(z),
			DamageDealt: acc.dealt.Interval(z),
			DamageTaken: acc.taken.Interval(z),
			Exchanges:   acc.exchanges.Interval(z),
			Taint:       acc.taint.Interval(z),
		})
	}

	for id, c := range cards {
		cs := CardStats{ID: id, Drafts: c.drafts, RunsDrafted: c.runsDrafted}
		if s.Completed > 0 {
			cs.MeanDamage = float64(c.damage) / float64(s.Completed)
		}
		if c.runsDrafted > 0 {
			cs.WinRate = float64(c.winsDrafted) / float64(c.runsDrafted)
		}
		s.Cards = append(s.Cards, cs)
	}
	sort.Slice(s.Cards, func(i, j int) bool {
		if s.Cards[i].MeanDamage != s.Cards[j].MeanDamage {
			return s.Cards[i].MeanDamage > s.Cards[j].MeanDamage
		}
		return s.Cards[i].ID < s.Cards[j].ID
	})

	for _, d := range defeats {
		s.Defeats = append(s.Defeats, *d)
	}
	sort.Slice(s.Defeats, func(i, j int) bool {
		a, b := s.Defeats[i], s.Defeats[j]
		if a.Defeats+a.Stalls != b.Defeats+b.Stalls {
			return a.Defeats+a.Stalls > b.Defeats+b.Stalls
		}
		return a.EncounterID < b.EncounterID
	})
	return s
}
