// Package engine provides the campaign runner that wires together the
// deck, resolver, ledger and combat state machine into one playthrough.
package engine

import (
	"fmt"

	"github.com/nathoo/gauntlet/engine/deck"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// Engine runs one campaign with its own RNG. Engines share nothing but
// the read-only Defs, so any number may run concurrently.
type Engine struct {
	Defs      *state.Defs
	RNG       *RNG
	Policy    Policy
	HeroID    string
	SafetyCap int
	Index     int
}

// New creates an engine for run index of a batch seeded by seed.
func New(defs *state.Defs, heroID string, seed int64, index int) *Engine {
	if heroID == "" {
		heroID = defs.Campaign.Hero
	}
	return &Engine{
		Defs:      defs,
		RNG:       NewRNG(DeriveSeed(seed, index)),
		Policy:    DefaultPolicy{},
		HeroID:    heroID,
		SafetyCap: DefaultSafetyCap,
		Index:     index,
	}
}

// Run plays the campaign to completion or to the first defeat or stall.
// An error means the catalog cannot support the run.
func (e *Engine) Run() (types.RunResult, error) {
	res := types.RunResult{
		Index:      e.Index,
		Seed:       e.RNG.Seed(),
		Hero:       e.HeroID,
		CardDamage: map[string]int{},
	}
	rules := e.Defs.Rules

	hero, err := state.NewHero(e.Defs, e.HeroID, e.RNG)
	if err != nil {
		return res, err
	}
	upgrades, err := e.Defs.CardList(hero.Def.Upgrades)
	if err != nil {
		return res, fmt.Errorf("hero %s upgrades: %w", e.HeroID, err)
	}
	pool := deck.NewPool(upgrades)
	hero.Deck.Draw(rules.OpeningHand)
	hero.Deck.EnforceHandLimit()

	sequence, err := e.Sequence()
	if err != nil {
		return res, err
	}

	for i, encID := range sequence {
		combat, err := NewCombat(e.Defs, hero, encID, e.RNG, e.Policy, e.SafetyCap, res.CardDamage)
		if err != nil {
			return res, err
		}
		er := combat.Run()
		er.Index = i
		res.Encounters = append(res.Encounters, er)
		res.FinalHP = hero.HP

		switch er.Outcome {
		case types.OutcomeStalled:
			res.Stalled = true
			res.RNGDraws = e.RNG.Position()
			return res, nil
		case types.OutcomeDefeat:
			res.RNGDraws = e.RNG.Position()
			return res, nil
		}

		if i == len(sequence)-1 {
			break
		}
		hero.Ledger.GainFate(rules.FatePerCombat)
		for range e.drafts(i + 1) {
			card, err := hero.Deck.DraftUpgrade(pool, rules.Insertion)
			if err != nil {
				return res, fmt.Errorf("run %d after combat %d: %w", e.Index, i+1, err)
			}
			res.Drafted = append(res.Drafted, card.ID)
		}
		hero.Deck.Draw(rules.PostCombatDraw)
		hero.Deck.EnforceHandLimit()
	}

	res.Won = true
	res.FinalHP = hero.HP
	res.RNGDraws = e.RNG.Position()
	return res, nil
}

// drafts returns the number of drafts earned by winning combat n (1-based).
func (e *Engine) drafts(n int) int {
	for _, b := range e.Defs.Campaign.BonusDrafts {
		if b == n {
			return 2
		}
	}
	return 1
}

// Sequence returns the encounter IDs of this run: the fixed sequence when
// one is set, else BasicCount basic encounters then EliteCount elite
// ones, each sampled without replacement.
func (e *Engine) Sequence() ([]string, error) {
	camp := e.Defs.Campaign
	if len(camp.Sequence) > 0 {
		return append([]string(nil), camp.Sequence...), nil
	}
	basic, err := e.sample(camp.Basic, camp.BasicCount)
	if err != nil {
		return nil, fmt.Errorf("basic encounters: %w", err)
	}
	elite, err := e.sample(camp.Elite, camp.EliteCount)
	if err != nil {
		return nil, fmt.Errorf("elite encounters: %w", err)
	}
	return append(basic, elite...), nil
}

func (e *Engine) sample(ids []string, n int) ([]string, error) {
	if n > len(ids) {
		return nil, fmt.Errorf("want %d from a pool of %d", n, len(ids))
	}
	pool := append([]string(nil), ids...)
	picked := make([]string, 0, n)
	for range n {
		i := e.RNG.Intn(len(pool))
		picked = append(picked, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return picked, nil
}
