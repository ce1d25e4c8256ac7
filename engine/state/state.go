// Package state holds the immutable catalog definitions and the runtime
// hero and monster instances built from them for a single run.
package state

import (
	"fmt"

	"github.com/nathoo/gauntlet/engine/deck"
	"github.com/nathoo/gauntlet/engine/ledger"
	"github.com/nathoo/gauntlet/engine/rules"
	"github.com/nathoo/gauntlet/types"
)

// Defs holds the immutable catalog loaded at startup. It is shared by
// pointer across every concurrent run and never mutated after load.
type Defs struct {
	Game       types.GameDef
	Rules      types.RulesDef
	Cards      map[string]*types.Card
	Heroes     map[string]types.HeroDef
	Monsters   map[string]types.MonsterDef
	Encounters map[string]types.EncounterDef
	Campaign   types.CampaignDef
}

// DefaultRules returns the standard rule constants.
func DefaultRules() types.RulesDef {
	return types.RulesDef{
		HandCap:          7,
		FateCap:          10,
		SealCap:          6,
		StartingFate:     0,
		OpeningHand:      5,
		PostCombatDraw:   2,
		ExchangeDraws:    []int{3, 2, 1, 0},
		FatePerExchange:  2,
		FatePerCombat:    1,
		CritDoubleChance: 0.2,
		TaintPerWound:    5,
		Insertion:        types.InsertBottom,
	}
}

// ExchangeDraw returns the draw count for a 1-based exchange number.
// Exchanges past the end of the table use its last entry.
func ExchangeDraw(r types.RulesDef, exchange int) int {
	if len(r.ExchangeDraws) == 0 || exchange < 1 {
		return 0
	}
	if exchange > len(r.ExchangeDraws) {
		return r.ExchangeDraws[len(r.ExchangeDraws)-1]
	}
	return r.ExchangeDraws[exchange-1]
}

// CardList resolves card IDs to catalog references, keeping duplicates.
func (d *Defs) CardList(ids []string) ([]*types.Card, error) {
	cards := make([]*types.Card, 0, len(ids))
	for _, id := range ids {
		c, ok := d.Cards[id]
		if !ok {
			return nil, fmt.Errorf("unknown card %q", id)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Hero is a hero's state for one run.
type Hero struct {
	Def    types.HeroDef
	HP     int
	Deck   *deck.Deck
	Ledger *ledger.Ledger
}

// NewHero builds a hero with a shuffled starting deck and an empty ledger.
func NewHero(defs *Defs, heroID string, rng deck.Source) (*Hero, error) {
	def, ok := defs.Heroes[heroID]
	if !ok {
		return nil, fmt.Errorf("unknown hero %q", heroID)
	}
	cards, err := defs.CardList(def.Deck)
	if err != nil {
		return nil, fmt.Errorf("hero %s deck: %w", heroID, err)
	}
	r := defs.Rules
	return &Hero{
		Def:    def,
		HP:     def.MaxHP,
		Deck:   deck.New(cards, r.HandCap, rng),
		Ledger: ledger.New(r.FateCap, r.SealCap, r.StartingFate),
	}, nil
}

// Alive reports whether the hero has HP left.
func (h *Hero) Alive() bool {
	return h.HP > 0
}

// LoseHP removes HP, clamped at 0, and returns the HP actually lost.
func (h *Hero) LoseHP(n int) int {
	if n <= 0 {
		return 0
	}
	lost := min(n, h.HP)
	h.HP -= lost
	return lost
}

// Heal restores HP up to MaxHP and returns the HP actually restored.
func (h *Hero) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	gained := min(n, h.Def.MaxHP-h.HP)
	h.HP += gained
	return gained
}

// Monster is one member of an encounter group.
type Monster struct {
	ID    string // "<monster id>#<n>"
	Index int
	Def   *types.MonsterDef
	HP    int

	// Cached telegraph for the current exchange.
	Roll int
	Band types.Band

	// Down is set once the monster's defeat has been announced.
	Down bool
}

// NewGroup instantiates the monsters of an encounter. Each member gets
// independent HP.
func NewGroup(defs *Defs, encounterID string) ([]*Monster, error) {
	enc, ok := defs.Encounters[encounterID]
	if !ok {
		return nil, fmt.Errorf("unknown encounter %q", encounterID)
	}
	def, ok := defs.Monsters[enc.Monster]
	if !ok {
		return nil, fmt.Errorf("encounter %s: unknown monster %q", encounterID, enc.Monster)
	}
	count := max(enc.Count, 1)
	group := make([]*Monster, count)
	for i := range group {
		group[i] = &Monster{
			ID:    fmt.Sprintf("%s#%d", def.ID, i+1),
			Index: i,
			Def:   &def,
			HP:    def.HP,
		}
	}
	return group, nil
}

// Alive reports whether the monster has HP left.
func (m *Monster) Alive() bool {
	return m.HP > 0
}

// LoseHP removes HP, clamped at 0, and returns the HP actually lost.
func (m *Monster) LoseHP(n int) int {
	if n <= 0 {
		return 0
	}
	lost := min(n, m.HP)
	m.HP -= lost
	return lost
}

// Passive returns the amount of a passive ability and whether the
// monster has it.
func (m *Monster) Passive(kind string) (int, bool) {
	for _, p := range m.Def.Passives {
		if p.Kind == kind {
			return p.Amount, true
		}
	}
	return 0, false
}

// Living returns the living monsters in index order.
func Living(group []*Monster) []*Monster {
	var alive []*Monster
	for _, m := range group {
		if m.Alive() {
			alive = append(alive, m)
		}
	}
	return alive
}

// Snapshot captures the values conditions inspect. TargetVulnerable is
// left for the caller, which knows the card being resolved.
func Snapshot(h *Hero, group []*Monster, exchange int) rules.Snapshot {
	return rules.Snapshot{
		HeroHP:        h.HP,
		HeroMaxHP:     h.Def.MaxHP,
		Armor:         h.Ledger.Armor(),
		Fate:          h.Ledger.Fate(),
		Seals:         h.Ledger.Seals(),
		Taint:         h.Ledger.Taint(),
		Exchange:      exchange,
		LivingEnemies: len(Living(group)),
	}
}

// Vulnerable reports whether any damage the card deals matches the
// monster's vulnerability.
func Vulnerable(m *Monster, card *types.Card) bool {
	if m == nil || card == nil || m.Def.Vulnerability == "" {
		return false
	}
	for _, eff := range card.Effects {
		if eff.Kind == types.EffectDamage && eff.DamageType == m.Def.Vulnerability {
			return true
		}
	}
	return false
}
