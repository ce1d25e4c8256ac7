package deck

import (
	"fmt"

	"github.com/nathoo/gauntlet/types"
)

// DraftCandidates is the number of cards offered per draft.
const DraftCandidates = 3

// RarityWeight returns the draft weight of a rarity (common:uncommon:rare = 3:2:1).
func RarityWeight(r types.Rarity) int {
	switch r {
	case types.RarityUncommon:
		return 2
	case types.RarityRare:
		return 1
	default:
		return 3
	}
}

// Pool is a run's private copy of a hero's upgrade pool. Drafted cards
// leave the pool.
type Pool struct {
	cards []*types.Card
}

// NewPool creates a pool from catalog card references.
func NewPool(cards []*types.Card) *Pool {
	return &Pool{cards: append([]*types.Card(nil), cards...)}
}

// Len returns the number of cards left in the pool.
func (p *Pool) Len() int {
	return len(p.cards)
}

// Sample draws up to n distinct pool positions weighted by rarity,
// without replacement, in draw order.
func (p *Pool) Sample(n int, rng Source) []int {
	remaining := make([]int, len(p.cards))
	for i := range remaining {
		remaining[i] = i
	}
	var picked []int
	for len(picked) < n && len(remaining) > 0 {
		weights := make([]int, len(remaining))
		for i, idx := range remaining {
			weights[i] = RarityWeight(p.cards[idx].Rarity)
		}
		k := rng.WeightedSelect(weights)
		picked = append(picked, remaining[k])
		remaining = append(remaining[:k], remaining[k+1:]...)
	}
	return picked
}

// DraftUpgrade offers DraftCandidates cards from the pool, keeps the
// highest rarity (first drawn wins ties), removes it from the pool and
// inserts it into the deck.
func (d *Deck) DraftUpgrade(pool *Pool, at types.Insertion) (*types.Card, error) {
	if pool.Len() == 0 {
		return nil, fmt.Errorf("drafting: %w", ErrPoolExhausted)
	}
	candidates := pool.Sample(DraftCandidates, d.rng)
	best := candidates[0]
	for _, idx := range candidates[1:] {
		if pool.cards[idx].Rarity > pool.cards[best].Rarity {
			best = idx
		}
	}
	card := pool.cards[best]
	pool.cards = append(pool.cards[:best], pool.cards[best+1:]...)
	d.Insert(card, at)
	return card, nil
}
