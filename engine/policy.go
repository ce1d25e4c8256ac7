package engine

import (
	"sort"

	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// Policy decides what the hero commits each exchange.
type Policy interface {
	// Order returns the cards to try committing, in commit order.
	Order(hand []*types.Card) []*types.Card
	// Target picks the target of a card among living monsters. card is
	// nil for the basic discard action.
	Target(card *types.Card, living []*state.Monster) *state.Monster
}

// DefaultPolicy plays every card in hand: utility first, then ranged,
// then melee. Within a slot higher Priority goes first, then hand order.
type DefaultPolicy struct{}

var slotRank = map[types.Slot]int{
	types.SlotUtility: 0,
	types.SlotRanged:  1,
	types.SlotMelee:   2,
}

// Order implements Policy.
func (DefaultPolicy) Order(hand []*types.Card) []*types.Card {
	order := append([]*types.Card(nil), hand...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if slotRank[a.Slot] != slotRank[b.Slot] {
			return slotRank[a.Slot] < slotRank[b.Slot]
		}
		return a.Priority > b.Priority
	})
	return order
}

// Target implements Policy: highest telegraphed damage first, then lowest
// HP, then lowest index.
func (DefaultPolicy) Target(_ *types.Card, living []*state.Monster) *state.Monster {
	var best *state.Monster
	for _, m := range living {
		if best == nil || threatens(m, best) {
			best = m
		}
	}
	return best
}

// threatens reports whether a should be targeted before b.
func threatens(a, b *state.Monster) bool {
	if a.Band.Damage != b.Band.Damage {
		return a.Band.Damage > b.Band.Damage
	}
	if a.HP != b.HP {
		return a.HP < b.HP
	}
	return a.Index < b.Index
}
