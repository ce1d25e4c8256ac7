// Package deck implements a hero's card zones: draw pile, hand, discard
// pile and the in-play set of committed cards, plus upgrade drafting.
package deck

import (
	"errors"
	"fmt"

	"github.com/nathoo/gauntlet/types"
)

var (
	// ErrNotInHand is returned when a card is moved out of the hand but is not there.
	ErrNotInHand = errors.New("card not in hand")
	// ErrPoolExhausted is returned when drafting from an empty upgrade pool.
	ErrPoolExhausted = errors.New("upgrade pool exhausted")
)

// Source is the randomness the deck needs. *engine.RNG satisfies it.
type Source interface {
	Intn(n int) int
	WeightedSelect(weights []int) int
}

// Deck holds references to catalog cards; it never copies them.
// The top of the draw pile is the last element of draw.
type Deck struct {
	draw    []*types.Card
	hand    []*types.Card
	discard []*types.Card
	inPlay  []*types.Card
	handCap int
	owned   int
	rng     Source
}

// New creates a deck from the starting cards and shuffles the draw pile.
func New(cards []*types.Card, handCap int, rng Source) *Deck {
	d := &Deck{
		draw:    append([]*types.Card(nil), cards...),
		handCap: handCap,
		owned:   len(cards),
		rng:     rng,
	}
	d.shuffle(d.draw)
	return d
}

// Draw moves up to n cards from the draw pile to the hand. When the draw
// pile runs out mid-draw the discard pile is shuffled into it. Returns the
// number of cards drawn.
func (d *Deck) Draw(n int) int {
	drawn := 0
	for drawn < n {
		if len(d.draw) == 0 {
			if len(d.discard) == 0 {
				break
			}
			d.reshuffle()
		}
		top := d.draw[len(d.draw)-1]
		d.draw = d.draw[:len(d.draw)-1]
		d.hand = append(d.hand, top)
		drawn++
	}
	return drawn
}

// Discard moves a card from the hand to the discard pile.
func (d *Deck) Discard(card *types.Card) error {
	i := indexOf(d.hand, card)
	if i < 0 {
		return fmt.Errorf("discarding %s: %w", card.ID, ErrNotInHand)
	}
	d.hand = removeAt(d.hand, i)
	d.discard = append(d.discard, card)
	return nil
}

// Play moves a committed card from the hand to the in-play set.
func (d *Deck) Play(card *types.Card) error {
	i := indexOf(d.hand, card)
	if i < 0 {
		return fmt.Errorf("playing %s: %w", card.ID, ErrNotInHand)
	}
	d.hand = removeAt(d.hand, i)
	d.inPlay = append(d.inPlay, card)
	return nil
}

// EndExchange moves every in-play card to the discard pile.
func (d *Deck) EndExchange() {
	d.discard = append(d.discard, d.inPlay...)
	d.inPlay = d.inPlay[:0]
}

// EnforceHandLimit discards the lowest-value cards until the hand is at
// its cap and returns them. Ties are broken with the deck's RNG.
func (d *Deck) EnforceHandLimit() []*types.Card {
	var dropped []*types.Card
	for len(d.hand) > d.handCap {
		c := d.lowest()
		if err := d.Discard(c); err != nil {
			panic(err)
		}
		dropped = append(dropped, c)
	}
	return dropped
}

// DiscardLowest discards up to n of the lowest-value cards in hand.
func (d *Deck) DiscardLowest(n int) []*types.Card {
	var dropped []*types.Card
	for i := 0; i < n && len(d.hand) > 0; i++ {
		c := d.lowest()
		if err := d.Discard(c); err != nil {
			panic(err)
		}
		dropped = append(dropped, c)
	}
	return dropped
}

// lowest returns the lowest-rarity card in hand, choosing among equals
// with the RNG.
func (d *Deck) lowest() *types.Card {
	low := d.hand[0].Rarity
	for _, c := range d.hand[1:] {
		if c.Rarity < low {
			low = c.Rarity
		}
	}
	var ties []*types.Card
	for _, c := range d.hand {
		if c.Rarity == low {
			ties = append(ties, c)
		}
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[d.rng.Intn(len(ties))]
}

// Insert adds a newly owned card to the draw pile.
func (d *Deck) Insert(card *types.Card, at types.Insertion) {
	switch at {
	case types.InsertTop:
		d.draw = append(d.draw, card)
	case types.InsertShuffle:
		d.draw = append(d.draw, card)
		d.shuffle(d.draw)
	default:
		d.draw = append([]*types.Card{card}, d.draw...)
	}
	d.owned++
}

// InHand reports whether the card is in the hand.
func (d *Deck) InHand(card *types.Card) bool {
	return indexOf(d.hand, card) >= 0
}

// Hand returns a copy of the hand in draw order.
func (d *Deck) Hand() []*types.Card {
	return append([]*types.Card(nil), d.hand...)
}

// HandSize returns the number of cards in hand.
func (d *Deck) HandSize() int { return len(d.hand) }

// DrawSize returns the number of cards in the draw pile.
func (d *Deck) DrawSize() int { return len(d.draw) }

// DiscardSize returns the number of cards in the discard pile.
func (d *Deck) DiscardSize() int { return len(d.discard) }

// InPlaySize returns the number of committed cards.
func (d *Deck) InPlaySize() int { return len(d.inPlay) }

// HandCap returns the hand size limit.
func (d *Deck) HandCap() int { return d.handCap }

// Owned returns the number of cards the hero owns.
func (d *Deck) Owned() int { return d.owned }

// Check verifies that every owned card is in exactly one zone.
func (d *Deck) Check() error {
	total := len(d.draw) + len(d.hand) + len(d.discard) + len(d.inPlay)
	if total != d.owned {
		return fmt.Errorf("deck holds %d cards across zones, hero owns %d (draw=%d hand=%d discard=%d in_play=%d)",
			total, d.owned, len(d.draw), len(d.hand), len(d.discard), len(d.inPlay))
	}
	return nil
}

func (d *Deck) reshuffle() {
	d.draw = append(d.draw, d.discard...)
	d.discard = d.discard[:0]
	d.shuffle(d.draw)
}

// shuffle is a Fisher-Yates shuffle driven by the deck's RNG.
func (d *Deck) shuffle(cards []*types.Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func indexOf(cards []*types.Card, card *types.Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}
	return -1
}

func removeAt(cards []*types.Card, i int) []*types.Card {
	return append(cards[:i], cards[i+1:]...)
}
