package deck

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/nathoo/gauntlet/types"
)

// seqRNG is a Source backed by math/rand so tests stay deterministic
// without importing the engine package.
type seqRNG struct{ r *rand.Rand }

func newSeqRNG(seed int64) *seqRNG { return &seqRNG{r: rand.New(rand.NewSource(seed))} }

func (s *seqRNG) Intn(n int) int { return s.r.Intn(n) }

func (s *seqRNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := s.r.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func makeCards(prefix string, n int, rarity types.Rarity) []*types.Card {
	cards := make([]*types.Card, n)
	for i := range cards {
		cards[i] = &types.Card{ID: prefix, Rarity: rarity, Slot: types.SlotMelee, Dice: 1}
	}
	return cards
}

func mustCheck(t *testing.T, d *Deck) {
	t.Helper()
	if err := d.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestNew_AllCardsInDrawPile(t *testing.T) {
	d := New(makeCards("strike", 10, types.RarityBasic), 7, newSeqRNG(1))
	if d.DrawSize() != 10 || d.HandSize() != 0 || d.Owned() != 10 {
		t.Fatalf("draw=%d hand=%d owned=%d", d.DrawSize(), d.HandSize(), d.Owned())
	}
	mustCheck(t, d)
}

func TestDraw_ReshufflesDiscardMidDraw(t *testing.T) {
	d := New(makeCards("strike", 5, types.RarityBasic), 7, newSeqRNG(2))
	d.Draw(4)
	hand := d.Hand()
	for _, c := range hand[:3] {
		if err := d.Discard(c); err != nil {
			t.Fatal(err)
		}
	}
	// 1 left in draw, 3 in discard, 1 in hand.
	if n := d.Draw(3); n != 3 {
		t.Fatalf("expected 3 drawn, got %d", n)
	}
	if d.HandSize() != 4 {
		t.Errorf("expected hand 4, got %d", d.HandSize())
	}
	if d.DrawSize() != 1 || d.DiscardSize() != 0 {
		t.Errorf("draw=%d discard=%d", d.DrawSize(), d.DiscardSize())
	}
	mustCheck(t, d)
}

func TestDraw_BothPilesEmpty(t *testing.T) {
	d := New(makeCards("strike", 3, types.RarityBasic), 7, newSeqRNG(3))
	d.Draw(3)
	if n := d.Draw(2); n != 0 {
		t.Fatalf("expected no-op draw, got %d", n)
	}
	mustCheck(t, d)
}

func TestDiscard_NotInHand(t *testing.T) {
	d := New(makeCards("strike", 3, types.RarityBasic), 7, newSeqRNG(4))
	stranger := &types.Card{ID: "stranger"}
	if err := d.Discard(stranger); !errors.Is(err, ErrNotInHand) {
		t.Fatalf("expected ErrNotInHand, got %v", err)
	}
	if err := d.Play(stranger); !errors.Is(err, ErrNotInHand) {
		t.Fatalf("expected ErrNotInHand, got %v", err)
	}
}

func TestPlay_EndExchange(t *testing.T) {
	d := New(makeCards("strike", 6, types.RarityBasic), 7, newSeqRNG(5))
	d.Draw(3)
	for _, c := range d.Hand() {
		if err := d.Play(c); err != nil {
			t.Fatal(err)
		}
		mustCheck(t, d)
	}
	if d.InPlaySize() != 3 {
		t.Fatalf("expected 3 in play, got %d", d.InPlaySize())
	}
	d.EndExchange()
	if d.InPlaySize() != 0 || d.DiscardSize() != 3 {
		t.Errorf("in_play=%d discard=%d", d.InPlaySize(), d.DiscardSize())
	}
	mustCheck(t, d)
}

func TestEnforceHandLimit_ExactDiscards(t *testing.T) {
	tests := []struct {
		name     string
		basics   int
		upgrades int
		cap      int
		wantDrop int
	}{
		{"under cap", 3, 2, 7, 0},
		{"at cap", 5, 2, 7, 0},
		{"one over", 6, 2, 7, 1},
		{"three over", 6, 4, 7, 3},
		{"small cap", 2, 4, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := append(makeCards("strike", tt.basics, types.RarityBasic),
				makeCards("cleave", tt.upgrades, types.RarityUncommon)...)
			d := New(cards, tt.cap, newSeqRNG(6))
			d.Draw(len(cards))
			dropped := d.EnforceHandLimit()
			if len(dropped) != tt.wantDrop {
				t.Fatalf("expected %d discards, got %d", tt.wantDrop, len(dropped))
			}
			if d.HandSize() > tt.cap {
				t.Errorf("hand %d exceeds cap %d", d.HandSize(), tt.cap)
			}
			// Basic cards go first.
			for i, c := range dropped {
				if i < tt.basics && c.Rarity != types.RarityBasic {
					t.Errorf("discard %d was %v while basics remained", i, c.Rarity)
				}
			}
			mustCheck(t, d)
		})
	}
}

func TestDiscardLowest(t *testing.T) {
	cards := append(makeCards("strike", 2, types.RarityBasic), makeCards("smite", 2, types.RarityRare)...)
	d := New(cards, 7, newSeqRNG(7))
	d.Draw(4)
	dropped := d.DiscardLowest(3)
	if len(dropped) != 3 {
		t.Fatalf("expected 3 discards, got %d", len(dropped))
	}
	if dropped[0].Rarity != types.RarityBasic || dropped[1].Rarity != types.RarityBasic || dropped[2].Rarity != types.RarityRare {
		t.Errorf("unexpected discard order: %v %v %v", dropped[0].Rarity, dropped[1].Rarity, dropped[2].Rarity)
	}
	mustCheck(t, d)
}

func TestDiscardLowest_MoreThanHand(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("discarding past the hand panicked: %v", r)
		}
	}()
	cards := append(makeCards("strike", 3, types.RarityBasic), makeCards("smite", 1, types.RarityRare)...)
	d := New(cards, 2, newSeqRNG(8))
	d.Draw(4)
	if dropped := d.DiscardLowest(10); len(dropped) != 4 {
		t.Fatalf("expected the whole hand discarded, got %d", len(dropped))
	}
	if d.HandSize() != 0 || d.DiscardSize() != 4 {
		t.Errorf("hand %d, discard %d", d.HandSize(), d.DiscardSize())
	}
	mustCheck(t, d)
}

func TestInsert_Positions(t *testing.T) {
	drafted := &types.Card{ID: "drafted", Rarity: types.RarityRare}

	d := New(makeCards("strike", 4, types.RarityBasic), 7, newSeqRNG(8))
	d.Insert(drafted, types.InsertTop)
	d.Draw(1)
	if d.Hand()[0] != drafted {
		t.Error("top insertion should be drawn next")
	}
	mustCheck(t, d)

	d = New(makeCards("strike", 4, types.RarityBasic), 7, newSeqRNG(8))
	d.Insert(drafted, types.InsertBottom)
	d.Draw(4)
	for _, c := range d.Hand() {
		if c == drafted {
			t.Error("bottom insertion drawn before the rest of the pile")
		}
	}
	d.Draw(1)
	if d.Hand()[4] != drafted {
		t.Error("bottom insertion should be drawn last")
	}
	mustCheck(t, d)
}

func TestDraftUpgrade_EmptyPool(t *testing.T) {
	d := New(makeCards("strike", 4, types.RarityBasic), 7, newSeqRNG(9))
	_, err := d.DraftUpgrade(NewPool(nil), types.InsertBottom)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestDraftUpgrade_RemovesFromPool(t *testing.T) {
	d := New(makeCards("strike", 4, types.RarityBasic), 7, newSeqRNG(10))
	pool := NewPool(append(makeCards("a", 2, types.RarityCommon), makeCards("b", 1, types.RarityRare)...))
	for i := 0; i < 3; i++ {
		if _, err := d.DraftUpgrade(pool, types.InsertBottom); err != nil {
			t.Fatal(err)
		}
		mustCheck(t, d)
	}
	if pool.Len() != 0 || d.Owned() != 7 {
		t.Fatalf("pool=%d owned=%d", pool.Len(), d.Owned())
	}
	if _, err := d.DraftUpgrade(pool, types.InsertBottom); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestDraftUpgrade_PicksHighestRarity(t *testing.T) {
	// With exactly three candidates all are offered, so the rare always wins.
	for seed := int64(0); seed < 50; seed++ {
		d := New(nil, 7, newSeqRNG(seed))
		pool := NewPool([]*types.Card{
			{ID: "c", Rarity: types.RarityCommon},
			{ID: "r", Rarity: types.RarityRare},
			{ID: "u", Rarity: types.RarityUncommon},
		})
		got, err := d.DraftUpgrade(pool, types.InsertBottom)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != "r" {
			t.Fatalf("seed %d: expected rare pick, got %s", seed, got.ID)
		}
	}
}

func TestPoolSample_RarityConvergence(t *testing.T) {
	// One card of each rarity; the first sampled candidate follows 3:2:1.
	rng := newSeqRNG(11)
	pool := NewPool([]*types.Card{
		{ID: "c", Rarity: types.RarityCommon},
		{ID: "u", Rarity: types.RarityUncommon},
		{ID: "r", Rarity: types.RarityRare},
	})
	counts := [3]int{}
	const trials = 12000
	for i := 0; i < trials; i++ {
		picked := pool.Sample(1, rng)
		counts[picked[0]]++
	}
	if counts[0] < 5500 || counts[0] > 6500 {
		t.Errorf("expected ~6000 commons, got %d", counts[0])
	}
	if counts[1] < 3500 || counts[1] > 4500 {
		t.Errorf("expected ~4000 uncommons, got %d", counts[1])
	}
	if counts[2] < 1600 || counts[2] > 2400 {
		t.Errorf("expected ~2000 rares, got %d", counts[2])
	}
}

func TestPoolSample_Distinct(t *testing.T) {
	rng := newSeqRNG(12)
	pool := NewPool(makeCards("x", 5, types.RarityCommon))
	for i := 0; i < 200; i++ {
		picked := pool.Sample(3, rng)
		if len(picked) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(picked))
		}
		if picked[0] == picked[1] || picked[0] == picked[2] || picked[1] == picked[2] {
			t.Fatalf("duplicate candidates: %v", picked)
		}
	}
	if got := NewPool(nil).Sample(3, rng); len(got) != 0 {
		t.Errorf("empty pool sampled %d candidates", len(got))
	}
}
