// Package effects applies effect primitives to the hero via the Apply
// function. Every kind is one atomic operation on the hero's HP, deck or
// ledger. Effects that must reach a monster are reported back to the caller.
package effects

import (
	"fmt"

	"github.com/nathoo/gauntlet/engine/ledger"
	"github.com/nathoo/gauntlet/engine/rules"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// Context carries what an effect list needs for one call. It must not be
// retained after Apply returns.
type Context struct {
	Hero     *state.Hero
	Source   string // card or monster ID
	Snapshot rules.Snapshot
}

// Outcome collects what Apply did and what is left for the caller.
type Outcome struct {
	Events []types.Event

	// Damage is the sum of damage primitives. The caller routes it to the
	// hero (monster sources) or to a target (card sources).
	Damage int
	Pierce bool

	HPLost     int
	Healed     int
	Drawn      int
	Discarded  int
	Registered int
	Rejected   int
}

// Apply applies a list of effects in order.
func Apply(ctx Context, effs []types.Effect) Outcome {
	var out Outcome
	h := ctx.Hero

	for _, eff := range effs {
		switch eff.Kind {
		case types.EffectDamage:
			out.Damage += eff.Amount

		case types.EffectPierce:
			out.Pierce = true

		case types.EffectArmor:
			h.Ledger.AddArmor(eff.Amount + h.Ledger.Sum(types.StatArmor))

		case types.EffectHeal:
			out.Healed += h.Heal(eff.Amount)

		case types.EffectDraw:
			out.Drawn += h.Deck.Draw(eff.Amount)
			out.Discarded += len(h.Deck.EnforceHandLimit())

		case types.EffectDiscard:
			out.Discarded += len(h.Deck.DiscardLowest(eff.Amount))

		case types.EffectReroll:
			h.Ledger.Register(ledger.Entry{
				Owner:  h.Def.ID,
				Source: ctx.Source,
				Scope:  types.ScopeExchange,
				Stat:   types.StatReroll,
				Amount: eff.Amount,
			})

		case types.EffectGainFate:
			h.Ledger.GainFate(eff.Amount)

		case types.EffectPayFate:
			h.Ledger.Drain(ledger.ResourceFate, eff.Amount)

		case types.EffectSeal:
			h.Ledger.AddSeals(eff.Amount)

		case types.EffectTaint:
			h.Ledger.AddTaint(eff.Amount)

		case types.EffectDrain:
			h.Ledger.Drain(eff.Resource, eff.Amount)

		case types.EffectLoseHP:
			out.loseHP(h, eff.Amount, ctx.Source)

		case types.EffectArmorBurn:
			burn := h.Ledger.Drain(ledger.ResourceArmor, h.Ledger.Armor())
			out.loseHP(h, burn, ctx.Source)

		case types.EffectModifier:
			m := eff.Modifier
			if m == nil || !rules.EvalAll(m.When, ctx.Snapshot) {
				continue
			}
			ok := h.Ledger.Register(ledger.Entry{
				Owner:    h.Def.ID,
				Source:   ctx.Source,
				Scope:    m.Scope,
				Stat:     m.Stat,
				Amount:   m.Amount,
				Cap:      m.Cap,
				Until:    m.Until,
				OnExpire: m.OnExpire,
			})
			if ok {
				out.Registered++
			} else {
				out.Rejected++
			}

		default:
			panic(fmt.Sprintf("effects: unknown effect kind %q", eff.Kind))
		}
	}
	return out
}

func (o *Outcome) loseHP(h *state.Hero, n int, source string) {
	lost := h.LoseHP(n)
	if lost == 0 {
		return
	}
	o.HPLost += lost
	o.Events = append(o.Events, types.Event{
		Type: types.EventHeroDamaged,
		Data: map[string]any{"amount": lost, "source": source},
	})
}
