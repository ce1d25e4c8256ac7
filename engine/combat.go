package engine

import (
	"fmt"

	"github.com/nathoo/gauntlet/engine/effects"
	"github.com/nathoo/gauntlet/engine/events"
	"github.com/nathoo/gauntlet/engine/ledger"
	"github.com/nathoo/gauntlet/engine/resolve"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// Combat phases, in exchange order.
const (
	PhaseStart         = "start"
	PhaseEnemyRoll     = "enemy_roll"
	PhaseHeroCommit    = "hero_commit"
	PhaseRangedResolve = "ranged_resolve"
	PhaseEnemyResolve  = "enemy_resolve"
	PhaseDraw          = "draw"
	PhaseEnd           = "end"
)

// DefaultSafetyCap is the exchange limit after which a combat is stalled.
const DefaultSafetyCap = 1000

// commit is an attack card waiting to resolve.
type commit struct {
	card   *types.Card
	target *state.Monster
}

// Combat runs one encounter: a hero against a monster group.
type Combat struct {
	defs   *state.Defs
	rng    *RNG
	hero   *state.Hero
	policy Policy
	cap    int

	Encounter types.EncounterDef
	Group     []*state.Monster
	Phase     string
	Exchange  int

	outcome    types.Outcome
	fateSpent  int
	attacks    []commit
	result     types.EncounterResult
	cardDamage map[string]int
}

// NewCombat instantiates the encounter's monsters. cardDamage collects
// HP removed per card ID and may be shared across the combats of a run.
func NewCombat(defs *state.Defs, hero *state.Hero, encounterID string, rng *RNG, policy Policy, safetyCap int, cardDamage map[string]int) (*Combat, error) {
	group, err := state.NewGroup(defs, encounterID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = DefaultPolicy{}
	}
	if safetyCap <= 0 {
		safetyCap = DefaultSafetyCap
	}
	if cardDamage == nil {
		cardDamage = map[string]int{}
	}
	return &Combat{
		defs:       defs,
		rng:        rng,
		hero:       hero,
		policy:     policy,
		cap:        safetyCap,
		Encounter:  defs.Encounters[encounterID],
		Group:      group,
		Phase:      PhaseStart,
		result:     types.EncounterResult{EncounterID: encounterID},
		cardDamage: cardDamage,
	}, nil
}

// Run plays exchanges until victory, defeat or the safety cap.
func (c *Combat) Run() types.EncounterResult {
	c.hero.Ledger.ResetArmor()
	for c.Phase != PhaseEnd {
		if c.Exchange >= c.cap {
			c.outcome = types.OutcomeStalled
			c.Phase = PhaseEnd
			c.close()
			break
		}
		c.exchange()
	}
	return c.result
}

// over reports whether either side is out and, if so, marks the combat
// ended. The exchange in progress still closes normally.
func (c *Combat) over() bool {
	if c.Phase == PhaseEnd {
		return true
	}
	switch {
	case !c.hero.Alive():
		c.outcome = types.OutcomeDefeat
	case len(state.Living(c.Group)) == 0:
		c.outcome = types.OutcomeVictory
	default:
		return false
	}
	c.Phase = PhaseEnd
	return true
}

// exchange runs one enemy_roll → hero_commit → ranged_resolve →
// enemy_resolve → draw cycle, then closes the exchange.
func (c *Combat) exchange() {
	c.Exchange++
	c.fateSpent = 0
	c.attacks = c.attacks[:0]
	if a := c.hero.Ledger.Armor(); a != 0 {
		panic(fmt.Sprintf("combat: hero starts exchange %d with %d armor", c.Exchange, a))
	}

	c.dispatch([]types.Event{{Type: types.EventExchangeStart}})
	if !c.over() {
		c.enemyRoll()
		c.heroCommit()
	}
	if !c.over() {
		c.rangedResolve()
	}
	if !c.over() {
		c.enemyResolve()
	}
	if !c.over() {
		c.Phase = PhaseDraw
		n := state.ExchangeDraw(c.defs.Rules, c.Exchange) + c.hero.Ledger.Sum(types.StatDraw)
		c.hero.Deck.Draw(n)
		c.hero.Deck.EnforceHandLimit()
	}
	c.endExchange()
}

func (c *Combat) enemyRoll() {
	c.Phase = PhaseEnemyRoll
	for _, m := range state.Living(c.Group) {
		m.Roll = c.rng.Roll(resolve.Sides)
		m.Band = resolve.Monster(m.Def, m.Roll)
	}
}

func (c *Combat) heroCommit() {
	c.Phase = PhaseHeroCommit
	d := c.hero.Deck
	for _, card := range c.policy.Order(d.Hand()) {
		if c.over() {
			return
		}
		if !d.InHand(card) {
			continue
		}
		if card.Cost > 0 && !c.hero.Ledger.SpendFate(card.Cost) {
			c.result.Rejected++
			c.basicAction()
			continue
		}
		if err := d.Play(card); err != nil {
			panic(err)
		}
		if card.Slot == types.SlotUtility {
			c.resolveUtility(card)
			continue
		}
		c.attacks = append(c.attacks, commit{card: card, target: c.policy.Target(card, state.Living(c.Group))})
	}
}

// basicAction is the fallback for an unaffordable card: discard a basic
// card for 1 Armor when the telegraph outstrips current Armor, else 1
// neutral damage. Without a basic card the hero passes.
func (c *Combat) basicAction() {
	d := c.hero.Deck
	for _, card := range d.Hand() {
		if card.Rarity != types.RarityBasic {
			continue
		}
		if err := d.Discard(card); err != nil {
			panic(err)
		}
		if c.telegraph() > c.hero.Ledger.Armor() {
			c.hero.Ledger.AddArmor(1)
			return
		}
		if m := c.policy.Target(nil, state.Living(c.Group)); m != nil {
			c.flatDamage(m, []types.Effect{{Kind: types.EffectDamage, Amount: 1, DamageType: types.DamageNeutral}}, false, "")
		}
		return
	}
}

// telegraph is the cached damage of every living monster.
func (c *Combat) telegraph() int {
	total := 0
	for _, m := range state.Living(c.Group) {
		total += m.Band.Damage
	}
	return total
}

func (c *Combat) resolveUtility(card *types.Card) {
	living := state.Living(c.Group)
	target := c.policy.Target(card, living)
	snap := state.Snapshot(c.hero, c.Group, c.Exchange)
	snap.TargetVulnerable = state.Vulnerable(target, card)
	out := effects.Apply(effects.Context{Hero: c.hero, Source: card.ID, Snapshot: snap}, card.Effects)
	c.result.DamageTaken += out.HPLost
	if out.Damage > 0 && target != nil {
		c.flatDamage(target, card.Effects, out.Pierce || card.Pierce, card.ID)
	}
	c.dispatch(out.Events)
}

// flatDamage deals the damage primitives of effs to m without a dice
// pool: typed subtotals, then Armor unless pierce.
func (c *Combat) flatDamage(m *state.Monster, effs []types.Effect, pierce bool, source string) {
	byType := map[types.DamageType]int{}
	var order []types.DamageType
	for _, eff := range effs {
		if eff.Kind != types.EffectDamage {
			continue
		}
		if _, ok := byType[eff.DamageType]; !ok {
			order = append(order, eff.DamageType)
		}
		byType[eff.DamageType] += eff.Amount
	}
	t := c.targetOf(m, false)
	raw := 0
	for _, typ := range order {
		raw += resolve.Typed(byType[typ], typ, t)
	}
	dealt := raw
	if !pierce {
		dealt = max(raw-t.Armor, 0)
	}
	if dealt > 0 {
		c.hit(m, dealt, source)
		c.defeats()
	}
}

func (c *Combat) rangedResolve() {
	c.Phase = PhaseRangedResolve
	var deferred []commit
	for _, cm := range c.attacks {
		if cm.card.Slot != types.SlotRanged {
			deferred = append(deferred, cm)
			continue
		}
		if cm.target != nil {
			if _, ok := cm.target.Passive(types.PassiveRangedToMelee); ok {
				deferred = append(deferred, cm)
				continue
			}
		}
		c.resolveAttack(cm)
		if c.over() {
			return
		}
	}
	c.attacks = deferred
}

// enemyResolve applies ranged monster rows, then hero melee, then the rows
// of melee monsters still standing.
func (c *Combat) enemyResolve() {
	c.Phase = PhaseEnemyResolve
	for _, m := range state.Living(c.Group) {
		if m.Def.Kind == types.MonsterRanged {
			c.monsterAct(m)
			if c.over() {
				return
			}
		}
	}
	for _, cm := range c.attacks {
		c.resolveAttack(cm)
		if c.over() {
			return
		}
	}
	for _, m := range state.Living(c.Group) {
		if m.Def.Kind != types.MonsterRanged {
			c.monsterAct(m)
			if c.over() {
				return
			}
		}
	}
}

// monsterAct applies a monster's cached band row to the hero.
func (c *Combat) monsterAct(m *state.Monster) {
	effs := make([]types.Effect, 0, len(m.Band.Effects)+1)
	if m.Band.Damage > 0 {
		effs = append(effs, types.Effect{Kind: types.EffectDamage, Amount: m.Band.Damage})
	}
	effs = append(effs, m.Band.Effects...)
	c.monsterEffects(m.ID, effs, true)
}

// monsterEffects applies monster-sourced effects to the hero. Damage goes
// through Plate and Armor. With dispatch set, the resulting events run
// handlers once; handler effects never dispatch again.
func (c *Combat) monsterEffects(source string, effs []types.Effect, dispatch bool) {
	if len(effs) == 0 || !c.hero.Alive() {
		return
	}
	snap := state.Snapshot(c.hero, c.Group, c.Exchange)
	out := effects.Apply(effects.Context{Hero: c.hero, Source: source, Snapshot: snap}, effs)
	c.result.DamageTaken += out.HPLost
	evs := out.Events
	if out.Damage > 0 {
		incoming := max(out.Damage-c.hero.Def.Plate, 0)
		toHP, spent := resolve.Mitigate(incoming, c.hero.Ledger.Armor(), out.Pierce)
		c.hero.Ledger.SpendArmor(spent)
		if lost := c.hero.LoseHP(toHP); lost > 0 {
			c.result.DamageTaken += lost
			evs = append(evs, types.Event{
				Type: types.EventHeroDamaged,
				Data: map[string]any{"amount": lost, "source": source},
			})
		}
	}
	if dispatch {
		c.dispatch(evs)
	}
}

// dispatch runs living monsters' handlers for the events.
func (c *Combat) dispatch(evs []types.Event) {
	if len(evs) == 0 || !c.hero.Alive() {
		return
	}
	snap := state.Snapshot(c.hero, c.Group, c.Exchange)
	effs := events.Dispatch(evs, events.Handlers(c.Group), snap)
	c.monsterEffects("handler", effs, false)
}

// resolveAttack resolves a committed attack card. A dead target is
// replaced using the policy; with nobody left the card fizzles.
func (c *Combat) resolveAttack(cm commit) {
	living := state.Living(c.Group)
	if len(living) == 0 {
		return
	}
	target := cm.target
	if target == nil || !target.Alive() {
		target = c.policy.Target(cm.card, living)
	}
	card := cm.card
	l := c.hero.Ledger

	var dmg, rest []types.Effect
	for _, eff := range card.Effects {
		if eff.Kind == types.EffectDamage {
			dmg = append(dmg, eff)
		} else {
			rest = append(rest, eff)
		}
	}
	snap := state.Snapshot(c.hero, c.Group, c.Exchange)
	snap.TargetVulnerable = state.Vulnerable(target, card)
	out := effects.Apply(effects.Context{Hero: c.hero, Source: card.ID, Snapshot: snap}, rest)
	c.result.DamageTaken += out.HPLost
	c.dispatch(out.Events)
	if !c.hero.Alive() || card.Dice <= 0 || len(dmg) == 0 {
		return
	}

	req := resolve.Request{
		Dice:        card.Dice,
		Damage:      dmg,
		Primary:     dmg[0].DamageType,
		FaceBonus:   l.Sum(types.StatFace),
		DamageBonus: l.Sum(types.StatDamage),
		Pierce:      card.Pierce || out.Pierce,
		Target:      c.targetOf(target, card.AoE),
		FreeRerolls: l.Sum(types.StatReroll),
		Fate:        l.Fate(),
		FateBudget:  max(c.defs.Rules.FatePerExchange-c.fateSpent, 0),
		CritChance:  c.defs.Rules.CritDoubleChance,
	}
	targets := []*state.Monster{target}
	if card.AoE {
		targets = living
		for _, m := range living {
			if d := c.targetOf(m, true).Defense; req.Floor == 0 || d < req.Floor {
				req.Floor = d
			}
		}
	}

	res := resolve.Attack(req, c.rng)
	l.Consume(types.StatReroll, res.FreeRerollsUsed)
	if res.FateSpent > 0 {
		l.SpendFate(res.FateSpent)
		c.fateSpent += res.FateSpent
	}

	for _, m := range targets {
		h := res.Hit
		if m != target {
			h = resolve.Score(res.Dice, req, c.targetOf(m, true))
		}
		c.hit(m, h.Dealt, card.ID)
	}
	c.defeats()
}

// targetOf describes a monster as the defending side of an attack.
func (c *Combat) targetOf(m *state.Monster, aoe bool) resolve.Target {
	t := resolve.Target{
		Defense:       m.Def.Defense + c.hero.Ledger.Sum(types.StatDefense),
		Armor:         m.Def.Armor,
		HP:            m.HP,
		Vulnerability: m.Def.Vulnerability,
		Resistance:    m.Def.Resistance,
	}
	if n, ok := m.Passive(types.PassivePackShield); ok && aoe && len(state.Living(c.Group)) > 1 {
		t.Reduction = n
	}
	return t
}

// hit removes HP from a monster and credits the source card.
func (c *Combat) hit(m *state.Monster, n int, source string) {
	lost := m.LoseHP(n)
	c.result.DamageDealt += lost
	if source != "" {
		c.cardDamage[source] += lost
	}
}

// defeats emits monster_defeated for monsters that died since the last
// call. Monsters dying together are removed together.
func (c *Combat) defeats() {
	var evs []types.Event
	for _, m := range c.Group {
		if !m.Alive() && !m.Down {
			m.Down = true
			evs = append(evs, types.Event{
				Type: types.EventMonsterDefeated,
				Data: map[string]any{"monster": m.ID},
			})
		}
	}
	c.dispatch(evs)
}

// endExchange runs the end-of-exchange steps: bleed, exchange_end
// handlers, taint wounds, exchange-scope expiry, discard of played cards
// and the Armor reset.
func (c *Combat) endExchange() {
	h := c.hero
	l := h.Ledger
	if c.Phase != PhaseEnd {
		if bleed := l.Sum(types.StatBleed); bleed > 0 {
			if living := state.Living(c.Group); len(living) > 0 {
				c.hit(living[0], bleed, "bleed")
				c.defeats()
			}
		}
		c.dispatch([]types.Event{{Type: types.EventExchangeEnd}})
		if per := c.defs.Rules.TaintPerWound; per > 0 {
			c.result.DamageTaken += h.LoseHP(l.Taint() / per)
		}
	}
	c.expire(l.ResolveScopeEnd(types.ScopeExchange))
	c.expire(l.ExpireWhen(state.Snapshot(h, c.Group, c.Exchange)))
	h.Deck.EndExchange()
	l.ResetArmor()
	if err := h.Deck.Check(); err != nil {
		panic(fmt.Sprintf("combat: %v", err))
	}
	if c.over() {
		c.close()
	}
}

// expire fires the OnExpire effects of expired entries once each.
// Damage from an expiring effect lands on the first living monster.
func (c *Combat) expire(entries []ledger.Entry) {
	for _, e := range entries {
		if len(e.OnExpire) == 0 || !c.hero.Alive() {
			continue
		}
		snap := state.Snapshot(c.hero, c.Group, c.Exchange)
		out := effects.Apply(effects.Context{Hero: c.hero, Source: e.Source, Snapshot: snap}, e.OnExpire)
		c.result.DamageTaken += out.HPLost
		if living := state.Living(c.Group); out.Damage > 0 && len(living) > 0 {
			c.flatDamage(living[0], e.OnExpire, out.Pierce, e.Source)
		}
	}
}

// close expires the combat scope and records the outcome. A hero killed
// by an expiring effect after the last monster fell still loses.
func (c *Combat) close() {
	h := c.hero
	c.expire(h.Ledger.ResolveScopeEnd(types.ScopeCombat))
	h.Deck.EndExchange()
	h.Ledger.ResetArmor()
	if !h.Alive() {
		c.outcome = types.OutcomeDefeat
	}

	c.result.Outcome = c.outcome
	c.result.Exchanges = c.Exchange
	c.result.HPAfter = h.HP
	c.result.Fate = h.Ledger.Fate()
	c.result.Seals = h.Ledger.Seals()
	c.result.Taint = h.Ledger.Taint()
}
