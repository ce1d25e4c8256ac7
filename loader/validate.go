package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/gauntlet/engine/ledger"
	"github.com/nathoo/gauntlet/engine/resolve"
	"github.com/nathoo/gauntlet/engine/rules"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validEffectKinds = map[string]bool{
	types.EffectDamage:    true,
	types.EffectArmor:     true,
	types.EffectHeal:      true,
	types.EffectDraw:      true,
	types.EffectDiscard:   true,
	types.EffectReroll:    true,
	types.EffectGainFate:  true,
	types.EffectPayFate:   true,
	types.EffectSeal:      true,
	types.EffectTaint:     true,
	types.EffectDrain:     true,
	types.EffectLoseHP:    true,
	types.EffectArmorBurn: true,
	types.EffectPierce:    true,
	types.EffectModifier:  true,
}

var validStats = map[types.Stat]bool{
	types.StatFace:    true,
	types.StatDamage:  true,
	types.StatArmor:   true,
	types.StatDraw:    true,
	types.StatReroll:  true,
	types.StatDefense: true,
	types.StatBleed:   true,
}

var validScopes = map[types.Scope]bool{
	types.ScopeExchange:   true,
	types.ScopeCombat:     true,
	types.ScopePersistent: true,
}

var validResources = map[string]bool{
	ledger.ResourceFate:  true,
	ledger.ResourceArmor: true,
	ledger.ResourceSeals: true,
}

var validEvents = map[string]bool{
	types.EventExchangeStart:   true,
	types.EventExchangeEnd:     true,
	types.EventMonsterDefeated: true,
	types.EventHeroDamaged:     true,
}

var validPassives = map[string]bool{
	types.PassiveRangedToMelee: true,
	types.PassivePackShield:    true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Warnings are returned even when validation passes.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}
	validateRules(defs.Rules, ve)

	if len(defs.Cards) == 0 {
		ve.errorf("catalog defines no cards")
	}
	for _, id := range sortedKeys(defs.Cards) {
		validateCard(defs.Cards[id], ve)
	}

	if len(defs.Heroes) == 0 {
		ve.errorf("catalog defines no heroes")
	}
	for _, id := range sortedKeys(defs.Heroes) {
		validateHero(defs.Heroes[id], defs, ve)
	}

	for _, id := range sortedKeys(defs.Monsters) {
		validateMonster(defs.Monsters[id], ve)
	}

	for _, id := range sortedKeys(defs.Encounters) {
		enc := defs.Encounters[id]
		if _, ok := defs.Monsters[enc.Monster]; !ok {
			ve.errorf("encounter %q references undefined monster %q", id, enc.Monster)
		}
		if enc.Count < 1 {
			ve.errorf("encounter %q count must be at least 1, got %d", id, enc.Count)
		}
		if enc.Tier != types.TierBasic && enc.Tier != types.TierElite {
			ve.errorf("encounter %q has unknown tier %q", id, enc.Tier)
		}
	}

	validateCampaign(defs, ve)

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateRules(r types.RulesDef, ve *ValidationError) {
	if r.HandCap < 1 {
		ve.errorf("Rules.hand_cap must be at least 1, got %d", r.HandCap)
	}
	for name, v := range map[string]int{
		"fate_cap":          r.FateCap,
		"seal_cap":          r.SealCap,
		"starting_fate":     r.StartingFate,
		"opening_hand":      r.OpeningHand,
		"post_combat_draw":  r.PostCombatDraw,
		"fate_per_exchange": r.FatePerExchange,
		"fate_per_combat":   r.FatePerCombat,
		"taint_per_wound":   r.TaintPerWound,
	} {
		if v < 0 {
			ve.errorf("Rules.%s must not be negative, got %d", name, v)
		}
	}
	if r.CritDoubleChance < 0 || r.CritDoubleChance > 1 {
		ve.errorf("Rules.crit_double_chance must be in [0,1], got %v", r.CritDoubleChance)
	}
	for i, n := range r.ExchangeDraws {
		if n < 0 {
			ve.errorf("Rules.exchange_draws[%d] must not be negative, got %d", i, n)
		}
	}
	switch r.Insertion {
	case types.InsertBottom, types.InsertTop, types.InsertShuffle:
	default:
		ve.errorf("Rules.insertion %q is not one of bottom, top, shuffle", r.Insertion)
	}
	if r.StartingFate > r.FateCap {
		ve.warnf("Rules.starting_fate %d exceeds fate_cap %d and will be capped", r.StartingFate, r.FateCap)
	}
}

func validateCard(c *types.Card, ve *ValidationError) {
	where := fmt.Sprintf("card %q", c.ID)
	if c.Dice < 0 {
		ve.errorf("%s dice must not be negative", where)
	}
	if c.Cost < 0 {
		ve.errorf("%s cost must not be negative", where)
	}
	if c.Slot != types.SlotUtility && c.Dice == 0 {
		ve.warnf("%s is an attack card with no dice", where)
	}
	if c.Slot == types.SlotUtility && (c.AoE || c.Pierce) {
		ve.warnf("%s is a utility card; aoe and pierce have no effect", where)
	}
	validateEffects(where, c.Effects, ve)
}

func validateHero(h types.HeroDef, defs *state.Defs, ve *ValidationError) {
	where := fmt.Sprintf("hero %q", h.ID)
	if h.MaxHP < 1 {
		ve.errorf("%s max_hp must be at least 1, got %d", where, h.MaxHP)
	}
	if h.Plate < 0 {
		ve.errorf("%s plate must not be negative", where)
	}
	if len(h.Deck) == 0 {
		ve.errorf("%s has an empty starting deck", where)
	}
	for _, id := range h.Deck {
		if _, ok := defs.Cards[id]; !ok {
			ve.errorf("%s deck references undefined card %q", where, id)
		}
	}
	seen := map[string]bool{}
	for _, id := range h.Upgrades {
		if seen[id] {
			ve.warnf("%s upgrade pool lists %q more than once; copies multiply its rarity weight", where, id)
		}
		seen[id] = true
		c, ok := defs.Cards[id]
		if !ok {
			ve.errorf("%s upgrade pool references undefined card %q", where, id)
			continue
		}
		if c.Rarity == types.RarityBasic {
			ve.errorf("%s upgrade pool contains basic card %q", where, id)
		}
	}
}

func validateMonster(m types.MonsterDef, ve *ValidationError) {
	where := fmt.Sprintf("monster %q", m.ID)
	if m.HP < 1 {
		ve.errorf("%s hp must be at least 1, got %d", where, m.HP)
	}
	if m.Defense < 1 {
		ve.errorf("%s defense must be at least 1, got %d", where, m.Defense)
	} else if m.Defense > resolve.Sides {
		ve.warnf("%s defense %d can only be hit with face bonuses", where, m.Defense)
	}
	if m.Armor < 0 {
		ve.errorf("%s armor must not be negative", where)
	}
	if m.Kind != types.MonsterMelee && m.Kind != types.MonsterRanged {
		ve.errorf("%s has unknown kind %q", where, m.Kind)
	}
	validateBands(where, m.Bands, ve)
	for _, p := range m.Passives {
		if !validPassives[p.Kind] {
			ve.errorf("%s has unknown passive %q", where, p.Kind)
		}
	}
	for _, h := range m.Handlers {
		if !validEvents[h.EventType] {
			ve.errorf("%s handles unknown event %q", where, h.EventType)
		}
		validateConditions(where, h.Conditions, ve)
		validateEffects(where, h.Effects, ve)
	}
}

// validateBands requires the rows, sorted by Min, to cover 1..Sides with
// no gaps or overlaps.
func validateBands(where string, bands []types.Band, ve *ValidationError) {
	if len(bands) == 0 {
		ve.errorf("%s has no damage bands", where)
		return
	}
	next := 1
	for _, b := range bands {
		if b.Min != next || b.Max < b.Min {
			ve.errorf("%s bands do not partition 1-%d: row %d-%d follows %d", where, resolve.Sides, b.Min, b.Max, next-1)
			return
		}
		if b.Damage < 0 {
			ve.errorf("%s band %d-%d has negative damage", where, b.Min, b.Max)
		}
		validateEffects(where, b.Effects, ve)
		next = b.Max + 1
	}
	if next != resolve.Sides+1 {
		ve.errorf("%s bands do not partition 1-%d: last row ends at %d", where, resolve.Sides, next-1)
	}
	if len(bands) != 4 {
		ve.warnf("%s has %d bands, expected 4", where, len(bands))
	}
}

func validateConditions(where string, conds []types.Condition, ve *ValidationError) {
	for _, c := range conds {
		if !rules.Valid(c.Type) {
			ve.errorf("%s uses unknown condition type %q", where, c.Type)
		}
		if c.Type == "not" {
			if c.Inner == nil {
				ve.errorf("%s has Not() without a condition", where)
			} else {
				validateConditions(where, []types.Condition{*c.Inner}, ve)
			}
		}
	}
}

func validateEffects(where string, effs []types.Effect, ve *ValidationError) {
	for _, e := range effs {
		if !validEffectKinds[e.Kind] {
			ve.errorf("%s uses unknown effect kind %q", where, e.Kind)
			continue
		}
		if e.Amount < 0 && e.Kind != types.EffectModifier {
			ve.errorf("%s effect %s has negative amount %d", where, e.Kind, e.Amount)
		}
		switch e.Kind {
		case types.EffectDamage:
			if e.DamageType == "" {
				ve.errorf("%s damage effect has no damage type", where)
			}
		case types.EffectDrain:
			if !validResources[e.Resource] {
				ve.errorf("%s drains unknown resource %q", where, e.Resource)
			}
		case types.EffectModifier:
			m := e.Modifier
			if m == nil {
				ve.errorf("%s modifier effect has no definition", where)
				continue
			}
			if !validStats[m.Stat] {
				ve.errorf("%s modifier has unknown stat %q", where, m.Stat)
			}
			if !validScopes[m.Scope] {
				ve.errorf("%s modifier has unknown scope %q", where, m.Scope)
			}
			if m.Cap < 0 {
				ve.errorf("%s modifier cap must not be negative", where)
			}
			if len(m.Until) > 0 && m.Scope != types.ScopePersistent {
				ve.warnf("%s modifier has until conditions but %s scope", where, m.Scope)
			}
			validateConditions(where, m.When, ve)
			validateConditions(where, m.Until, ve)
			validateEffects(where, m.OnExpire, ve)
		}
	}
}

func validateCampaign(defs *state.Defs, ve *ValidationError) {
	camp := defs.Campaign
	hero, ok := defs.Heroes[camp.Hero]
	if !ok {
		ve.errorf("campaign hero %q is not defined", camp.Hero)
	}

	combats := 0
	if len(camp.Sequence) > 0 {
		combats = len(camp.Sequence)
		for _, id := range camp.Sequence {
			if _, ok := defs.Encounters[id]; !ok {
				ve.errorf("campaign sequence references undefined encounter %q", id)
			}
		}
		if len(camp.Basic) > 0 || len(camp.Elite) > 0 {
			ve.warnf("campaign has a fixed sequence; basic and elite pools are ignored")
		}
	} else {
		combats = camp.BasicCount + camp.EliteCount
		validatePool(defs, "basic", camp.Basic, camp.BasicCount, types.TierBasic, ve)
		validatePool(defs, "elite", camp.Elite, camp.EliteCount, types.TierElite, ve)
	}
	if combats == 0 {
		ve.errorf("campaign has no encounters")
		return
	}

	drafts := combats - 1
	for _, b := range camp.BonusDrafts {
		if b < 1 || b >= combats {
			ve.warnf("campaign bonus draft after combat %d never happens", b)
			continue
		}
		drafts++
	}
	if !ok {
		return
	}
	if len(hero.Upgrades) < drafts {
		ve.errorf("hero %q upgrade pool has %d cards but the campaign drafts %d", hero.ID, len(hero.Upgrades), drafts)
	}
	for _, id := range sortedKeys(defs.Heroes) {
		if h := defs.Heroes[id]; id != hero.ID && len(h.Upgrades) < drafts {
			ve.warnf("hero %q upgrade pool has %d cards but the campaign drafts %d", id, len(h.Upgrades), drafts)
		}
	}
}

func validatePool(defs *state.Defs, name string, ids []string, count int, tier types.Tier, ve *ValidationError) {
	if count < 0 {
		ve.errorf("campaign %s_count must not be negative", name)
	}
	if count > len(ids) {
		ve.errorf("campaign wants %d %s encounters from a pool of %d", count, name, len(ids))
	}
	for _, id := range ids {
		enc, ok := defs.Encounters[id]
		if !ok {
			ve.errorf("campaign %s pool references undefined encounter %q", name, id)
			continue
		}
		if enc.Tier != tier {
			ve.warnf("campaign %s pool contains %s encounter %q", name, enc.Tier, id)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
