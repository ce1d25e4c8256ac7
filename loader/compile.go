// Package loader reads a content catalog into immutable definitions.
// Lua files run in a sandboxed VM that is discarded after loading; YAML
// files decode into the same documents. Nothing is interpreted at run time.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// DefaultDamageType tags attack cards that declare no damage effect.
const DefaultDamageType types.DamageType = "physical"

// catalog is the merged content of every file before compilation.
type catalog struct {
	Game       *gameDoc       `yaml:"game"`
	Rules      *rulesDoc      `yaml:"rules"`
	Cards      []cardDoc      `yaml:"cards"`
	Heroes     []heroDoc      `yaml:"heroes"`
	Monsters   []monsterDoc   `yaml:"monsters"`
	Encounters []encounterDoc `yaml:"encounters"`
	Campaign   *campaignDoc   `yaml:"campaign"`
}

type gameDoc struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// rulesDoc overrides the default rule constants field by field.
type rulesDoc struct {
	HandCap          *int     `yaml:"hand_cap"`
	FateCap          *int     `yaml:"fate_cap"`
	SealCap          *int     `yaml:"seal_cap"`
	StartingFate     *int     `yaml:"starting_fate"`
	OpeningHand      *int     `yaml:"opening_hand"`
	PostCombatDraw   *int     `yaml:"post_combat_draw"`
	ExchangeDraws    []int    `yaml:"exchange_draws"`
	FatePerExchange  *int     `yaml:"fate_per_exchange"`
	FatePerCombat    *int     `yaml:"fate_per_combat"`
	CritDoubleChance *float64 `yaml:"crit_double_chance"`
	TaintPerWound    *int     `yaml:"taint_per_wound"`
	Insertion        string   `yaml:"insertion"`
}

type conditionDoc struct {
	Type  string        `yaml:"type"`
	Value int           `yaml:"value"`
	Inner *conditionDoc `yaml:"inner"`
}

type effectDoc struct {
	Kind       string         `yaml:"kind"`
	Amount     int            `yaml:"amount"`
	DamageType string         `yaml:"damage_type"`
	Resource   string         `yaml:"resource"`
	Stat       string         `yaml:"stat"`
	Scope      string         `yaml:"scope"`
	Cap        int            `yaml:"cap"`
	When       []conditionDoc `yaml:"when"`
	Until      []conditionDoc `yaml:"until"`
	OnExpire   []effectDoc    `yaml:"on_expire"`
}

type cardDoc struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Rarity   string      `yaml:"rarity"`
	Slot     string      `yaml:"slot"`
	Dice     int         `yaml:"dice"`
	Pierce   bool        `yaml:"pierce"`
	AoE      bool        `yaml:"aoe"`
	Cost     int         `yaml:"cost"`
	Priority int         `yaml:"priority"`
	Effects  []effectDoc `yaml:"effects"`
}

type heroDoc struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	MaxHP    int      `yaml:"max_hp"`
	Plate    int      `yaml:"plate"`
	Deck     []string `yaml:"deck"`
	Upgrades []string `yaml:"upgrades"`
}

type bandDoc struct {
	Min     int         `yaml:"min"`
	Max     int         `yaml:"max"`
	Damage  int         `yaml:"damage"`
	Effects []effectDoc `yaml:"effects"`
}

type passiveDoc struct {
	Kind   string `yaml:"kind"`
	Amount int    `yaml:"amount"`
}

type handlerDoc struct {
	Event      string         `yaml:"event"`
	Conditions []conditionDoc `yaml:"conditions"`
	Effects    []effectDoc    `yaml:"effects"`
}

type monsterDoc struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	HP            int          `yaml:"hp"`
	Defense       int          `yaml:"defense"`
	Armor         int          `yaml:"armor"`
	Vulnerability string       `yaml:"vulnerability"`
	Resistance    string       `yaml:"resistance"`
	Kind          string       `yaml:"kind"`
	Bands         []bandDoc    `yaml:"bands"`
	Passives      []passiveDoc `yaml:"passives"`
	Handlers      []handlerDoc `yaml:"handlers"`
}

type encounterDoc struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Tier    string `yaml:"tier"`
	Monster string `yaml:"monster"`
	Count   int    `yaml:"count"`
}

type campaignDoc struct {
	Hero        string   `yaml:"hero"`
	Sequence    []string `yaml:"sequence"`
	Basic       []string `yaml:"basic"`
	BasicCount  int      `yaml:"basic_count"`
	Elite       []string `yaml:"elite"`
	EliteCount  int      `yaml:"elite_count"`
	BonusDrafts []int    `yaml:"bonus_drafts"`
}

// merge appends other into c. Singular blocks defined twice are an error.
func (c *catalog) merge(other catalog, file string) error {
	if other.Game != nil {
		if c.Game != nil {
			return fmt.Errorf("%s: Game defined more than once", file)
		}
		c.Game = other.Game
	}
	if other.Rules != nil {
		if c.Rules != nil {
			return fmt.Errorf("%s: Rules defined more than once", file)
		}
		c.Rules = other.Rules
	}
	if other.Campaign != nil {
		if c.Campaign != nil {
			return fmt.Errorf("%s: Campaign defined more than once", file)
		}
		c.Campaign = other.Campaign
	}
	c.Cards = append(c.Cards, other.Cards...)
	c.Heroes = append(c.Heroes, other.Heroes...)
	c.Monsters = append(c.Monsters, other.Monsters...)
	c.Encounters = append(c.Encounters, other.Encounters...)
	return nil
}

var rarities = map[string]types.Rarity{
	"basic":    types.RarityBasic,
	"common":   types.RarityCommon,
	"uncommon": types.RarityUncommon,
	"rare":     types.RarityRare,
}

// compile converts the merged catalog into Defs. Structural problems that
// leave a definition meaningless fail here; cross references are checked
// by validate.
func compile(cat *catalog) (*state.Defs, error) {
	if cat.Game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs := &state.Defs{
		Game:       types.GameDef{Title: cat.Game.Title, Version: cat.Game.Version},
		Rules:      compileRules(cat.Rules),
		Cards:      map[string]*types.Card{},
		Heroes:     map[string]types.HeroDef{},
		Monsters:   map[string]types.MonsterDef{},
		Encounters: map[string]types.EncounterDef{},
	}

	for _, raw := range cat.Cards {
		if _, dup := defs.Cards[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate card %q", raw.ID)
		}
		card, err := compileCard(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling card %s: %w", raw.ID, err)
		}
		defs.Cards[card.ID] = card
	}

	for _, raw := range cat.Heroes {
		if _, dup := defs.Heroes[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate hero %q", raw.ID)
		}
		defs.Heroes[raw.ID] = types.HeroDef{
			ID:       raw.ID,
			Name:     nameOr(raw.Name, raw.ID),
			MaxHP:    raw.MaxHP,
			Plate:    raw.Plate,
			Deck:     raw.Deck,
			Upgrades: raw.Upgrades,
		}
	}

	for _, raw := range cat.Monsters {
		if _, dup := defs.Monsters[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate monster %q", raw.ID)
		}
		defs.Monsters[raw.ID] = compileMonster(raw)
	}

	for _, raw := range cat.Encounters {
		if _, dup := defs.Encounters[raw.ID]; dup {
			return nil, fmt.Errorf("duplicate encounter %q", raw.ID)
		}
		count := raw.Count
		if count == 0 {
			count = 1
		}
		defs.Encounters[raw.ID] = types.EncounterDef{
			ID:      raw.ID,
			Name:    nameOr(raw.Name, raw.ID),
			Tier:    types.Tier(nameOr(raw.Tier, string(types.TierBasic))),
			Monster: raw.Monster,
			Count:   count,
		}
	}

	if cat.Campaign != nil {
		c := cat.Campaign
		defs.Campaign = types.CampaignDef{
			Hero:        c.Hero,
			Sequence:    c.Sequence,
			Basic:       c.Basic,
			BasicCount:  c.BasicCount,
			Elite:       c.Elite,
			EliteCount:  c.EliteCount,
			BonusDrafts: c.BonusDrafts,
		}
	}
	if defs.Campaign.Hero == "" && len(defs.Heroes) == 1 {
		for id := range defs.Heroes {
			defs.Campaign.Hero = id
		}
	}

	return defs, nil
}

func compileRules(raw *rulesDoc) types.RulesDef {
	r := state.DefaultRules()
	if raw == nil {
		return r
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&r.HandCap, raw.HandCap)
	setInt(&r.FateCap, raw.FateCap)
	setInt(&r.SealCap, raw.SealCap)
	setInt(&r.StartingFate, raw.StartingFate)
	setInt(&r.OpeningHand, raw.OpeningHand)
	setInt(&r.PostCombatDraw, raw.PostCombatDraw)
	setInt(&r.FatePerExchange, raw.FatePerExchange)
	setInt(&r.FatePerCombat, raw.FatePerCombat)
	setInt(&r.TaintPerWound, raw.TaintPerWound)
	if raw.CritDoubleChance != nil {
		r.CritDoubleChance = *raw.CritDoubleChance
	}
	if raw.ExchangeDraws != nil {
		r.ExchangeDraws = raw.ExchangeDraws
	}
	if raw.Insertion != "" {
		r.Insertion = types.Insertion(raw.Insertion)
	}
	return r
}

func compileCard(raw cardDoc) (*types.Card, error) {
	rarity, ok := rarities[nameOr(raw.Rarity, "common")]
	if !ok {
		return nil, fmt.Errorf("unknown rarity %q", raw.Rarity)
	}
	slot := types.Slot(raw.Slot)
	switch slot {
	case types.SlotMelee, types.SlotRanged, types.SlotUtility:
	default:
		return nil, fmt.Errorf("unknown slot %q", raw.Slot)
	}
	card := &types.Card{
		ID:       raw.ID,
		Name:     nameOr(raw.Name, raw.ID),
		Rarity:   rarity,
		Slot:     slot,
		Dice:     raw.Dice,
		Pierce:   raw.Pierce,
		AoE:      raw.AoE,
		Cost:     raw.Cost,
		Priority: raw.Priority,
		Effects:  compileEffects(raw.Effects),
	}
	if slot != types.SlotUtility && card.Dice > 0 && !hasDamage(card.Effects) {
		card.Effects = append(card.Effects, types.Effect{
			Kind:       types.EffectDamage,
			Amount:     1,
			DamageType: DefaultDamageType,
		})
	}
	return card, nil
}

func hasDamage(effs []types.Effect) bool {
	for _, e := range effs {
		if e.Kind == types.EffectDamage {
			return true
		}
	}
	return false
}

func compileMonster(raw monsterDoc) types.MonsterDef {
	m := types.MonsterDef{
		ID:            raw.ID,
		Name:          nameOr(raw.Name, raw.ID),
		HP:            raw.HP,
		Defense:       raw.Defense,
		Armor:         raw.Armor,
		Vulnerability: types.DamageType(raw.Vulnerability),
		Resistance:    types.DamageType(raw.Resistance),
		Kind:          types.MonsterKind(nameOr(raw.Kind, string(types.MonsterMelee))),
	}
	for _, b := range raw.Bands {
		m.Bands = append(m.Bands, types.Band{
			Min:     b.Min,
			Max:     b.Max,
			Damage:  b.Damage,
			Effects: compileEffects(b.Effects),
		})
	}
	sort.SliceStable(m.Bands, func(i, j int) bool { return m.Bands[i].Min < m.Bands[j].Min })
	for _, p := range raw.Passives {
		m.Passives = append(m.Passives, types.Passive{Kind: p.Kind, Amount: p.Amount})
	}
	for _, h := range raw.Handlers {
		m.Handlers = append(m.Handlers, types.EventHandler{
			EventType:  h.Event,
			Conditions: compileConditions(h.Conditions),
			Effects:    compileEffects(h.Effects),
		})
	}
	return m
}

func compileConditions(raw []conditionDoc) []types.Condition {
	var conds []types.Condition
	for _, c := range raw {
		conds = append(conds, compileCondition(c))
	}
	return conds
}

func compileCondition(raw conditionDoc) types.Condition {
	if raw.Type == "not" && raw.Inner != nil {
		inner := compileCondition(*raw.Inner)
		return types.Condition{Type: "not", Negate: true, Inner: &inner}
	}
	return types.Condition{Type: raw.Type, Value: raw.Value}
}

func compileEffects(raw []effectDoc) []types.Effect {
	var effs []types.Effect
	for _, e := range raw {
		effs = append(effs, compileEffect(e))
	}
	return effs
}

func compileEffect(raw effectDoc) types.Effect {
	eff := types.Effect{
		Kind:     raw.Kind,
		Amount:   raw.Amount,
		Resource: raw.Resource,
	}
	if raw.Kind == types.EffectDamage {
		eff.DamageType = types.DamageType(nameOr(raw.DamageType, string(DefaultDamageType)))
	}
	if raw.Kind == types.EffectModifier {
		eff.Modifier = &types.ModifierDef{
			Stat:     types.Stat(raw.Stat),
			Amount:   raw.Amount,
			Scope:    types.Scope(nameOr(raw.Scope, string(types.ScopeExchange))),
			Cap:      raw.Cap,
			When:     compileConditions(raw.When),
			Until:    compileConditions(raw.Until),
			OnExpire: compileEffects(raw.OnExpire),
		}
	}
	return eff
}

func nameOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
