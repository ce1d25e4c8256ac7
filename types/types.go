// Package types defines the shared data structures for the gauntlet engine.
// It holds type definitions only; behaviour lives in the engine packages.
package types

// Rarity orders cards by value. Basic cards are starting cards and are never drafted.
type Rarity int

const (
	RarityBasic Rarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
)

// Slot is the timing class of a card.
type Slot string

const (
	SlotMelee   Slot = "melee"
	SlotRanged  Slot = "ranged"
	SlotUtility Slot = "utility"
)

// DamageType tags damage so vulnerability and resistance apply per type.
type DamageType string

// Neutral damage is used by the basic discard action.
const DamageNeutral DamageType = "neutral"

// Scope is the duration of a ledger entry.
type Scope string

const (
	ScopeExchange   Scope = "exchange"
	ScopeCombat     Scope = "combat"
	ScopePersistent Scope = "persistent"
)

// Stat is the quantity a modifier adjusts.
type Stat string

const (
	StatFace    Stat = "face"    // added to each die face before comparison
	StatDamage  Stat = "damage"  // flat damage added to each attack
	StatArmor   Stat = "armor"   // added to each armor grant
	StatDraw    Stat = "draw"    // extra cards in the draw phase
	StatReroll  Stat = "reroll"  // free rerolls available
	StatDefense Stat = "defense" // added to target defense (negative helps the hero)
	StatBleed   Stat = "bleed"   // damage to the first living monster at exchange end
)

// Effect kinds. The set is closed; the loader rejects anything else.
const (
	EffectDamage    = "damage"
	EffectArmor     = "armor"
	EffectHeal      = "heal"
	EffectDraw      = "draw"
	EffectDiscard   = "discard"
	EffectReroll    = "reroll"
	EffectGainFate  = "gain_fate"
	EffectPayFate   = "pay_fate"
	EffectSeal      = "seal"
	EffectTaint     = "taint"
	EffectDrain     = "drain"
	EffectLoseHP    = "lose_hp"
	EffectArmorBurn = "armor_burn"
	EffectPierce    = "pierce"
	EffectModifier  = "modifier"
)

// Effect is a single effect primitive. Which fields matter depends on Kind.
type Effect struct {
	Kind       string
	Amount     int
	DamageType DamageType // damage
	Resource   string     // drain: "fate", "armor", "seals"
	Modifier   *ModifierDef
}

// ModifierDef describes a ledger entry registered when its card resolves.
type ModifierDef struct {
	Stat     Stat
	Amount   int
	Scope    Scope
	Cap      int // max concurrent entries from the same source; 0 = unlimited
	When     []Condition
	Until    []Condition
	OnExpire []Effect
}

// Condition is a predicate over a combat snapshot.
type Condition struct {
	Type   string // "hp_below", "armor_at_least", "enemies_at_least", ...
	Value  int
	Negate bool       // true if wrapped in Not()
	Inner  *Condition // for Not(): the negated inner condition
}

// Card is an immutable attack or utility card.
type Card struct {
	ID       string
	Name     string
	Rarity   Rarity
	Slot     Slot
	Dice     int
	Pierce   bool
	AoE      bool
	Cost     int // Fate paid at commit
	Priority int
	Effects  []Effect
}

// HeroDef is a playable hero.
type HeroDef struct {
	ID       string
	Name     string
	MaxHP    int
	Plate    int      // flat reduction of each monster hit
	Deck     []string // starting card IDs, duplicates allowed
	Upgrades []string // upgrade pool card IDs, duplicates allowed
}

// MonsterKind decides when a monster's cached roll resolves.
type MonsterKind string

const (
	MonsterMelee  MonsterKind = "melee"
	MonsterRanged MonsterKind = "ranged"
)

// Band is one row of a monster action table.
type Band struct {
	Min     int
	Max     int
	Damage  int
	Effects []Effect // abilities triggered alongside the damage
}

// Passive kinds that change combat rules rather than react to events.
const (
	PassiveRangedToMelee = "ranged_to_melee"
	PassivePackShield    = "pack_shield"
)

// Passive is a static monster ability.
type Passive struct {
	Kind   string
	Amount int
}

// EventHandler is a monster ability triggered by a combat event.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}

// MonsterDef is a monster stat block.
type MonsterDef struct {
	ID            string
	Name          string
	HP            int
	Defense       int
	Armor         int
	Vulnerability DamageType
	Resistance    DamageType
	Kind          MonsterKind
	Bands         []Band
	Passives      []Passive
	Handlers      []EventHandler
}

// Tier separates basic from elite encounters.
type Tier string

const (
	TierBasic Tier = "basic"
	TierElite Tier = "elite"
)

// EncounterDef is one combat: a group of identical monsters.
type EncounterDef struct {
	ID      string
	Name    string
	Tier    Tier
	Monster string
	Count   int
}

// CampaignDef is the encounter sequence of one playthrough.
// A non-empty Sequence is used as-is; otherwise encounters are sampled
// from the Basic and Elite pools.
type CampaignDef struct {
	Hero        string
	Sequence    []string
	Basic       []string
	BasicCount  int
	Elite       []string
	EliteCount  int
	BonusDrafts []int // 1-based combat numbers granting an extra draft
}

// Insertion is where a drafted card enters the draw pile.
type Insertion string

const (
	InsertBottom  Insertion = "bottom"
	InsertTop     Insertion = "top"
	InsertShuffle Insertion = "shuffle"
)

// RulesDef holds the numeric rule constants.
type RulesDef struct {
	HandCap          int
	FateCap          int
	SealCap          int
	StartingFate     int
	OpeningHand      int
	PostCombatDraw   int
	ExchangeDraws    []int
	FatePerExchange  int
	FatePerCombat    int
	CritDoubleChance float64
	TaintPerWound    int
	Insertion        Insertion
}

// GameDef holds catalog metadata.
type GameDef struct {
	Title   string
	Version string
}

// Combat event types monster handlers can react to.
const (
	EventExchangeStart   = "exchange_start"
	EventExchangeEnd     = "exchange_end"
	EventMonsterDefeated = "monster_defeated"
	EventHeroDamaged     = "hero_damaged"
)

// Event is emitted during combat and dispatched to monster handlers.
type Event struct {
	Type string
	Data map[string]any
}

// Outcome is how a combat ended.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeStalled Outcome = "stalled"
)

// EncounterResult records one combat of a run.
type EncounterResult struct {
	Index       int
	EncounterID string
	Outcome     Outcome
	Exchanges   int
	DamageDealt int
	DamageTaken int
	HPAfter     int
	Fate        int
	Seals       int
	Taint       int
	Rejected    int
}

// RunResult records one full playthrough.
type RunResult struct {
	Index      int
	Seed       int64
	Hero       string
	Won        bool
	Stalled    bool
	FinalHP    int
	Encounters []EncounterResult
	CardDamage map[string]int
	Drafted    []string
	RNGDraws   int64
}
