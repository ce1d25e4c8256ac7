// Package resolve implements the dice and damage rules: hero attack pools
// against a target's Defense, typed damage with vulnerability and
// resistance, armor mitigation, and monster band lookup.
package resolve

import "github.com/nathoo/gauntlet/types"

// Sides is the die size used everywhere.
const Sides = 8

// Roller is the randomness the resolver consumes. *engine.RNG satisfies it.
type Roller interface {
	Roll(sides int) int
	Chance(p float64) bool
}

// Target is the defending side of an attack.
type Target struct {
	Defense       int // already adjusted by defense modifiers
	Armor         int
	HP            int
	Vulnerability types.DamageType
	Resistance    types.DamageType
	Reduction     int // flat reduction after armor, e.g. pack shield
}

// Request describes one attack card resolution.
type Request struct {
	Dice        int
	Damage      []types.Effect // damage primitives of the card
	Primary     types.DamageType
	FaceBonus   int
	DamageBonus int
	Pierce      bool
	Target      Target

	// Floor is the lowest defense any target of the pool has; crit doubles
	// are drawn for dice reaching it. Zero means the primary target's.
	Floor int

	FreeRerolls int
	Fate        int // Fate the hero holds
	FateBudget  int // Fate spends still allowed this exchange
	CritChance  float64
}

// Die is one die of a resolved pool.
type Die struct {
	Roll     int // last natural roll
	Face     int // after face modifiers, clamped to [1,8]
	Doubled  bool
	Rerolls  int
	FateUsed int
}

// Hit is the damage one pool does to one target.
type Hit struct {
	Units         int
	ByType        map[types.DamageType]int
	Raw           int // after vulnerability and resistance, before armor
	Dealt         int
	ArmorAbsorbed int
}

// AttackResult is a full attack against the primary target.
type AttackResult struct {
	Dice            []Die
	FreeRerollsUsed int
	FateSpent       int
	Hit
}

// RollPool returns size independent rolls in [1,8].
func RollPool(size int, r Roller) []int {
	pool := make([]int, size)
	for i := range pool {
		pool[i] = r.Roll(Sides)
	}
	return pool
}

// Attack rolls the pool against the primary target, spending free rerolls
// and then Fate on failed dice, and scores the result.
func Attack(req Request, r Roller) AttackResult {
	var res AttackResult
	def := effectiveDefense(req.Target.Defense)
	floor := def
	if req.Floor > 0 {
		floor = effectiveDefense(req.Floor)
	}
	free := req.FreeRerolls
	fateLeft := min(req.Fate, req.FateBudget)
	potential := 2 * unitValue(req, req.Target)

	for range req.Dice {
		d := Die{}
		d.Roll = r.Roll(Sides)
		d.Face = face(d.Roll, req.FaceBonus)
	reroll:
		for d.Face < def {
			switch {
			case free > 0:
				free--
				res.FreeRerollsUsed++
			case fateLeft > 0 && couldKill(req, res.Dice, potential):
				fateLeft--
				d.FateUsed++
				res.FateSpent++
			default:
				break reroll
			}
			d.Rerolls++
			d.Roll = r.Roll(Sides)
			d.Face = face(d.Roll, req.FaceBonus)
		}
		if d.Face >= floor {
			d.Doubled = r.Chance(req.CritChance)
		}
		res.Dice = append(res.Dice, d)
	}
	res.Hit = Score(res.Dice, req, req.Target)
	return res
}

// Score computes the damage a rolled pool does to a target. AoE attacks
// roll once and score every target with this.
func Score(dice []Die, req Request, t Target) Hit {
	def := effectiveDefense(t.Defense)
	h := Hit{ByType: map[types.DamageType]int{}}
	for _, d := range dice {
		h.Units += units(d, def)
	}
	if h.Units == 0 {
		return h
	}
	for _, eff := range req.Damage {
		h.ByType[eff.DamageType] += h.Units * eff.Amount
	}
	if req.DamageBonus != 0 {
		h.ByType[req.Primary] += req.DamageBonus
	}
	for typ, v := range h.ByType {
		h.Raw += Typed(v, typ, t)
	}
	if req.Pierce {
		h.Dealt = h.Raw
	} else {
		h.ArmorAbsorbed = min(t.Armor, h.Raw)
		h.Dealt = h.Raw - h.ArmorAbsorbed
	}
	h.Dealt = max(h.Dealt-t.Reduction, 0)
	return h
}

// Typed applies vulnerability (double) and resistance (halve, floor) to
// one damage-type subtotal.
func Typed(v int, typ types.DamageType, t Target) int {
	if v < 0 {
		v = 0
	}
	if typ != "" && typ == t.Vulnerability {
		v *= 2
	}
	if typ != "" && typ == t.Resistance {
		v /= 2
	}
	return v
}

// Monster returns the band row a monster's 1d8 roll selects. Rolls
// outside every row select an empty band.
func Monster(def *types.MonsterDef, roll int) types.Band {
	for _, b := range def.Bands {
		if roll >= b.Min && roll <= b.Max {
			return b
		}
	}
	return types.Band{}
}

// Mitigate soaks incoming damage with armor. Pierce skips armor.
// Returns the damage reaching HP and the armor spent.
func Mitigate(damage, armor int, pierce bool) (int, int) {
	if damage <= 0 {
		return 0, 0
	}
	if pierce || armor <= 0 {
		return damage, 0
	}
	spent := min(damage, armor)
	return damage - spent, spent
}

func units(d Die, defense int) int {
	if d.Face < defense {
		return 0
	}
	n := 1
	if d.Face == Sides {
		n = 2
	}
	if d.Doubled {
		n *= 2
	}
	return n
}

func face(roll, bonus int) int {
	return min(max(roll+bonus, 1), Sides)
}

func effectiveDefense(d int) int {
	return max(d, 1)
}

// unitValue is the damage one scoring unit does to the target.
func unitValue(req Request, t Target) int {
	v := 0
	for _, eff := range req.Damage {
		v += Typed(eff.Amount, eff.DamageType, t)
	}
	return v
}

// couldKill reports whether one more scoring die could finish the target.
func couldKill(req Request, dice []Die, potential int) bool {
	so := Score(dice, req, req.Target)
	remaining := req.Target.HP - so.Dealt
	if !req.Pierce {
		remaining += max(req.Target.Armor-so.Raw, 0)
	}
	return remaining > 0 && remaining <= potential
}
