package resolve

import (
	"testing"

	"github.com/nathoo/gauntlet/types"
)

// script is a Roller that replays fixed rolls and crit outcomes.
type script struct {
	rolls  []int
	crits  []bool
	chance []float64
}

func (s *script) Roll(sides int) int {
	if len(s.rolls) == 0 {
		panic("script: out of rolls")
	}
	r := s.rolls[0]
	s.rolls = s.rolls[1:]
	return r
}

func (s *script) Chance(p float64) bool {
	s.chance = append(s.chance, p)
	if len(s.crits) == 0 {
		return false
	}
	c := s.crits[0]
	s.crits = s.crits[1:]
	return c
}

func physical(n int) []types.Effect {
	return []types.Effect{{Kind: types.EffectDamage, Amount: n, DamageType: "physical"}}
}

func TestRollPool_Range(t *testing.T) {
	s := &script{rolls: []int{1, 8, 4}}
	pool := RollPool(3, s)
	if len(pool) != 3 || pool[0] != 1 || pool[1] != 8 || pool[2] != 4 {
		t.Fatalf("unexpected pool %v", pool)
	}
}

func TestAttack_CritFaceScoresTwoUnits(t *testing.T) {
	tests := []struct {
		name  string
		rolls []int
		crits []bool
		want  int
	}{
		{"miss", []int{3}, nil, 0},
		{"hit", []int{5}, []bool{false}, 1},
		{"eight", []int{8}, []bool{false}, 2},
		{"eight doubled", []int{8}, []bool{true}, 4},
		{"hit doubled", []int{6}, []bool{true}, 2},
		{"mixed pool", []int{8, 5, 2}, []bool{false, false}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &script{rolls: tt.rolls, crits: tt.crits}
			res := Attack(Request{
				Dice:       len(tt.rolls),
				Damage:     physical(1),
				Target:     Target{Defense: 5, HP: 99},
				CritChance: 0.2,
			}, s)
			if res.Units != tt.want {
				t.Errorf("expected %d units, got %d", tt.want, res.Units)
			}
		})
	}
}

func TestAttack_CritDrawnOnlyForHits(t *testing.T) {
	s := &script{rolls: []int{2, 7}}
	Attack(Request{Dice: 2, Damage: physical(1), Target: Target{Defense: 5, HP: 99}, CritChance: 0.2}, s)
	if len(s.chance) != 1 || s.chance[0] != 0.2 {
		t.Errorf("expected one crit draw at 0.2, got %v", s.chance)
	}
}

func TestAttack_FaceBonusBeforeComparison(t *testing.T) {
	// 7 + 1 = 8: scores as a crit face.
	s := &script{rolls: []int{7}, crits: []bool{false}}
	res := Attack(Request{Dice: 1, Damage: physical(1), FaceBonus: 1, Target: Target{Defense: 5, HP: 99}}, s)
	if res.Dice[0].Face != 8 || res.Units != 2 {
		t.Errorf("face=%d units=%d", res.Dice[0].Face, res.Units)
	}
	// Faces clamp to 8.
	s = &script{rolls: []int{8}, crits: []bool{false}}
	res = Attack(Request{Dice: 1, Damage: physical(1), FaceBonus: 3, Target: Target{Defense: 5, HP: 99}}, s)
	if res.Dice[0].Face != 8 {
		t.Errorf("face not clamped: %d", res.Dice[0].Face)
	}
}

func TestScore_VulnerabilityAndPierce(t *testing.T) {
	dice := []Die{{Face: 6}, {Face: 5}} // 2 units
	req := Request{
		Damage: []types.Effect{
			{Kind: types.EffectDamage, Amount: 2, DamageType: "fire"},
			{Kind: types.EffectDamage, Amount: 1, DamageType: "physical"},
		},
	}
	target := Target{Defense: 5, Armor: 3, Vulnerability: "fire"}

	// raw fire = 4, doubled = 8; physical = 2.
	h := Score(dice, req, target)
	if h.Raw != 10 || h.Dealt != 7 || h.ArmorAbsorbed != 3 {
		t.Errorf("armored: raw=%d dealt=%d absorbed=%d", h.Raw, h.Dealt, h.ArmorAbsorbed)
	}

	req.Pierce = true
	h = Score(dice, req, target)
	if h.Dealt != 2*4+2 || h.ArmorAbsorbed != 0 {
		t.Errorf("pierced: dealt=%d absorbed=%d", h.Dealt, h.ArmorAbsorbed)
	}
}

func TestScore_ResistanceAndFloor(t *testing.T) {
	dice := []Die{{Face: 5}, {Face: 5}, {Face: 5}}
	req := Request{Damage: []types.Effect{{Kind: types.EffectDamage, Amount: 1, DamageType: "frost"}}}
	h := Score(dice, req, Target{Defense: 5, Armor: 5, Resistance: "frost"})
	if h.Raw != 1 || h.Dealt != 0 {
		t.Errorf("raw=%d dealt=%d", h.Raw, h.Dealt)
	}
}

func TestScore_BonusAndReduction(t *testing.T) {
	dice := []Die{{Face: 7}}
	req := Request{Damage: physical(2), Primary: "physical", DamageBonus: 1}
	h := Score(dice, req, Target{Defense: 4, Reduction: 1})
	if h.Raw != 3 || h.Dealt != 2 {
		t.Errorf("raw=%d dealt=%d", h.Raw, h.Dealt)
	}
	// No bonus without a hit.
	h = Score([]Die{{Face: 1}}, req, Target{Defense: 4})
	if h.Raw != 0 {
		t.Errorf("bonus applied on a miss: %d", h.Raw)
	}
}

func TestScore_DefenseFloorIsOne(t *testing.T) {
	h := Score([]Die{{Face: 1}}, Request{Damage: physical(1)}, Target{Defense: -2})
	if h.Units != 1 {
		t.Errorf("expected a hit against defense clamped to 1, got %d units", h.Units)
	}
}

func TestAttack_FreeRerollsFirst(t *testing.T) {
	s := &script{rolls: []int{2, 6}, crits: []bool{false}}
	res := Attack(Request{Dice: 1, Damage: physical(1), Target: Target{Defense: 5, HP: 1}, FreeRerolls: 1, Fate: 2, FateBudget: 2}, s)
	if res.FreeRerollsUsed != 1 || res.FateSpent != 0 || res.Units != 1 {
		t.Errorf("free=%d fate=%d units=%d", res.FreeRerollsUsed, res.FateSpent, res.Units)
	}
}

func TestAttack_FateOnlyWhenKillPossible(t *testing.T) {
	// Target at 2 HP: one more scoring die (potential 2) could kill.
	s := &script{rolls: []int{1, 1, 6}, crits: []bool{false}}
	res := Attack(Request{Dice: 1, Damage: physical(1), Target: Target{Defense: 5, HP: 2}, Fate: 5, FateBudget: 2}, s)
	if res.FateSpent != 2 || res.Units != 1 {
		t.Errorf("fate=%d units=%d", res.FateSpent, res.Units)
	}

	// Target at 10 HP: no die can finish it, so Fate is kept.
	s = &script{rolls: []int{1}}
	res = Attack(Request{Dice: 1, Damage: physical(1), Target: Target{Defense: 5, HP: 10}, Fate: 5, FateBudget: 2}, s)
	if res.FateSpent != 0 {
		t.Errorf("fate spent without a kill chance: %d", res.FateSpent)
	}
}

func TestAttack_FateCappedByBudgetAndPool(t *testing.T) {
	s := &script{rolls: []int{1, 1, 1}}
	res := Attack(Request{Dice: 1, Damage: physical(1), Target: Target{Defense: 5, HP: 1}, Fate: 5, FateBudget: 2}, s)
	if res.FateSpent != 2 {
		t.Errorf("expected budget cap of 2, spent %d", res.FateSpent)
	}
	s = &script{rolls: []int{1, 1}}
	res = Attack(Request{Dice: 1, Damage: physical(1), Target: Target{Defense: 5, HP: 1}, Fate: 1, FateBudget: 2}, s)
	if res.FateSpent != 1 {
		t.Errorf("expected pool cap of 1, spent %d", res.FateSpent)
	}
}

func TestMonster_BandLookup(t *testing.T) {
	def := &types.MonsterDef{Bands: []types.Band{
		{Min: 1, Max: 2, Damage: 0},
		{Min: 3, Max: 4, Damage: 1},
		{Min: 5, Max: 6, Damage: 2},
		{Min: 7, Max: 8, Damage: 4, Effects: []types.Effect{{Kind: types.EffectPierce}}},
	}}
	tests := []struct {
		roll int
		want int
	}{
		{1, 0}, {2, 0}, {3, 1}, {6, 2}, {7, 4}, {8, 4}, {9, 0},
	}
	for _, tt := range tests {
		if got := Monster(def, tt.roll).Damage; got != tt.want {
			t.Errorf("roll %d: damage %d, want %d", tt.roll, got, tt.want)
		}
	}
}

func TestMitigate(t *testing.T) {
	tests := []struct {
		name              string
		damage, armor     int
		pierce            bool
		wantHP, wantSpent int
	}{
		{"no armor", 3, 0, false, 3, 0},
		{"partial soak", 3, 2, false, 1, 2},
		{"full soak", 3, 5, false, 0, 3},
		{"pierce", 3, 5, true, 3, 0},
		{"zero damage", 0, 5, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp, spent := Mitigate(tt.damage, tt.armor, tt.pierce)
			if hp != tt.wantHP || spent != tt.wantSpent {
				t.Errorf("got (%d, %d), want (%d, %d)", hp, spent, tt.wantHP, tt.wantSpent)
			}
		})
	}
}
