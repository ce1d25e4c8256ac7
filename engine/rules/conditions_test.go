package rules

import (
	"testing"

	"github.com/nathoo/gauntlet/types"
)

func condTestSnapshot() Snapshot {
	return Snapshot{
		HeroHP:           8,
		HeroMaxHP:        25,
		Armor:            2,
		Fate:             3,
		Seals:            1,
		Taint:            4,
		Exchange:         2,
		LivingEnemies:    3,
		TargetVulnerable: true,
	}
}

func TestEvalCondition(t *testing.T) {
	s := condTestSnapshot()

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{"hp_below: under threshold", types.Condition{Type: "hp_below", Value: 10}, true},
		{"hp_below: at threshold", types.Condition{Type: "hp_below", Value: 8}, false},
		{"hp_at_least: equal", types.Condition{Type: "hp_at_least", Value: 8}, true},
		{"armor_at_least: enough", types.Condition{Type: "armor_at_least", Value: 2}, true},
		{"armor_at_least: not enough", types.Condition{Type: "armor_at_least", Value: 3}, false},
		{"fate_at_least", types.Condition{Type: "fate_at_least", Value: 3}, true},
		{"enemies_at_least: crowd", types.Condition{Type: "enemies_at_least", Value: 2}, true},
		{"enemies_at_least: too few", types.Condition{Type: "enemies_at_least", Value: 4}, false},
		{"target_vulnerable", types.Condition{Type: "target_vulnerable"}, true},
		{"exchange_at_least: later", types.Condition{Type: "exchange_at_least", Value: 3}, false},
		{"taint_at_least", types.Condition{Type: "taint_at_least", Value: 4}, true},
		{"unknown type", types.Condition{Type: "moon_phase", Value: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalCondition(tt.cond, s); got != tt.want {
				t.Errorf("EvalCondition(%+v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestEvalCondition_Not(t *testing.T) {
	s := condTestSnapshot()
	inner := types.Condition{Type: "hp_below", Value: 10}
	not := types.Condition{Type: "not", Negate: true, Inner: &inner}
	if EvalCondition(not, s) {
		t.Error("Not(hp_below 10) should be false at 8 HP")
	}

	empty := types.Condition{Type: "not"}
	if !EvalCondition(empty, s) {
		t.Error("Not() without an inner condition should be vacuously true")
	}
}

func TestEvalAll(t *testing.T) {
	s := condTestSnapshot()

	if !EvalAll(nil, s) {
		t.Error("empty condition list should pass")
	}
	conds := []types.Condition{
		{Type: "fate_at_least", Value: 1},
		{Type: "enemies_at_least", Value: 3},
	}
	if !EvalAll(conds, s) {
		t.Error("all conditions hold, EvalAll returned false")
	}
	conds = append(conds, types.Condition{Type: "armor_at_least", Value: 5})
	if EvalAll(conds, s) {
		t.Error("one failing condition should fail EvalAll")
	}
}

func TestValid(t *testing.T) {
	if !Valid("hp_below") || !Valid("not") {
		t.Error("known condition types reported invalid")
	}
	if Valid("has_item") {
		t.Error("unknown condition type reported valid")
	}
}
