// Package rules evaluates condition predicates against a combat snapshot.
// Conditions gate conditional card modifiers and expire persistent effects.
package rules

import "github.com/nathoo/gauntlet/types"

// Snapshot is the read-only view of a combat that conditions inspect.
// It is copied out of the combat state at each resolution point.
type Snapshot struct {
	HeroHP           int
	HeroMaxHP        int
	Armor            int
	Fate             int
	Seals            int
	Taint            int
	Exchange         int
	LivingEnemies    int
	TargetVulnerable bool
}

// Known condition types.
var validTypes = map[string]bool{
	"hp_below":          true,
	"hp_at_least":       true,
	"armor_at_least":    true,
	"fate_at_least":     true,
	"enemies_at_least":  true,
	"target_vulnerable": true,
	"exchange_at_least": true,
	"taint_at_least":    true,
	"not":               true,
}

// Valid reports whether t is a known condition type.
func Valid(t string) bool {
	return validTypes[t]
}

// EvalCondition evaluates a single condition against the snapshot.
func EvalCondition(c types.Condition, s Snapshot) bool {
	switch c.Type {
	case "hp_below":
		return s.HeroHP < c.Value

	case "hp_at_least":
		return s.HeroHP >= c.Value

	case "armor_at_least":
		return s.Armor >= c.Value

	case "fate_at_least":
		return s.Fate >= c.Value

	case "enemies_at_least":
		return s.LivingEnemies >= c.Value

	case "target_vulnerable":
		return s.TargetVulnerable

	case "exchange_at_least":
		return s.Exchange >= c.Value

	case "taint_at_least":
		return s.Taint >= c.Value

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s)

	default:
		return false
	}
}

// EvalAll returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAll(conditions []types.Condition, s Snapshot) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s) {
			return false
		}
	}
	return true
}
