// Package events implements single-pass dispatch of combat events to
// monster handlers. Handlers produce effects on the hero but do not recurse.
package events

import (
	"github.com/nathoo/gauntlet/engine/rules"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/types"
)

// Dispatch runs handlers against the emitted events. Single pass, no
// recursion. Returns the effects of every matching handler in event order.
func Dispatch(events []types.Event, handlers []types.EventHandler, s rules.Snapshot) []types.Effect {
	var result []types.Effect

	for _, event := range events {
		for _, handler := range handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAll(handler.Conditions, s) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}

// Handlers collects the handlers of every living monster in index order.
// Each monster contributes its own copy, so identical monsters stack.
func Handlers(group []*state.Monster) []types.EventHandler {
	var hs []types.EventHandler
	for _, m := range state.Living(group) {
		hs = append(hs, m.Def.Handlers...)
	}
	return hs
}
