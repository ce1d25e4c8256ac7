package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gauntlet/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, cat *catalog) {
	registerConstructors(L, cat)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
	registerTableHelpers(L)
}

// curried registers name so that name "id" { ... } calls fn(id, table).
func curried(L *lua.LState, name string, fn func(L *lua.LState, id string, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			fn(L, id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, cat *catalog) {
	// Game { title = "...", version = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if cat.Game != nil {
			L.RaiseError("Game defined more than once")
		}
		cat.Game = &gameDoc{Title: getString(tbl, "title"), Version: getString(tbl, "version")}
		return 0
	}))

	// Rules { hand_cap = 7, exchange_draws = {3, 2, 1, 0}, ... }
	L.SetGlobal("Rules", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if cat.Rules != nil {
			L.RaiseError("Rules defined more than once")
		}
		cat.Rules = luaRules(L, tbl)
		return 0
	}))

	// Campaign { hero = "...", sequence = {...} } or basic/elite pools.
	L.SetGlobal("Campaign", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if cat.Campaign != nil {
			L.RaiseError("Campaign defined more than once")
		}
		cat.Campaign = &campaignDoc{
			Hero:        getString(tbl, "hero"),
			Sequence:    getStrings(L, tbl, "sequence"),
			Basic:       getStrings(L, tbl, "basic"),
			BasicCount:  getInt(tbl, "basic_count"),
			Elite:       getStrings(L, tbl, "elite"),
			EliteCount:  getInt(tbl, "elite_count"),
			BonusDrafts: getInts(L, tbl, "bonus_drafts"),
		}
		return 0
	}))

	curried(L, "Card", func(L *lua.LState, id string, tbl *lua.LTable) {
		cat.Cards = append(cat.Cards, cardDoc{
			ID:       id,
			Name:     getString(tbl, "name"),
			Rarity:   getString(tbl, "rarity"),
			Slot:     getString(tbl, "slot"),
			Dice:     getInt(tbl, "dice"),
			Pierce:   getBool(tbl, "pierce", false),
			AoE:      getBool(tbl, "aoe", false),
			Cost:     getInt(tbl, "cost"),
			Priority: getInt(tbl, "priority"),
			Effects:  luaEffects(L, getTable(tbl, "effects")),
		})
	})

	curried(L, "Hero", func(L *lua.LState, id string, tbl *lua.LTable) {
		cat.Heroes = append(cat.Heroes, heroDoc{
			ID:       id,
			Name:     getString(tbl, "name"),
			MaxHP:    getInt(tbl, "max_hp"),
			Plate:    getInt(tbl, "plate"),
			Deck:     getStrings(L, tbl, "deck"),
			Upgrades: getStrings(L, tbl, "upgrades"),
		})
	})

	curried(L, "Monster", func(L *lua.LState, id string, tbl *lua.LTable) {
		m := monsterDoc{
			ID:            id,
			Name:          getString(tbl, "name"),
			HP:            getInt(tbl, "hp"),
			Defense:       getInt(tbl, "defense"),
			Armor:         getInt(tbl, "armor"),
			Vulnerability: getString(tbl, "vulnerability"),
			Resistance:    getString(tbl, "resistance"),
			Kind:          getString(tbl, "kind"),
		}
		eachTable(L, getTable(tbl, "bands"), func(b *lua.LTable) {
			m.Bands = append(m.Bands, bandDoc{
				Min:     getInt(b, "min"),
				Max:     getInt(b, "max"),
				Damage:  getInt(b, "damage"),
				Effects: luaEffects(L, getTable(b, "effects")),
			})
		})
		eachTable(L, getTable(tbl, "passives"), func(p *lua.LTable) {
			m.Passives = append(m.Passives, passiveDoc{Kind: getString(p, "kind"), Amount: getInt(p, "amount")})
		})
		eachTable(L, getTable(tbl, "handlers"), func(h *lua.LTable) {
			m.Handlers = append(m.Handlers, handlerDoc{
				Event:      getString(h, "event"),
				Conditions: luaConditions(L, getTable(h, "conditions")),
				Effects:    luaEffects(L, getTable(h, "effects")),
			})
		})
		cat.Monsters = append(cat.Monsters, m)
	})

	curried(L, "Encounter", func(L *lua.LState, id string, tbl *lua.LTable) {
		cat.Encounters = append(cat.Encounters, encounterDoc{
			ID:      id,
			Name:    getString(tbl, "name"),
			Tier:    getString(tbl, "tier"),
			Monster: getString(tbl, "monster"),
			Count:   getInt(tbl, "count"),
		})
	})

	// Band(min, max, damage, {effects})
	L.SetGlobal("Band", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("min", L.CheckNumber(1))
		tbl.RawSetString("max", L.CheckNumber(2))
		tbl.RawSetString("damage", L.CheckNumber(3))
		if effs, ok := L.Get(4).(*lua.LTable); ok {
			tbl.RawSetString("effects", effs)
		}
		L.Push(tbl)
		return 1
	}))

	// Passive("pack_shield", 1)
	L.SetGlobal("Passive", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.OptNumber(2, 0))
		L.Push(tbl)
		return 1
	}))

	// On("hero_damaged", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		body := L.CheckTable(2)
		tbl := L.NewTable()
		tbl.RawSetString("event", lua.LString(event))
		if c := getTable(body, "conditions"); c != nil {
			tbl.RawSetString("conditions", c)
		}
		if e := getTable(body, "effects"); e != nil {
			tbl.RawSetString("effects", e)
		}
		L.Push(tbl)
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	valued := map[string]string{
		"HPBelow":         "hp_below",
		"HPAtLeast":       "hp_at_least",
		"ArmorAtLeast":    "armor_at_least",
		"FateAtLeast":     "fate_at_least",
		"EnemiesAtLeast":  "enemies_at_least",
		"ExchangeAtLeast": "exchange_at_least",
		"TaintAtLeast":    "taint_at_least",
	}
	for name, typ := range valued {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(typ))
			tbl.RawSetString("value", L.CheckNumber(1))
			L.Push(tbl)
			return 1
		}))
	}

	// TargetVulnerable()
	L.SetGlobal("TargetVulnerable", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("target_vulnerable"))
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	amounts := map[string]string{
		"Armor":     types.EffectArmor,
		"Heal":      types.EffectHeal,
		"Draw":      types.EffectDraw,
		"Discard":   types.EffectDiscard,
		"Reroll":    types.EffectReroll,
		"GainFate":  types.EffectGainFate,
		"PayFate":   types.EffectPayFate,
		"Seal":      types.EffectSeal,
		"Taint":     types.EffectTaint,
		"LoseHP":    types.EffectLoseHP,
		"ArmorBurn": types.EffectArmorBurn,
	}
	for name, kind := range amounts {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("kind", lua.LString(kind))
			tbl.RawSetString("amount", L.OptNumber(1, 0))
			L.Push(tbl)
			return 1
		}))
	}

	// Damage(amount, "fire")
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(types.EffectDamage))
		tbl.RawSetString("amount", L.CheckNumber(1))
		tbl.RawSetString("damage_type", lua.LString(L.OptString(2, string(DefaultDamageType))))
		L.Push(tbl)
		return 1
	}))

	// Drain("fate", 1)
	L.SetGlobal("Drain", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(types.EffectDrain))
		tbl.RawSetString("resource", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Pierce()
	L.SetGlobal("Pierce", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(types.EffectPierce))
		L.Push(tbl)
		return 1
	}))

	// Modifier { stat = "face", amount = 1, scope = "exchange", when = {...}, until = {...}, on_expire = {...} }
	L.SetGlobal("Modifier", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("kind", lua.LString(types.EffectModifier))
		L.Push(tbl)
		return 1
	}))
}

func registerTableHelpers(L *lua.LState) {
	// Copies("strike", 4) returns {"strike", "strike", "strike", "strike"}.
	L.SetGlobal("Copies", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		n := L.CheckInt(2)
		tbl := L.CreateTable(n, 0)
		for range n {
			tbl.Append(lua.LString(id))
		}
		L.Push(tbl)
		return 1
	}))
}

func luaRules(L *lua.LState, tbl *lua.LTable) *rulesDoc {
	return &rulesDoc{
		HandCap:          optInt(tbl, "hand_cap"),
		FateCap:          optInt(tbl, "fate_cap"),
		SealCap:          optInt(tbl, "seal_cap"),
		StartingFate:     optInt(tbl, "starting_fate"),
		OpeningHand:      optInt(tbl, "opening_hand"),
		PostCombatDraw:   optInt(tbl, "post_combat_draw"),
		ExchangeDraws:    getInts(L, tbl, "exchange_draws"),
		FatePerExchange:  optInt(tbl, "fate_per_exchange"),
		FatePerCombat:    optInt(tbl, "fate_per_combat"),
		CritDoubleChance: optFloat(tbl, "crit_double_chance"),
		TaintPerWound:    optInt(tbl, "taint_per_wound"),
		Insertion:        getString(tbl, "insertion"),
	}
}

func luaEffects(L *lua.LState, tbl *lua.LTable) []effectDoc {
	var effs []effectDoc
	eachTable(L, tbl, func(e *lua.LTable) {
		effs = append(effs, effectDoc{
			Kind:       getString(e, "kind"),
			Amount:     getInt(e, "amount"),
			DamageType: getString(e, "damage_type"),
			Resource:   getString(e, "resource"),
			Stat:       getString(e, "stat"),
			Scope:      getString(e, "scope"),
			Cap:        getInt(e, "cap"),
			When:       luaConditions(L, getTable(e, "when")),
			Until:      luaConditions(L, getTable(e, "until")),
			OnExpire:   luaEffects(L, getTable(e, "on_expire")),
		})
	})
	return effs
}

func luaConditions(L *lua.LState, tbl *lua.LTable) []conditionDoc {
	var conds []conditionDoc
	eachTable(L, tbl, func(c *lua.LTable) {
		conds = append(conds, luaCondition(c))
	})
	return conds
}

func luaCondition(tbl *lua.LTable) conditionDoc {
	c := conditionDoc{Type: getString(tbl, "type"), Value: getInt(tbl, "value")}
	if inner := getTable(tbl, "inner"); inner != nil {
		in := luaCondition(inner)
		c.Inner = &in
	}
	return c
}
