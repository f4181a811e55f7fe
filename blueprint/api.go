package blueprint

import lua "github.com/yuin/gopher-lua"

// registerAPI installs every Lua global a game's .lua files author against.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Location "id" { ... } — curried: Location("id") returns a function
	// that takes the definition table.
	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.locations = append(coll.locations, rawLocation{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... } — curried, same shape as Location.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.items = append(coll.items, rawItem{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Verb "id" { synonyms = {...}, syntax = {...} } — curried.
	L.SetGlobal("Verb", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.verbs = append(coll.verbs, rawVerb{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Fuse "id" { turns = 3, effects = {...} } — curried.
	L.SetGlobal("Fuse", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.fuses = append(coll.fuses, rawFuse{id: id, turns: getInt(tbl, "turns"), table: tbl})
			return 0
		}))
		return 1
	}))

	// Daemon "id" { effects = {...} } — curried.
	L.SetGlobal("Daemon", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.daemons = append(coll.daemons, rawDaemon{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Rule("id", When{verb="take", item="urn"}, Then{...}). Returns a
	// marker table a Location's or Item's "rules" array references, which
	// scopes the rule's handler to that location/item instead of global.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		when := L.CheckTable(2)
		then := L.CheckTable(3)

		coll.rules = append(coll.rules, rawRule{
			id: id, when: when, then: then, scope: "global", order: coll.nextSourceOrder(),
		})

		marker := L.NewTable()
		marker.RawSetString("__rule_id", lua.LString(id))
		L.Push(marker)
		return 1
	}))

	// When{...} / Then{...} are pass-through — they exist purely for
	// readability at the call site, matching Rule("id", When{...}, Then{...}).
	L.SetGlobal("When", L.NewFunction(passThroughTable))
	L.SetGlobal("Then", L.NewFunction(passThroughTable))
}

func passThroughTable(L *lua.LState) int {
	L.Push(L.CheckTable(1))
	return 1
}

func registerConditionHelpers(L *lua.LState) {
	// Held("item")
	L.SetGlobal("Held", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		L.Push(condTable(L, "held", map[string]lua.LValue{"item": lua.LString(item)}))
		return 1
	}))

	// HasFlag("item", "flag")
	L.SetGlobal("HasFlag", L.NewFunction(func(L *lua.LState) int {
		item, flag := L.CheckString(1), L.CheckString(2)
		L.Push(condTable(L, "has_flag", map[string]lua.LValue{"item": lua.LString(item), "flag": lua.LString(flag)}))
		return 1
	}))

	// GlobalFlag("key")
	L.SetGlobal("GlobalFlag", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		L.Push(condTable(L, "global_flag", map[string]lua.LValue{"key": lua.LString(key)}))
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
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		L.Push(condTable(L, "say", map[string]lua.LValue{"text": lua.LString(text)}))
		return 1
	}))

	// SetFlag("item", "flag", true|false)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		item, flag, value := L.CheckString(1), L.CheckString(2), L.CheckBool(3)
		L.Push(condTable(L, "set_flag", map[string]lua.LValue{
			"item": lua.LString(item), "flag": lua.LString(flag), "value": lua.LBool(value),
		}))
		return 1
	}))

	// ClearFlag("item", "flag")
	L.SetGlobal("ClearFlag", L.NewFunction(func(L *lua.LState) int {
		item, flag := L.CheckString(1), L.CheckString(2)
		L.Push(condTable(L, "clear_flag", map[string]lua.LValue{"item": lua.LString(item), "flag": lua.LString(flag)}))
		return 1
	}))

	// SetLocationFlag("location", "flag", true|false) — e.g. flipping
	// inherentlyLit at runtime (a room that becomes lit once some condition
	// is met, rather than always carrying a lightSource item).
	L.SetGlobal("SetLocationFlag", L.NewFunction(func(L *lua.LState) int {
		loc, flag, value := L.CheckString(1), L.CheckString(2), L.CheckBool(3)
		L.Push(condTable(L, "set_location_flag", map[string]lua.LValue{
			"location": lua.LString(loc), "flag": lua.LString(flag), "value": lua.LBool(value),
		}))
		return 1
	}))

	// ClearLocationFlag("location", "flag")
	L.SetGlobal("ClearLocationFlag", L.NewFunction(func(L *lua.LState) int {
		loc, flag := L.CheckString(1), L.CheckString(2)
		L.Push(condTable(L, "clear_location_flag", map[string]lua.LValue{"location": lua.LString(loc), "flag": lua.LString(flag)}))
		return 1
	}))

	// MoveItem("item", "player" | "location:<id>" | "item:<id>")
	L.SetGlobal("MoveItem", L.NewFunction(func(L *lua.LState) int {
		item, dest := L.CheckString(1), L.CheckString(2)
		L.Push(condTable(L, "move_item", map[string]lua.LValue{"item": lua.LString(item), "dest": lua.LString(dest)}))
		return 1
	}))

	// AdjustScore(delta)
	L.SetGlobal("AdjustScore", L.NewFunction(func(L *lua.LState) int {
		L.Push(condTable(L, "adjust_score", map[string]lua.LValue{"delta": L.CheckNumber(1)}))
		return 1
	}))

	// AdjustHealth(delta)
	L.SetGlobal("AdjustHealth", L.NewFunction(func(L *lua.LState) int {
		L.Push(condTable(L, "adjust_health", map[string]lua.LValue{"delta": L.CheckNumber(1)}))
		return 1
	}))

	// SetGlobal("key", true|false)
	L.SetGlobal("SetGlobal", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.Get(2)
		L.Push(condTable(L, "set_global", map[string]lua.LValue{"key": lua.LString(key), "value": value}))
		return 1
	}))

	// StartFuse("id", turns)
	L.SetGlobal("StartFuse", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		turns := L.CheckNumber(2)
		L.Push(condTable(L, "start_fuse", map[string]lua.LValue{"fuse": lua.LString(id), "turns": turns}))
		return 1
	}))

	// CancelFuse("id")
	L.SetGlobal("CancelFuse", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(condTable(L, "cancel_fuse", map[string]lua.LValue{"fuse": lua.LString(id)}))
		return 1
	}))

	// StartDaemon("id")
	L.SetGlobal("StartDaemon", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(condTable(L, "start_daemon", map[string]lua.LValue{"daemon": lua.LString(id)}))
		return 1
	}))

	// StopDaemon("id")
	L.SetGlobal("StopDaemon", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(condTable(L, "stop_daemon", map[string]lua.LValue{"daemon": lua.LString(id)}))
		return 1
	}))

	// Veto() — blocks the command outright, the Lua author's equivalent of
	// pipeline.Veto (e.g. "you can't do that here").
	L.SetGlobal("Veto", L.NewFunction(func(L *lua.LState) int {
		L.Push(condTable(L, "veto", nil))
		return 1
	}))
}

func condTable(L *lua.LState, kind string, fields map[string]lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	for k, v := range fields {
		tbl.RawSetString(k, v)
	}
	return tbl
}
