package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

func optInt(tbl *lua.LTable, key string) *int {
	n, ok := tbl.RawGetString(key).(lua.LNumber)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

func optFloat(tbl *lua.LTable, key string) *float64 {
	n, ok := tbl.RawGetString(key).(lua.LNumber)
	if !ok {
		return nil
	}
	v := float64(n)
	return &v
}

// eachTable calls fn for every element of the array part of tbl, in
// order. Non-table elements raise a Lua error.
func eachTable(L *lua.LState, tbl *lua.LTable, fn func(*lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.Len(); i++ {
		elem, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.RaiseError("expected a table at position %d, got %s", i, tbl.RawGetInt(i).Type())
		}
		fn(elem)
	}
}

// getStrings returns a list of strings. Nested lists are flattened so that
// Copies("strike", 4) can sit alongside plain IDs.
func getStrings(L *lua.LState, tbl *lua.LTable, key string) []string {
	list := getTable(tbl, key)
	if list == nil {
		return nil
	}
	var out []string
	var walk func(t *lua.LTable)
	walk = func(t *lua.LTable) {
		for i := 1; i <= t.Len(); i++ {
			switch v := t.RawGetInt(i).(type) {
			case lua.LString:
				out = append(out, string(v))
			case *lua.LTable:
				walk(v)
			default:
				L.RaiseError("%s: expected a string at position %d, got %s", key, i, v.Type())
			}
		}
	}
	walk(list)
	return out
}

func getInts(L *lua.LState, tbl *lua.LTable, key string) []int {
	list := getTable(tbl, key)
	if list == nil {
		return nil
	}
	out := make([]int, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		n, ok := list.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.RaiseError("%s: expected a number at position %d", key, i)
		}
		out = append(out, int(n))
	}
	return out
}
