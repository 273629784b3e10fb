package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a named definition table before compilation.
type rawDef struct {
	name  string
	table *lua.LTable
}

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Town "name" { ... } and friends are curried: Town("name") returns a
	// function that takes the body table.
	curried := map[string]*[]rawDef{
		"Town":    &coll.towns,
		"Recipe":  &coll.recipes,
		"Enemy":   &coll.enemies,
		"Skill":   &coll.skills,
		"Weather": &coll.weather,
		"Event":   &coll.events,
		"Task":    &coll.tasks,
		"Item":    &coll.items,
	}
	for global, list := range curried {
		L.SetGlobal(global, L.NewFunction(func(L *lua.LState) int {
			name := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*list = append(*list, rawDef{name: name, table: tbl})
				return 0
			}))
			return 1
		}))
	}

	// NPC "name" { ... } and Quest "id" { ... } build nested values for
	// town bodies. They return the table with the name filled in.
	L.SetGlobal("NPC", namedTable(L, "name"))
	L.SetGlobal("Quest", namedTable(L, "id"))
}

func namedTable(L *lua.LState, key string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString(key, lua.LString(name))
			L.Push(tbl)
			return 1
		}))
		return 1
	})
}
