// Package content loads the game's enemy, loot, choice, and location
// tables from sandboxed Lua files and compiles them into immutable
// tables. The Lua VM is discarded after loading.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/dungeonmaster/types"
)

// Tables holds the compiled, immutable game content.
type Tables struct {
	Enemies   []types.EnemyTemplate
	Loot      []types.Item
	Choices   []ChoiceTemplate
	Locations map[string]string // id → description
}

// ChoiceTemplate is a choice prompt before it is bound to a player.
type ChoiceTemplate struct {
	Prompt        string
	Options       []types.ChoiceOption
	DefaultOption int
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	enemies   []*lua.LTable
	loot      []*lua.LTable
	choices   []*lua.LTable
	locations map[string]string
}

// Load reads all .lua files from dir, compiles them into content tables,
// and validates the result. An empty dir loads the built-in defaults.
func Load(dir string) (*Tables, error) {
	if dir == "" {
		return Defaults(), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	sort.Strings(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{locations: map[string]string{}}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	tables, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}
	if err := validate(tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

// registerAPI registers the Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Enemy { name = "...", health = 30, damage = {5, 12}, ... }
	L.SetGlobal("Enemy", L.NewFunction(func(L *lua.LState) int {
		coll.enemies = append(coll.enemies, L.CheckTable(1))
		return 0
	}))

	// Loot { name = "...", kind = "potion", healing = 30, uses = 1 }
	L.SetGlobal("Loot", L.NewFunction(func(L *lua.LState) int {
		coll.loot = append(coll.loot, L.CheckTable(1))
		return 0
	}))

	// Choice { prompt = "...", default = 1, options = { {...}, {...} } }
	L.SetGlobal("Choice", L.NewFunction(func(L *lua.LState) int {
		coll.choices = append(coll.choices, L.CheckTable(1))
		return 0
	}))

	// Location "id" "description" — curried.
	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.locations[id] = L.CheckString(1)
			return 0
		}))
		return 1
	}))
}
