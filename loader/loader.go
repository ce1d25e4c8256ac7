package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gauntlet/engine/state"
)

// Load reads every .lua and .yaml file in dir, compiles them into catalog
// definitions, validates references, and returns the immutable Defs.
// Lua files run first, game.lua leading; YAML files follow alphabetically.
// Validation warnings go to log, which may be nil.
func Load(dir string, log *slog.Logger) (*state.Defs, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".lua":
			luaFiles = append(luaFiles, e.Name())
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 && len(yamlFiles) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}

	cat := &catalog{}
	if len(luaFiles) > 0 {
		if err := runLua(dir, sortedLuaFiles(luaFiles), cat); err != nil {
			return nil, err
		}
	}
	sort.Strings(yamlFiles)
	for _, f := range yamlFiles {
		doc, err := decodeYAML(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f, err)
		}
		if err := cat.merge(doc, f); err != nil {
			return nil, err
		}
	}

	defs, err := compile(cat)
	if err != nil {
		return nil, fmt.Errorf("compiling catalog: %w", err)
	}

	warnings, err := validate(defs)
	for _, w := range warnings {
		log.Warn("catalog", "dir", dir, "warning", w)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("catalog loaded", "dir", dir,
		"cards", len(defs.Cards), "heroes", len(defs.Heroes),
		"monsters", len(defs.Monsters), "encounters", len(defs.Encounters))
	return defs, nil
}

// runLua executes files in one sandboxed VM, collecting into cat.
func runLua(dir string, files []string, cat *catalog) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)
	registerAPI(L, cat)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not depend on Lua's own RNG.
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("random", lua.LNil)
		mathTbl.RawSetString("randomseed", lua.LNil)
	}
}

// sortedLuaFiles returns game.lua first and the rest alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
