package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/dungeonmaster/types"
)

// writeContent writes script as a .lua file in a fresh temp dir and
// returns the dir.
func writeContent(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "game.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad_EmptyDirUsesDefaults(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(tables.Enemies) == 0 || len(tables.Loot) == 0 || len(tables.Locations) == 0 {
		t.Fatalf("defaults incomplete: %d enemies, %d loot, %d locations",
			len(tables.Enemies), len(tables.Loot), len(tables.Locations))
	}
}

func TestDefaults_PassValidation(t *testing.T) {
	if err := validate(Defaults()); err != nil {
		t.Fatalf("built-in content invalid: %v", err)
	}
}

func TestLoad_CompilesTables(t *testing.T) {
	dir := writeContent(t, `
Enemy {
	name = "Cave Rat",
	description = "A mangy rat.",
	health = 12,
	damage = {2, 5},
	experience = 8,
	gold = 3,
	weight = 5,
}

Loot {
	name = "Minor Potion",
	kind = "potion",
	healing = 15,
	uses = 1,
}

Choice {
	prompt = "A fork in the tunnel.",
	default = 2,
	options = {
		{ text = "Go left", gold = 5 },
		{ text = "Go right", healing = 10 },
	},
}

Location "tunnel" "A damp tunnel."
`)

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(tables.Enemies) != 1 {
		t.Fatalf("enemies = %d, want 1", len(tables.Enemies))
	}
	e := tables.Enemies[0]
	if e.Name != "Cave Rat" || e.MaxHealth != 12 || e.DamageRange != (types.DamageRange{Min: 2, Max: 5}) {
		t.Errorf("enemy = %+v", e)
	}
	if e.MinLevel != 1 {
		t.Errorf("min_level should default to 1, got %d", e.MinLevel)
	}

	if len(tables.Loot) != 1 || tables.Loot[0].Kind != types.ItemPotion {
		t.Fatalf("loot = %+v", tables.Loot)
	}

	if len(tables.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(tables.Choices))
	}
	c := tables.Choices[0]
	if c.DefaultOption != 1 { // 1-based in Lua, 0-based compiled
		t.Errorf("default option = %d, want 1", c.DefaultOption)
	}
	if len(c.Options) != 2 || c.Options[1].Healing != 10 {
		t.Errorf("options = %+v", c.Options)
	}

	if tables.Locations["tunnel"] != "A damp tunnel." {
		t.Errorf("locations = %+v", tables.Locations)
	}
}

func TestLoad_MultipleFilesSortedOrder(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b_loot.lua":    `Loot { name = "Potion", kind = "potion", healing = 10, uses = 1 }`,
		"a_enemies.lua": `Enemy { name = "Imp", health = 10, damage = {1, 2}, experience = 5, gold = 1 }`,
	}
	for name, script := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tables.Enemies) != 1 || len(tables.Loot) != 1 {
		t.Errorf("tables = %d enemies, %d loot", len(tables.Enemies), len(tables.Loot))
	}
}

func TestLoad_RejectsInvalidContent(t *testing.T) {
	cases := []struct {
		name   string
		script string
		want   string
	}{
		{
			"enemy without damage table",
			`Enemy { name = "Blob", health = 10 }
			 Loot { name = "Potion", kind = "potion", healing = 10, uses = 1 }`,
			"damage",
		},
		{
			"no enemies at all",
			`Loot { name = "Potion", kind = "potion", healing = 10, uses = 1 }`,
			"no enemies",
		},
		{
			"potion without healing",
			`Enemy { name = "Imp", health = 10, damage = {1, 2} }
			 Loot { name = "Dud", kind = "potion", uses = 1 }`,
			"healing",
		},
		{
			"item with two effects",
			`Enemy { name = "Imp", health = 10, damage = {1, 2} }
			 Loot { name = "Hybrid", kind = "potion", healing = 10, gold = 5, uses = 1 }`,
			"exactly one effect",
		},
		{
			"choice with one option",
			`Enemy { name = "Imp", health = 10, damage = {1, 2} }
			 Loot { name = "Potion", kind = "potion", healing = 10, uses = 1 }
			 Choice { prompt = "Hm?", options = { { text = "Only way" } } }`,
			"2-4 options",
		},
		{
			"default out of range",
			`Enemy { name = "Imp", health = 10, damage = {1, 2} }
			 Loot { name = "Potion", kind = "potion", healing = 10, uses = 1 }
			 Choice { prompt = "Hm?", default = 3, options = { { text = "A" }, { text = "B" } } }`,
			"out of range",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeContent(t, tc.script))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_SandboxBlocksIO(t *testing.T) {
	for _, fn := range []string{`dofile("x")`, `loadfile("x")`, `load("return 1")`} {
		dir := writeContent(t, fn)
		if _, err := Load(dir); err == nil {
			t.Errorf("%s must not be callable from content scripts", fn)
		}
	}
}

func TestLoad_ErrorsOnMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_ErrorsOnEmptyDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without .lua files")
	}
}
