package content

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/dungeonmaster/types"
)

// compile converts raw Lua tables into typed content tables.
func compile(coll *collector) (*Tables, error) {
	tables := &Tables{Locations: coll.locations}

	for i, tbl := range coll.enemies {
		e, err := compileEnemy(tbl)
		if err != nil {
			return nil, fmt.Errorf("enemy #%d: %w", i+1, err)
		}
		tables.Enemies = append(tables.Enemies, e)
	}

	for i, tbl := range coll.loot {
		item, err := compileLoot(tbl)
		if err != nil {
			return nil, fmt.Errorf("loot #%d: %w", i+1, err)
		}
		tables.Loot = append(tables.Loot, item)
	}

	for i, tbl := range coll.choices {
		c, err := compileChoice(tbl)
		if err != nil {
			return nil, fmt.Errorf("choice #%d: %w", i+1, err)
		}
		tables.Choices = append(tables.Choices, c)
	}

	if tables.Locations == nil {
		tables.Locations = map[string]string{}
	}
	return tables, nil
}

func compileEnemy(tbl *lua.LTable) (types.EnemyTemplate, error) {
	e := types.EnemyTemplate{
		Name:             getString(tbl, "name"),
		Description:      getString(tbl, "description"),
		MaxHealth:        getInt(tbl, "health"),
		ExperienceReward: getInt(tbl, "experience"),
		GoldReward:       getInt(tbl, "gold"),
		MinLevel:         getIntDefault(tbl, "min_level", 1),
		Weight:           getIntDefault(tbl, "weight", 1),
	}
	if e.Name == "" {
		return e, fmt.Errorf("missing name")
	}

	dmg, ok := tbl.RawGetString("damage").(*lua.LTable)
	if !ok {
		return e, fmt.Errorf("%s: damage must be a {min, max} table", e.Name)
	}
	e.DamageRange = types.DamageRange{
		Min: int(lua.LVAsNumber(dmg.RawGetInt(1))),
		Max: int(lua.LVAsNumber(dmg.RawGetInt(2))),
	}
	return e, nil
}

func compileLoot(tbl *lua.LTable) (types.Item, error) {
	item := types.Item{
		Kind:        types.ItemKind(getString(tbl, "kind")),
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Effect: types.ItemEffect{
			Healing:      getInt(tbl, "healing"),
			DamageBonus:  getInt(tbl, "damage"),
			DefenseBonus: getInt(tbl, "defense"),
			Experience:   getInt(tbl, "experience"),
			Gold:         getInt(tbl, "gold"),
		},
		UsesRemaining: getInt(tbl, "uses"),
	}
	if item.Name == "" {
		return item, fmt.Errorf("missing name")
	}
	return item, nil
}

func compileChoice(tbl *lua.LTable) (ChoiceTemplate, error) {
	c := ChoiceTemplate{
		Prompt:        getString(tbl, "prompt"),
		DefaultOption: getIntDefault(tbl, "default", 1) - 1, // Lua is 1-based
	}
	if c.Prompt == "" {
		return c, fmt.Errorf("missing prompt")
	}

	opts, ok := tbl.RawGetString("options").(*lua.LTable)
	if !ok {
		return c, fmt.Errorf("%q: options must be a table", c.Prompt)
	}
	var err error
	opts.ForEach(func(_, v lua.LValue) {
		ot, ok := v.(*lua.LTable)
		if !ok {
			err = fmt.Errorf("%q: each option must be a table", c.Prompt)
			return
		}
		c.Options = append(c.Options, types.ChoiceOption{
			Text:          getString(ot, "text"),
			StoryProgress: getIntDefault(ot, "progress", 1),
			Gold:          getInt(ot, "gold"),
			Healing:       getInt(ot, "healing"),
			Experience:    getInt(ot, "experience"),
		})
	})
	if err != nil {
		return c, err
	}
	return c, nil
}

func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getInt(tbl *lua.LTable, key string) int {
	return getIntDefault(tbl, key, 0)
}

func getIntDefault(tbl *lua.LTable, key string, def int) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return def
}
