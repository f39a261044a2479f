package content

import (
	"fmt"

	"github.com/nathoo/dungeonmaster/types"
)

// validate checks compiled tables for internal consistency. Errors here
// are authoring mistakes, reported before the engine ever runs.
func validate(t *Tables) error {
	if len(t.Enemies) == 0 {
		return fmt.Errorf("content defines no enemies")
	}
	if len(t.Loot) == 0 {
		return fmt.Errorf("content defines no loot")
	}

	for _, e := range t.Enemies {
		if e.MaxHealth <= 0 {
			return fmt.Errorf("enemy %q: health must be positive, got %d", e.Name, e.MaxHealth)
		}
		if e.DamageRange.Min > e.DamageRange.Max || e.DamageRange.Min < 0 {
			return fmt.Errorf("enemy %q: damage range [%d,%d] invalid", e.Name, e.DamageRange.Min, e.DamageRange.Max)
		}
		if e.ExperienceReward < 0 {
			return fmt.Errorf("enemy %q: experience reward must not be negative", e.Name)
		}
		if e.Weight <= 0 {
			return fmt.Errorf("enemy %q: weight must be positive, got %d", e.Name, e.Weight)
		}
	}

	for _, item := range t.Loot {
		if err := validateItem(item); err != nil {
			return err
		}
	}

	for _, c := range t.Choices {
		if len(c.Options) < 2 || len(c.Options) > 4 {
			return fmt.Errorf("choice %q: needs 2-4 options, got %d", c.Prompt, len(c.Options))
		}
		if c.DefaultOption < 0 || c.DefaultOption >= len(c.Options) {
			return fmt.Errorf("choice %q: default option %d out of range", c.Prompt, c.DefaultOption+1)
		}
		for i, opt := range c.Options {
			if opt.Text == "" {
				return fmt.Errorf("choice %q: option %d has no text", c.Prompt, i+1)
			}
		}
	}

	return nil
}

// validateItem checks the one-effect-per-kind invariant.
func validateItem(item types.Item) error {
	eff := item.Effect
	switch item.Kind {
	case types.ItemPotion:
		if eff.Healing <= 0 {
			return fmt.Errorf("potion %q: healing must be positive", item.Name)
		}
		if item.UsesRemaining <= 0 {
			return fmt.Errorf("potion %q: consumables need uses >= 1", item.Name)
		}
	case types.ItemWeapon:
		if eff.DamageBonus <= 0 {
			return fmt.Errorf("weapon %q: damage bonus must be positive", item.Name)
		}
	case types.ItemArmor:
		if eff.DefenseBonus <= 0 {
			return fmt.Errorf("armor %q: defense bonus must be positive", item.Name)
		}
	case types.ItemScroll:
		if eff.Experience <= 0 {
			return fmt.Errorf("scroll %q: experience must be positive", item.Name)
		}
		if item.UsesRemaining <= 0 {
			return fmt.Errorf("scroll %q: consumables need uses >= 1", item.Name)
		}
	case types.ItemCurrency:
		if eff.Gold <= 0 {
			return fmt.Errorf("currency %q: gold must be positive", item.Name)
		}
	default:
		return fmt.Errorf("item %q: unknown kind %q", item.Name, item.Kind)
	}

	nonZero := 0
	for _, v := range []int{eff.Healing, eff.DamageBonus, eff.DefenseBonus, eff.Experience, eff.Gold} {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero != 1 {
		return fmt.Errorf("item %q: exactly one effect field must be set, got %d", item.Name, nonZero)
	}
	return nil
}
