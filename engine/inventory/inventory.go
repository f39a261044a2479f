// Package inventory owns the bounded item collection of a character:
// add, use, and equip semantics. All operations mutate the character
// in place and report failures without side effects.
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/dungeonmaster/types"
)

var (
	// ErrCapacityExceeded is returned when adding to a full inventory.
	ErrCapacityExceeded = errors.New("inventory is full")
	// ErrItemNotFound is returned when the named item is not carried.
	ErrItemNotFound = errors.New("item not found")
	// ErrNotUsable is returned for kinds without an active-use effect.
	ErrNotUsable = errors.New("item cannot be used")
)

// Manager applies inventory operations under a fixed capacity.
type Manager struct {
	Capacity int
}

// Add appends item to the character's inventory in insertion order.
// Currency is never stored: its gold value is credited directly.
func (m Manager) Add(ch *types.Character, item types.Item) error {
	if item.Kind == types.ItemCurrency {
		ch.Gold += item.Effect.Gold
		return nil
	}
	if len(ch.Inventory) >= m.Capacity {
		return fmt.Errorf("add %q: %w", item.Name, ErrCapacityExceeded)
	}
	ch.Inventory = append(ch.Inventory, item)
	return nil
}

// Find returns the index of the named item, or -1. Matching is
// case-insensitive, the way player-typed names arrive.
func (m Manager) Find(ch *types.Character, name string) int {
	for i, item := range ch.Inventory {
		if strings.EqualFold(item.Name, name) {
			return i
		}
	}
	return -1
}

// UseResult reports what a successful Use did.
type UseResult struct {
	Item       types.Item
	Healed     int // actual health restored, bounded by max health
	Experience int // experience granted (scrolls)
	Consumed   bool
}

// Use applies the named item's active effect. Potions heal (never above
// max health), scrolls grant experience. Weapons and armor have no
// active use; equip them instead. Consumables decrement UsesRemaining
// and are removed at zero.
func (m Manager) Use(ch *types.Character, name string) (UseResult, error) {
	idx := m.Find(ch, name)
	if idx < 0 {
		return UseResult{}, fmt.Errorf("use %q: %w", name, ErrItemNotFound)
	}
	item := ch.Inventory[idx]

	var res UseResult
	switch item.Kind {
	case types.ItemPotion:
		healed := item.Effect.Healing
		if ch.Health+healed > ch.MaxHealth {
			healed = ch.MaxHealth - ch.Health
		}
		ch.Health += healed
		res = UseResult{Item: item, Healed: healed}
	case types.ItemScroll:
		res = UseResult{Item: item, Experience: item.Effect.Experience}
	default:
		return UseResult{}, fmt.Errorf("use %q: %w", item.Name, ErrNotUsable)
	}

	ch.Inventory[idx].UsesRemaining--
	if ch.Inventory[idx].UsesRemaining <= 0 {
		ch.Inventory = append(ch.Inventory[:idx], ch.Inventory[idx+1:]...)
		res.Consumed = true
	}
	return res, nil
}

// Equip moves the named weapon or armor from the inventory into its
// slot. A previously equipped item of that slot returns to the
// inventory in place of the new one, so capacity never changes.
// Returns the replaced item, if any.
func (m Manager) Equip(ch *types.Character, name string) (*types.Item, error) {
	idx := m.Find(ch, name)
	if idx < 0 {
		return nil, fmt.Errorf("equip %q: %w", name, ErrItemNotFound)
	}
	item := ch.Inventory[idx]

	var slot **types.Item
	switch item.Kind {
	case types.ItemWeapon:
		slot = &ch.Weapon
	case types.ItemArmor:
		slot = &ch.Armor
	default:
		return nil, fmt.Errorf("equip %q: %w", item.Name, ErrNotUsable)
	}

	replaced := *slot
	*slot = &item
	if replaced != nil {
		ch.Inventory[idx] = *replaced
	} else {
		ch.Inventory = append(ch.Inventory[:idx], ch.Inventory[idx+1:]...)
	}
	return replaced, nil
}
