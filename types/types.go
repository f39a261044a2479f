// Package types defines the shared data structures for the DungeonMaster engine.
// This package contains only type definitions — no logic, no methods.
package types

import "time"

// SessionState is the engine state machine position for one player.
type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateInCombat      SessionState = "in_combat"
	StateChoicePending SessionState = "choice_pending"
)

// ItemKind is the closed set of item variants.
type ItemKind string

const (
	ItemPotion   ItemKind = "potion"
	ItemWeapon   ItemKind = "weapon"
	ItemArmor    ItemKind = "armor"
	ItemScroll   ItemKind = "scroll"
	ItemCurrency ItemKind = "currency"
)

// ItemEffect describes what an item does. Exactly one field is non-zero
// per kind: potions heal, weapons add damage, armor adds defense,
// scrolls grant experience, currency grants gold.
type ItemEffect struct {
	Healing      int `json:"healing,omitempty"`
	DamageBonus  int `json:"damage_bonus,omitempty"`
	DefenseBonus int `json:"defense_bonus,omitempty"`
	Experience   int `json:"experience,omitempty"`
	Gold         int `json:"gold,omitempty"`
}

// Item is one entry in a character's inventory.
type Item struct {
	Kind          ItemKind   `json:"kind"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Effect        ItemEffect `json:"effect"`
	UsesRemaining int        `json:"uses_remaining"` // 0 for non-consumables
}

// Character is the durable per-player state.
type Character struct {
	PlayerID      string    `json:"player_id"`
	Name          string    `json:"name"`
	Health        int       `json:"health"`
	MaxHealth     int       `json:"max_health"`
	Level         int       `json:"level"`
	Experience    int       `json:"experience"`
	Gold          int       `json:"gold"`
	StoryProgress int       `json:"story_progress"`
	Location      string    `json:"location"`
	Weapon        *Item     `json:"weapon,omitempty"` // equipped, not in inventory
	Armor         *Item     `json:"armor,omitempty"`  // equipped, not in inventory
	Inventory     []Item    `json:"inventory"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DamageRange is an inclusive integer interval, Min ≤ Max.
type DamageRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// EnemyTemplate defines one enemy kind in the content tables.
type EnemyTemplate struct {
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	MaxHealth        int         `json:"max_health"`
	DamageRange      DamageRange `json:"damage_range"`
	ExperienceReward int         `json:"experience_reward"`
	GoldReward       int         `json:"gold_reward"`
	MinLevel         int         `json:"min_level"`
	Weight           int         `json:"weight"`
}

// Enemy is a live instance of a template inside one combat session.
type Enemy struct {
	Name             string      `json:"name"`
	Health           int         `json:"health"`
	MaxHealth        int         `json:"max_health"`
	DamageRange      DamageRange `json:"damage_range"`
	ExperienceReward int         `json:"experience_reward"`
	GoldReward       int         `json:"gold_reward"`
}

// CombatSession is the active encounter for one player. It exists only
// while the session state is in_combat.
type CombatSession struct {
	PlayerID  string    `json:"player_id"`
	Enemy     Enemy     `json:"enemy"`
	Turn      int       `json:"turn"`
	CreatedAt time.Time `json:"created_at"`
}

// ChoiceOption is one selectable branch of a ChoicePrompt. The effect
// descriptors are opaque to the adapter; the engine applies them.
type ChoiceOption struct {
	Text          string `json:"text"`
	StoryProgress int    `json:"story_progress,omitempty"`
	Gold          int    `json:"gold,omitempty"`
	Healing       int    `json:"healing,omitempty"`
	Experience    int    `json:"experience,omitempty"`
}

// ChoicePrompt is an open branching decision awaiting player input.
// It exists only while the session state is choice_pending.
type ChoicePrompt struct {
	PlayerID      string         `json:"player_id"`
	Prompt        string         `json:"prompt"`
	Options       []ChoiceOption `json:"options"` // 2–4 entries
	DefaultOption int            `json:"default_option"`
	CreatedAt     time.Time      `json:"created_at"`
}

// SessionSnapshot bundles the transient session state persisted next to
// the character. At most one of Combat/Choice is non-nil.
type SessionSnapshot struct {
	State  SessionState   `json:"state"`
	Combat *CombatSession `json:"combat,omitempty"`
	Choice *ChoicePrompt  `json:"choice,omitempty"`
}

// Category is the exploration outcome class.
type Category string

const (
	CategoryCombat Category = "combat"
	CategoryItem   Category = "item"
	CategoryNPC    Category = "npc"
	CategoryStory  Category = "story"
)

// Outcome is the resolution class of an event, used to select narrative
// templates.
type Outcome string

const (
	OutcomeWelcome   Outcome = "welcome"
	OutcomeEncounter Outcome = "encounter"
	OutcomeAttack    Outcome = "attack"
	OutcomeVictory   Outcome = "victory"
	OutcomeDefeat    Outcome = "defeat"
	OutcomeFlee      Outcome = "flee"
	OutcomeItemFound Outcome = "item_found"
	OutcomeItemUsed  Outcome = "item_used"
	OutcomeNPC       Outcome = "npc"
	OutcomeStory     Outcome = "story"
	OutcomeChoice    Outcome = "choice"
	OutcomeLevelUp   Outcome = "level_up"
	OutcomeTimeout   Outcome = "timeout"
)

// NarrativeRequest is the structured context the adapter hands to the
// narrative provider after the engine has committed state.
type NarrativeRequest struct {
	Category Category `json:"category"`
	Outcome  Outcome  `json:"outcome"`
	Entities []string `json:"entities,omitempty"` // names involved (enemy, item, location)
	Level    int      `json:"level"`
}

// Result is the structured output of one engine command.
type Result struct {
	State     SessionState      `json:"state"`
	Character Character         `json:"character"`
	Combat    *CombatSession    `json:"combat,omitempty"`
	Choice    *ChoicePrompt     `json:"choice,omitempty"`
	Lines     []string          `json:"lines"`               // mechanical output, one per event
	Narrative *NarrativeRequest `json:"narrative,omitempty"` // flavor-text request, resolved by the adapter
	LevelsUp  int               `json:"levels_up,omitempty"`
}
