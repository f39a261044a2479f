// Package config holds the immutable engine configuration. Values come
// from environment variables with compiled-in defaults; the engine never
// reads configuration ambiently.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nathoo/dungeonmaster/types"
)

// Weights is the exploration category distribution. Values are percent
// and must sum to 100.
type Weights struct {
	Combat int `env:"DM_WEIGHT_COMBAT" envDefault:"30"`
	Item   int `env:"DM_WEIGHT_ITEM" envDefault:"20"`
	NPC    int `env:"DM_WEIGHT_NPC" envDefault:"15"`
	Story  int `env:"DM_WEIGHT_STORY" envDefault:"35"`
}

// Config is the full engine configuration, injected at construction.
type Config struct {
	MaxHealth      int `env:"DM_MAX_HEALTH" envDefault:"100"`
	StartingHealth int `env:"DM_STARTING_HEALTH" envDefault:"100"`
	StartingLevel  int `env:"DM_STARTING_LEVEL" envDefault:"1"`

	ExperiencePerLevel int `env:"DM_EXPERIENCE_PER_LEVEL" envDefault:"100"`
	HealthPerLevel     int `env:"DM_HEALTH_PER_LEVEL" envDefault:"10"`
	// Flat damage added per level above 1.
	LevelDamageBonus int `env:"DM_LEVEL_DAMAGE_BONUS" envDefault:"2"`

	InventoryCapacity int `env:"DM_INVENTORY_CAPACITY" envDefault:"20"`

	// Unarmed player damage; an equipped weapon shifts both ends by its
	// damage bonus.
	PlayerDamageMin int `env:"DM_PLAYER_DAMAGE_MIN" envDefault:"10"`
	PlayerDamageMax int `env:"DM_PLAYER_DAMAGE_MAX" envDefault:"25"`

	// Defeat penalty: gold lost as a percentage, and the revive floor as
	// a fraction of max health (revive = max(1, maxHealth/ReviveDivisor)).
	DefeatGoldPenaltyPct int `env:"DM_DEFEAT_GOLD_PENALTY_PCT" envDefault:"50"`
	ReviveDivisor        int `env:"DM_REVIVE_DIVISOR" envDefault:"4"`

	SessionTimeout time.Duration `env:"DM_SESSION_TIMEOUT" envDefault:"30m"`

	ExploreWeights Weights

	// Content directory with .lua table files; empty means built-in
	// defaults only.
	ContentDir string `env:"DM_CONTENT_DIR"`

	// Storage
	DatabasePath string `env:"DM_DATABASE_PATH" envDefault:"dungeonmaster.db"`

	// Narrative provider
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"DM_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	RNGSeed int64 `env:"DM_RNG_SEED"` // 0 means time-derived
}

// Load parses configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the compiled-in configuration, independent of the
// environment. Used by tests and ephemeral runs.
func Default() Config {
	return Config{
		MaxHealth:            100,
		StartingHealth:       100,
		StartingLevel:        1,
		ExperiencePerLevel:   100,
		HealthPerLevel:       10,
		LevelDamageBonus:     2,
		InventoryCapacity:    20,
		PlayerDamageMin:      10,
		PlayerDamageMax:      25,
		DefeatGoldPenaltyPct: 50,
		ReviveDivisor:        4,
		SessionTimeout:       30 * time.Minute,
		ExploreWeights:       Weights{Combat: 30, Item: 20, NPC: 15, Story: 35},
		DatabasePath:         "dungeonmaster.db",
		GeminiModel:          "gemini-2.5-flash",
	}
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	if c.MaxHealth <= 0 {
		return fmt.Errorf("max health must be positive, got %d", c.MaxHealth)
	}
	if c.StartingHealth <= 0 || c.StartingHealth > c.MaxHealth {
		return fmt.Errorf("starting health %d out of range [1,%d]", c.StartingHealth, c.MaxHealth)
	}
	if c.StartingLevel < 1 {
		return fmt.Errorf("starting level must be at least 1, got %d", c.StartingLevel)
	}
	if c.ExperiencePerLevel <= 0 {
		return fmt.Errorf("experience per level must be positive, got %d", c.ExperiencePerLevel)
	}
	if c.InventoryCapacity <= 0 {
		return fmt.Errorf("inventory capacity must be positive, got %d", c.InventoryCapacity)
	}
	if c.PlayerDamageMin > c.PlayerDamageMax || c.PlayerDamageMin < 0 {
		return fmt.Errorf("player damage range [%d,%d] invalid", c.PlayerDamageMin, c.PlayerDamageMax)
	}
	if c.DefeatGoldPenaltyPct < 0 || c.DefeatGoldPenaltyPct > 100 {
		return fmt.Errorf("defeat gold penalty %d%% out of range [0,100]", c.DefeatGoldPenaltyPct)
	}
	if c.ReviveDivisor < 1 {
		return fmt.Errorf("revive divisor must be at least 1, got %d", c.ReviveDivisor)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout)
	}
	w := c.ExploreWeights
	if sum := w.Combat + w.Item + w.NPC + w.Story; sum != 100 {
		return fmt.Errorf("exploration weights must sum to 100, got %d", sum)
	}
	return nil
}

// PlayerDamage returns the effective damage range for a character,
// including the equipped weapon and the level bonus.
func (c Config) PlayerDamage(ch types.Character) types.DamageRange {
	r := types.DamageRange{Min: c.PlayerDamageMin, Max: c.PlayerDamageMax}
	if ch.Weapon != nil {
		r.Min += ch.Weapon.Effect.DamageBonus
		r.Max += ch.Weapon.Effect.DamageBonus
	}
	bonus := (ch.Level - 1) * c.LevelDamageBonus
	r.Min += bonus
	r.Max += bonus
	return r
}
