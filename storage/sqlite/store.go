// Package sqlite provides the durable SQLite-backed Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/dungeonmaster/storage"
	"github.com/nathoo/dungeonmaster/storage/sqlite/migrations"
	"github.com/nathoo/dungeonmaster/types"
)

// Store persists game state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadCharacter implements storage.Store.
func (s *Store) LoadCharacter(ctx context.Context, playerID string) (types.Character, error) {
	if err := ctx.Err(); err != nil {
		return types.Character{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT player_id, name, health, max_health, level, experience, gold,
		       story_progress, location, weapon, armor, inventory,
		       created_at, updated_at
		FROM characters WHERE player_id = ?`, playerID)

	var ch types.Character
	var weapon, armor sql.NullString
	var inventory string
	var createdAt, updatedAt int64
	err := row.Scan(&ch.PlayerID, &ch.Name, &ch.Health, &ch.MaxHealth,
		&ch.Level, &ch.Experience, &ch.Gold, &ch.StoryProgress, &ch.Location,
		&weapon, &armor, &inventory, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Character{}, fmt.Errorf("player %s: %w", playerID, storage.ErrNotFound)
	}
	if err != nil {
		return types.Character{}, fmt.Errorf("load character: %w", err)
	}

	ch.CreatedAt = fromMillis(createdAt)
	ch.UpdatedAt = fromMillis(updatedAt)
	if err := json.Unmarshal([]byte(inventory), &ch.Inventory); err != nil {
		return types.Character{}, fmt.Errorf("decode inventory: %w", err)
	}
	if ch.Weapon, err = decodeItem(weapon); err != nil {
		return types.Character{}, fmt.Errorf("decode weapon: %w", err)
	}
	if ch.Armor, err = decodeItem(armor); err != nil {
		return types.Character{}, fmt.Errorf("decode armor: %w", err)
	}
	return ch, nil
}

// LoadSession implements storage.Store.
func (s *Store) LoadSession(ctx context.Context, playerID string) (types.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.SessionSnapshot{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT state, combat, choice FROM sessions WHERE player_id = ?`, playerID)

	var state string
	var combat, choice sql.NullString
	err := row.Scan(&state, &combat, &choice)
	if errors.Is(err, sql.ErrNoRows) {
		return types.SessionSnapshot{State: types.StateIdle}, nil
	}
	if err != nil {
		return types.SessionSnapshot{}, fmt.Errorf("load session: %w", err)
	}

	snap := types.SessionSnapshot{State: types.SessionState(state)}
	if combat.Valid && combat.String != "" {
		snap.Combat = &types.CombatSession{}
		if err := json.Unmarshal([]byte(combat.String), snap.Combat); err != nil {
			return types.SessionSnapshot{}, fmt.Errorf("decode combat: %w", err)
		}
	}
	if choice.Valid && choice.String != "" {
		snap.Choice = &types.ChoicePrompt{}
		if err := json.Unmarshal([]byte(choice.String), snap.Choice); err != nil {
			return types.SessionSnapshot{}, fmt.Errorf("decode choice: %w", err)
		}
	}
	return snap, nil
}

// Save implements storage.Store. Character and session go in one
// transaction so a failure leaves both untouched.
func (s *Store) Save(ctx context.Context, ch types.Character, session types.SessionSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ch.PlayerID == "" {
		return fmt.Errorf("player id is required")
	}

	inventory, err := json.Marshal(ch.Inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	weapon, err := encodeItem(ch.Weapon)
	if err != nil {
		return fmt.Errorf("encode weapon: %w", err)
	}
	armor, err := encodeItem(ch.Armor)
	if err != nil {
		return fmt.Errorf("encode armor: %w", err)
	}
	combat, err := encodeJSON(session.Combat)
	if err != nil {
		return fmt.Errorf("encode combat: %w", err)
	}
	choice, err := encodeJSON(session.Choice)
	if err != nil {
		return fmt.Errorf("encode choice: %w", err)
	}

	now := time.Now().UTC()
	createdAt := ch.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO characters (
			player_id, name, health, max_health, level, experience, gold,
			story_progress, location, weapon, armor, inventory,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			name = excluded.name,
			health = excluded.health,
			max_health = excluded.max_health,
			level = excluded.level,
			experience = excluded.experience,
			gold = excluded.gold,
			story_progress = excluded.story_progress,
			location = excluded.location,
			weapon = excluded.weapon,
			armor = excluded.armor,
			inventory = excluded.inventory,
			updated_at = excluded.updated_at`,
		ch.PlayerID, ch.Name, ch.Health, ch.MaxHealth, ch.Level,
		ch.Experience, ch.Gold, ch.StoryProgress, ch.Location,
		weapon, armor, string(inventory),
		toMillis(createdAt), toMillis(now))
	if err != nil {
		return fmt.Errorf("save character: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (player_id, state, combat, choice, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			state = excluded.state,
			combat = excluded.combat,
			choice = excluded.choice,
			updated_at = excluded.updated_at`,
		ch.PlayerID, string(session.State), combat, choice, toMillis(now))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// DeleteCharacter implements storage.Store.
func (s *Store) DeleteCharacter(ctx context.Context, playerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func decodeItem(col sql.NullString) (*types.Item, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	item := &types.Item{}
	if err := json.Unmarshal([]byte(col.String), item); err != nil {
		return nil, err
	}
	return item, nil
}

func encodeItem(item *types.Item) (any, error) {
	return encodeJSON(item)
}

// encodeJSON marshals v, mapping typed-nil pointers to SQL NULL.
func encodeJSON(v any) (any, error) {
	switch t := v.(type) {
	case *types.Item:
		if t == nil {
			return nil, nil
		}
	case *types.CombatSession:
		if t == nil {
			return nil, nil
		}
	case *types.ChoicePrompt:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
