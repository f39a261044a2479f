// Package memory provides an in-memory Store for tests and ephemeral
// runs. State lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nathoo/dungeonmaster/storage"
	"github.com/nathoo/dungeonmaster/types"
)

type record struct {
	character types.Character
	session   types.SessionSnapshot
}

// Store keeps all state in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]record)}
}

// LoadCharacter implements storage.Store.
func (s *Store) LoadCharacter(ctx context.Context, playerID string) (types.Character, error) {
	if err := ctx.Err(); err != nil {
		return types.Character{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[playerID]
	if !ok {
		return types.Character{}, fmt.Errorf("player %s: %w", playerID, storage.ErrNotFound)
	}
	return cloneCharacter(rec.character), nil
}

// LoadSession implements storage.Store.
func (s *Store) LoadSession(ctx context.Context, playerID string) (types.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.SessionSnapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[playerID]
	if !ok {
		return types.SessionSnapshot{State: types.StateIdle}, nil
	}
	return cloneSession(rec.session), nil
}

// Save implements storage.Store. The map swap is atomic under the lock.
func (s *Store) Save(ctx context.Context, ch types.Character, session types.SessionSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[ch.PlayerID] = record{
		character: cloneCharacter(ch),
		session:   cloneSession(session),
	}
	return nil
}

// DeleteCharacter implements storage.Store.
func (s *Store) DeleteCharacter(ctx context.Context, playerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, playerID)
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }

// cloneCharacter copies the character so callers never share slices or
// pointers with the stored record.
func cloneCharacter(ch types.Character) types.Character {
	out := ch
	out.Inventory = append([]types.Item(nil), ch.Inventory...)
	if ch.Weapon != nil {
		w := *ch.Weapon
		out.Weapon = &w
	}
	if ch.Armor != nil {
		a := *ch.Armor
		out.Armor = &a
	}
	return out
}

func cloneSession(s types.SessionSnapshot) types.SessionSnapshot {
	out := s
	if s.Combat != nil {
		c := *s.Combat
		out.Combat = &c
	}
	if s.Choice != nil {
		p := *s.Choice
		p.Options = append([]types.ChoiceOption(nil), s.Choice.Options...)
		out.Choice = &p
	}
	return out
}
