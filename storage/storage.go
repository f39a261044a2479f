// Package storage defines the persistence contract for characters and
// their transient session state. Implementations must save both
// atomically: a failed save leaves the prior state fully intact.
package storage

import (
	"context"
	"errors"

	"github.com/nathoo/dungeonmaster/types"
)

// ErrNotFound is returned when no character exists for the player.
var ErrNotFound = errors.New("character not found")

// Store persists per-player game state.
type Store interface {
	// LoadCharacter returns the character for playerID, or ErrNotFound.
	LoadCharacter(ctx context.Context, playerID string) (types.Character, error)

	// LoadSession returns the transient session state for playerID.
	// A player with no active combat or choice gets an idle snapshot.
	LoadSession(ctx context.Context, playerID string) (types.SessionSnapshot, error)

	// Save writes the character and session state together, both or
	// neither.
	Save(ctx context.Context, ch types.Character, session types.SessionSnapshot) error

	// DeleteCharacter removes the character and any session state.
	// Used only by explicit player reset.
	DeleteCharacter(ctx context.Context, playerID string) error

	Close() error
}
