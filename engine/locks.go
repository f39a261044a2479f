package engine

import "sync"

// lockTable serializes commands per player id. While one command for a
// player runs (load, resolve, persist), any overlapping command for the
// same player blocks until it completes. Different players never contend.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the per-player mutex and returns its unlock function.
// Player locks are never removed: the table grows with the player set,
// a few dozen bytes per player.
func (t *lockTable) acquire(playerID string) func() {
	t.mu.Lock()
	l, ok := t.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[playerID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
