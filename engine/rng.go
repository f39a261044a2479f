package engine

import (
	"math/rand"
	"sync"
)

// RNG wraps math/rand.Rand behind a mutex. One seeded, player-independent
// source serves every session; outcomes stay bounded regardless of which
// player draws.
type RNG struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{src: rand.New(rand.NewSource(seed))}
}

// Range returns a uniform integer in [min, max] inclusive.
func (r *RNG) Range(min, max int) int {
	if min >= max {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.src.Intn(max-min+1)
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.mu.Lock()
	roll := r.src.Intn(total)
	r.mu.Unlock()
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Chance returns true with probability pct/100.
func (r *RNG) Chance(pct int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(100) < pct
}

// Pick returns a uniform index into a collection of length n.
func (r *RNG) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}
