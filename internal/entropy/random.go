// Package entropy provides the seedable randomness source behind every
// stochastic simulation event. Runs with the same seed replay identically,
// which the simulation tests rely on.
package entropy

import (
	"math/rand"
)

// Source wraps a seeded generator. Not safe for concurrent use — the
// simulation is single-threaded and owns exactly one.
type Source struct {
	rng *rand.Rand
}

// New creates a source from a seed.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Range returns a uniform draw in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
