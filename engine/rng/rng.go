// Package rng is the single source of randomness for the engine.
// Every probabilistic roll goes through a Source so tests can pin outcomes.
package rng

import "math/rand"

// Source produces rolls for the engine.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n must be positive.
	Intn(n int) int
}

// Seeded wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, enabling save/restore.
type Seeded struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *Seeded {
	return &Seeded{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Float64 draws exactly one value from the underlying source.
func (r *Seeded) Float64() float64 {
	r.pos++
	return float64(r.src.Int63()>>10) / (1 << 53)
}

// Intn derives an index from a single Float64 draw.
func (r *Seeded) Intn(n int) int {
	idx := int(r.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Chance reports whether a roll lands below p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	return src.Float64() < p
}

// Seed returns the seed the RNG was created with.
func (r *Seeded) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *Seeded) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *Seeded {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}

// Fixed always returns the same value. Intn maps it onto [0, n).
type Fixed float64

// Float64 returns the fixed value.
func (f Fixed) Float64() float64 { return float64(f) }

// Intn scales the fixed value onto [0, n).
func (f Fixed) Intn(n int) int {
	idx := int(float64(f) * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Sequence replays values in order and repeats the last one when exhausted.
type Sequence struct {
	Values []float64
	next   int
}

// NewSequence returns a Sequence over vals.
func NewSequence(vals ...float64) *Sequence {
	return &Sequence{Values: vals}
}

// Float64 returns the next value.
func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	i := s.next
	if i >= len(s.Values) {
		i = len(s.Values) - 1
	} else {
		s.next++
	}
	return s.Values[i]
}

// Intn scales the next value onto [0, n).
func (s *Sequence) Intn(n int) int {
	return Fixed(s.Float64()).Intn(n)
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.next
}
