// Package rng is the simulation's single seedable source of randomness.
// Every field that needs a roll or a shuffle takes a *Source rather than
// reaching for math/rand's global functions, so a world's evolution is
// fully determined by its seed and its sequence of ticks.
package rng

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// Source wraps a math/rand.Rand seeded independently of the global
// generator. ResetTestState reseeds it deterministically for tests.
type Source struct {
	r *rand.Rand
}

// New creates a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// ResetTestState reseeds the source, the test-time equivalent of the
// source engine's ResetTestState(seed).
func (s *Source) ResetTestState(seed int64) {
	s.r = rand.New(rand.NewSource(seed))
}

// Intn returns a pseudo-random int in [0,n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

// Chance reports true with probability percent/100, e.g. Chance(33) is a
// roughly 1-in-3 roll.
func (s *Source) Chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return s.r.Intn(100) < percent
}

// Float64 returns a pseudo-random float in [0,1).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Rand exposes the underlying *rand.Rand for callers that need to hand it
// to a third-party sampler (e.g. gonum's sampleuv.Weighted) while still
// drawing from this world's single seeded stream.
func (s *Source) Rand() *rand.Rand { return s.r }

// ShuffleInts performs a Fisher-Yates shuffle of xs in place.
func (s *Source) ShuffleInts(xs []int) {
	s.r.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}

// ShuffleOffsets shuffles a slice of [2]int orthogonal-neighbor offsets in
// place, used by water/smoke/steam to randomize equalization order.
func (s *Source) ShuffleOffsets(offs [][2]int) {
	s.r.Shuffle(len(offs), func(i, j int) { offs[i], offs[j] = offs[j], offs[i] })
}

// WeightedPick chooses an index into weights proportional to its weight,
// using gonum's weighted sampler. Returns -1 if weights is empty or all
// zero.
func (s *Source) WeightedPick(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	w := sampleuv.NewWeighted(weights, s.r)
	idx, ok := w.Take()
	if !ok {
		return -1
	}
	return idx
}
