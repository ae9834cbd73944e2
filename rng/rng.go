// Package rng provides a seeded, reproducible uniform sampler used by
// the simulate package to draw transitions and, through each
// simulator's UniformAction, the search package's rollout actions. Two Streams constructed with the same seed produce
// identical sequences regardless of which consumer draws from them,
// so long as draws are issued in the same order.
package rng

import "math/rand"

// Stream is a deterministic pseudo-random stream seeded by a 64-bit
// integer. It is owned exclusively by exactly one simulator; nothing
// here is safe for concurrent use by more than one goroutine.
type Stream struct {
	r *rand.Rand
}

// New creates a Stream seeded by seed.
func New(seed uint64) *Stream {
	return &Stream{r: rand.New(rand.NewSource(int64(seed)))}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Intn returns a uniform draw in [0, n).
func (s *Stream) Intn(n int) int {
	return s.r.Intn(n)
}

// Uint64 returns a uniform draw over the full uint64 range, suitable
// for deriving sub-seeds deterministically from a parent stream.
func (s *Stream) Uint64() uint64 {
	return s.r.Uint64()
}

// ChooseByWeights selects an index into weights by cumulative
// distribution using a single Float64 draw. The last bucket absorbs
// floating-point drift so the function always returns a valid index
// for a non-empty, non-negative weights slice.
func (s *Stream) ChooseByWeights(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	draw := s.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if draw < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
