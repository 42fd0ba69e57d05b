// Package rng provides the explicit random source threaded through every
// generation, corruption, partitioning and fitting call.
//
// A Source is created from a single seed and hands out named streams. Each
// stream is an independent PCG generator whose second seed word is the xxhash
// of the stream name, so the numbers a stage draws depend only on the seed and
// the stage's name, never on how many draws other stages made before it or on
// goroutine scheduling.
package rng

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	xxhash "github.com/cespare/xxhash/v2"
)

// Source derives named, reproducible random streams from a seed.
//
// A Source must not be copied after first use.
type Source struct {
	seed  uint64
	calls atomic.Uint64
}

// New creates a Source for the given seed.
func New(seed uint64) *Source {
	return &Source{seed: seed}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Stream returns a generator dedicated to name. Calling Stream twice with the
// same name yields two generators producing the same sequence.
func (s *Source) Stream(name string) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, xxhash.Sum64String(name)))
}

// Streamf is Stream with a formatted name.
func (s *Source) Streamf(format string, args ...any) *rand.Rand {
	return s.Stream(fmt.Sprintf(format, args...))
}

// Sub returns a Source whose streams are disjoint from the parent's, for
// handing a whole namespace to a component.
func (s *Source) Sub(name string) *Source {
	return &Source{seed: s.seed ^ xxhash.Sum64String("sub/"+name)}
}

// Next returns a fresh sub-source for one call of a repeated operation. The
// n-th call on s yields Sub("<name>/<n>"), so repeating an operation draws new
// streams while the sequence of calls stays reproducible.
func (s *Source) Next(name string) *Source {
	n := s.calls.Add(1)
	return s.Sub(fmt.Sprintf("%s/%d", name, n))
}

// Mask draws a row mask where each entry is true with probability rate.
func Mask(r *rand.Rand, n int, rate float64) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = r.Float64() < rate
	}
	return mask
}
