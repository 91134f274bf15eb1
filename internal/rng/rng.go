// Package rng provides deterministic pseudo-random vector data.
//
// A failing differential case must be reproducible from its seed alone, so
// the generator's output is fully determined by the seed it was created with.
package rng

import (
	"math/rand"
)

// Rng is a seeded generator for test vector data.
type Rng struct {
	r *rand.Rand
}

// New creates a generator for the given seed.
func New(seed uint64) *Rng {
	return &Rng{
		r: rand.New(rand.NewSource(int64(seed))), //nolint:gosec // reproducibility, not cryptography
	}
}

// FillUniform fills buf with values drawn from a continuous uniform
// distribution over [low, high).
func (g *Rng) FillUniform(buf []float32, low, high float32) {
	span := high - low
	for i := range buf {
		buf[i] = low + g.r.Float32()*span
	}
}
