// Package prng implements the deterministic pseudo-random generator used to
// build parity-check matrices and interleaving permutations. Encoder and
// decoder must draw identical sequences, so the generator is a plain value
// seeded explicitly and never shared between goroutines.
package prng

import "math"

// Seeds of the three code families.
const (
	SeedMetadata   = 38545
	SeedData       = 785465
	SeedInterleave = 226759
)

// Source is a 64-bit linear congruential generator with a tempered 32-bit output.
type Source struct {
	state uint64
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	return &Source{state: seed}
}

// Uint32 advances the generator and returns the next tempered value.
func (s *Source) Uint32() uint32 {
	s.state = 6364136223846793005*s.state + 1
	return temper(uint32(s.state >> 32))
}

// Pos returns a position in [0, n) scaled from the next output. n must be
// positive.
func (s *Source) Pos(n int) int {
	p := int(float32(s.Uint32()) / float32(math.MaxUint32) * float32(n))
	if p >= n {
		p = n - 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

func temper(x uint32) uint32 {
	x ^= x >> 11
	x ^= x << 7 & 0x9D2C5680
	x ^= x << 15 & 0xEFC60000
	x ^= x >> 18
	return x
}
