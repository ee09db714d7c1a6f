// Package prng provides the seeded pseudo-random stream used for every
// randomised decision of an interest map.
//
// The generator is a small linear congruential recurrence:
//
//	state = (state*9301 + 49297) mod 233280
//	next  = state / 233280
//
// It has no external entropy. Two generators created with the same seed
// produce the same sequence bit for bit, which is what makes layouts
// reproducible and testable. All consumers share one stream per map and
// draw from it in a fixed call order; do not consume it concurrently.
package prng

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// Source is a deterministic stream of floats in [0, 1).
type Source interface {
	Next() float64
}

// LCG is the linear congruential generator behind every map.
// The zero value is a valid generator seeded with 0.
type LCG struct {
	seed  uint64
	state uint64
}

// New returns a generator seeded with seed.
func New(seed uint64) *LCG {
	g := &LCG{}
	g.Reseed(seed)
	return g
}

// Reseed restarts the sequence from seed. Reseeding with the same value
// reproduces the same sequence.
//
// The seed is reduced modulo 233280 up front; the recurrence is linear, so
// this yields exactly the sequence an unbounded-integer implementation
// would produce.
func (g *LCG) Reseed(seed uint64) {
	g.seed = seed
	g.state = seed % modulus
}

// Seed returns the value the generator was last seeded with.
func (g *LCG) Seed() uint64 { return g.seed }

// Next advances the state and returns a float in [0, 1).
func (g *LCG) Next() float64 {
	g.state = (g.state*multiplier + increment) % modulus
	return float64(g.state) / modulus
}

// Centered returns Next()-0.5 scaled by span, i.e. a value in [-span/2, span/2).
func Centered(s Source, span float64) float64 {
	return (s.Next() - 0.5) * span
}

// Intn returns an int in [0, n) drawn from s. It returns 0 when n <= 0.
func Intn(s Source, n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() * float64(n))
}
