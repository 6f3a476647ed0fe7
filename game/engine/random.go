package engine

import "math/rand/v2"

// RandomSource supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewSeededSource returns a deterministic source for reproducible boards.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource draws from the process-wide math/rand/v2 generator.
var DefaultSource RandomSource = globalSource{}
