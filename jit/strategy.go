package jit

import (
	"math/rand/v2"
	"slices"
)

// Strategy decides which registers the generated code uses. Emission does
// not depend on how the choice was made, so diversification is swapped by
// swapping the strategy.
type Strategy interface {
	Assign(pool []Reg) Registers
}

// Fixed always returns the same assignment.
type Fixed Registers

// DefaultRegisters is a Fixed strategy with a predictable layout.
var DefaultRegisters = Fixed{Acc: RAX, Index: RCX, Left: R8, Right: R9}

// Assign implements Strategy.
func (f Fixed) Assign(pool []Reg) Registers {
	return Registers(f)
}

// Shuffled draws a random permutation of the pool for every assignment.
type Shuffled struct {
	rng *rand.Rand
}

// NewShuffled creates a shuffling strategy. A seed of zero uses system
// entropy; any other seed is reproducible.
func NewShuffled(seed uint64) *Shuffled {
	if seed == 0 {
		return &Shuffled{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Shuffled{rng: rand.New(rand.NewPCG(seed, seed^0xDEADBEEF))}
}

// Assign implements Strategy.
func (s *Shuffled) Assign(pool []Reg) Registers {
	perm := slices.Clone(pool)
	s.rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	return Registers{Acc: perm[0], Index: perm[1], Left: perm[2], Right: perm[3]}
}
