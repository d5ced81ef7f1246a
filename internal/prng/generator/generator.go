// Package generator implements the arbitrary-width pseudo-random number
// generators compared by the prnggen experiments. None of them are
// cryptographically secure.
package generator

import (
	"fmt"
	"math/big"

	dErrors "primelab/pkg/domain-errors"
)

const (
	AlgorithmLCG      = "lcg"
	AlgorithmXorshift = "xorshift"
)

// Generator yields an endless stream of values in [0, 2^Bits()).
// Implementations are not safe for concurrent use.
type Generator interface {
	Name() string
	Bits() int
	// Next advances the state and returns a copy of it.
	Next() *big.Int
}

// New returns the generator registered under name, seeded with seed.
func New(name string, seed *big.Int, bits int) (Generator, error) {
	switch name {
	case AlgorithmLCG:
		return NewLCG(seed, bits)
	case AlgorithmXorshift:
		return NewXorshift(seed, bits)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown PRNG algorithm %q", name))
	}
}

func validateBits(bits int) error {
	if bits < 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("PRNG width must be positive, got %d", bits))
	}
	return nil
}

// mask returns 2^bits - 1.
func mask(bits int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return m.Sub(m, big.NewInt(1))
}

// reduce maps seed into [0, 2^bits) the way a non-negative modulus would.
func reduce(seed *big.Int, bits int, m *big.Int) *big.Int {
	if seed == nil {
		return new(big.Int)
	}
	// two's-complement And keeps negative seeds in range too
	return new(big.Int).And(seed, m)
}
