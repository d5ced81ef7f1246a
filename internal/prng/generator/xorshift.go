package generator

import (
	"math/big"

	dErrors "primelab/pkg/domain-errors"
)

// Xorshift is Marsaglia's three-step shift/xor generator widened to an
// arbitrary state size.
type Xorshift struct {
	bits       int
	a, b, c    uint
	mask       *big.Int
	state, tmp *big.Int
}

// XorshiftShifts returns the (left, right, left) shift triple for a state of
// the given width. Triples up to 128 bits follow Marsaglia (2003); wider
// states scale the shifts with the width.
func XorshiftShifts(bits int) (a, b, c uint) {
	switch {
	case bits <= 32:
		return 13, 17, 5
	case bits <= 64:
		return 13, 7, 17
	case bits <= 96:
		return 10, 5, 26
	case bits <= 128:
		return 5, 14, 1
	default:
		return uint(bits / 3), uint(bits / 2), uint(bits / 5)
	}
}

// NewXorshift rejects seeds that reduce to zero, which is a fixed point.
func NewXorshift(seed *big.Int, bits int) (*Xorshift, error) {
	if err := validateBits(bits); err != nil {
		return nil, err
	}
	m := mask(bits)
	state := reduce(seed, bits, m)
	if state.Sign() == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "xorshift seed must be non-zero modulo 2^bits")
	}
	a, b, c := XorshiftShifts(bits)
	return &Xorshift{bits: bits, a: a, b: b, c: c, mask: m, state: state, tmp: new(big.Int)}, nil
}

func (g *Xorshift) Name() string { return AlgorithmXorshift }
func (g *Xorshift) Bits() int    { return g.bits }

func (g *Xorshift) Next() *big.Int {
	g.tmp.Lsh(g.state, g.a).And(g.tmp, g.mask)
	g.state.Xor(g.state, g.tmp)
	g.tmp.Rsh(g.state, g.b)
	g.state.Xor(g.state, g.tmp)
	g.tmp.Lsh(g.state, g.c).And(g.tmp, g.mask)
	g.state.Xor(g.state, g.tmp)
	return new(big.Int).Set(g.state)
}
