package generator

import "math/big"

// glibc rand() constants.
const (
	DefaultLCGMultiplier = 1103515245
	DefaultLCGIncrement  = 12345
)

// LCG is a linear congruential generator modulo 2^bits:
// state = (a*state + c) mod 2^bits.
type LCG struct {
	bits  int
	a, c  *big.Int
	mask  *big.Int
	state *big.Int
}

type LCGOption func(*LCG)

// WithLCGParams overrides the multiplier and increment.
func WithLCGParams(a, c int64) LCGOption {
	return func(g *LCG) {
		g.a = big.NewInt(a)
		g.c = big.NewInt(c)
	}
}

func NewLCG(seed *big.Int, bits int, opts ...LCGOption) (*LCG, error) {
	if err := validateBits(bits); err != nil {
		return nil, err
	}
	m := mask(bits)
	g := &LCG{
		bits:  bits,
		a:     big.NewInt(DefaultLCGMultiplier),
		c:     big.NewInt(DefaultLCGIncrement),
		mask:  m,
		state: reduce(seed, bits, m),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *LCG) Name() string { return AlgorithmLCG }
func (g *LCG) Bits() int    { return g.bits }

func (g *LCG) Next() *big.Int {
	g.state.Mul(g.state, g.a)
	g.state.Add(g.state, g.c)
	g.state.And(g.state, g.mask)
	return new(big.Int).Set(g.state)
}
