// Package primality implements probabilistic primality tests over math/big
// integers. Testers draw their witnesses from an explicitly supplied random
// source so runs can be reproduced from a seed.
package primality

import (
	"fmt"
	"io"
	"math/big"

	dErrors "primelab/pkg/domain-errors"
)

// DefaultMillerRabinRounds bounds the false-positive probability of the
// Miller-Rabin test by 4^-64 = 2^-128.
const DefaultMillerRabinRounds = 64

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Tester decides whether n is probably prime. A false verdict is always
// correct; a true verdict may be wrong with bounded probability.
type Tester interface {
	Name() string
	ProbablyPrime(n *big.Int) (bool, error)
}

// fastPath classifies inputs that need no probabilistic rounds: everything
// below 2, the primes 2 and 3, and even numbers.
func fastPath(n *big.Int) (verdict bool, decided bool) {
	if n.Cmp(two) < 0 {
		return false, true
	}
	if n.Cmp(three) <= 0 {
		return true, true
	}
	if n.Bit(0) == 0 {
		return false, true
	}
	return false, false
}

// MillerRabin is the strong-pseudoprime test with random witnesses.
type MillerRabin struct {
	rnd    io.Reader
	rounds int
}

// NewMillerRabin builds a Miller-Rabin tester. rounds <= 0 selects
// DefaultMillerRabinRounds.
func NewMillerRabin(rnd io.Reader, rounds int) (*MillerRabin, error) {
	if rnd == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "random source is required")
	}
	if rounds <= 0 {
		rounds = DefaultMillerRabinRounds
	}
	return &MillerRabin{rnd: rnd, rounds: rounds}, nil
}

func (m *MillerRabin) Name() string { return "miller_rabin" }

// Rounds returns the number of witnesses tried per input.
func (m *MillerRabin) Rounds() int { return m.rounds }

func (m *MillerRabin) ProbablyPrime(n *big.Int) (bool, error) {
	if verdict, decided := fastPath(n); decided {
		return verdict, nil
	}

	// n-1 = 2^s * d with d odd
	nm1 := new(big.Int).Sub(n, one)
	s := nm1.TrailingZeroBits()
	d := new(big.Int).Rsh(nm1, s)

	// witnesses are drawn from [2, n-2]
	span := new(big.Int).Sub(n, three)
	a := new(big.Int)
	x := new(big.Int)

nextWitness:
	for range m.rounds {
		r, err := randomBelow(m.rnd, span)
		if err != nil {
			return false, err
		}
		a.Add(r, two)

		x.Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
			continue
		}
		for i := uint(1); i < s; i++ {
			x.Mul(x, x).Mod(x, n)
			if x.Cmp(nm1) == 0 {
				continue nextWitness
			}
			if x.Cmp(one) == 0 {
				return false, nil
			}
		}
		return false, nil
	}
	return true, nil
}

// Fermat checks a^(n-1) = 1 (mod n) for random bases. Carmichael numbers can
// fool it, so it is kept for benchmarking against Miller-Rabin.
type Fermat struct {
	rnd    io.Reader
	rounds int
}

// NewFermat builds a Fermat tester. rounds <= 0 uses bitlen(n)/4 rounds per
// input (at least one).
func NewFermat(rnd io.Reader, rounds int) (*Fermat, error) {
	if rnd == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "random source is required")
	}
	if rounds < 0 {
		rounds = 0
	}
	return &Fermat{rnd: rnd, rounds: rounds}, nil
}

func (f *Fermat) Name() string { return "fermat" }

func (f *Fermat) roundsFor(n *big.Int) int {
	if f.rounds > 0 {
		return f.rounds
	}
	return max(n.BitLen()/4, 1)
}

func (f *Fermat) ProbablyPrime(n *big.Int) (bool, error) {
	if verdict, decided := fastPath(n); decided {
		return verdict, nil
	}

	nm1 := new(big.Int).Sub(n, one)
	span := new(big.Int).Sub(n, three)
	a := new(big.Int)
	x := new(big.Int)
	for range f.roundsFor(n) {
		r, err := randomBelow(f.rnd, span)
		if err != nil {
			return false, err
		}
		a.Add(r, two)
		if x.Exp(a, nm1, n).Cmp(one) != 0 {
			return false, nil
		}
	}
	return true, nil
}

// New returns the tester registered under name.
func New(name string, rnd io.Reader, rounds int) (Tester, error) {
	switch name {
	case "miller_rabin":
		return NewMillerRabin(rnd, rounds)
	case "fermat":
		return NewFermat(rnd, rounds)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown primality test %q", name))
	}
}

// randomBelow returns a uniform value in [0, limit) by rejection sampling.
// limit must be positive.
func randomBelow(rnd io.Reader, limit *big.Int) (*big.Int, error) {
	bitLen := limit.BitLen()
	buf := make([]byte, (bitLen+7)/8)
	mask := byte(0xff >> (uint(len(buf)*8 - bitLen)))
	n := new(big.Int)
	for {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read random witness")
		}
		buf[0] &= mask
		n.SetBytes(buf)
		if n.Cmp(limit) < 0 {
			return n, nil
		}
	}
}
