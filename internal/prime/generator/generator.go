// Package generator searches for random primes of an exact bit-length.
package generator

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"primelab/internal/prime/primality"
	dErrors "primelab/pkg/domain-errors"
)

const (
	// MinBits is the smallest bit-length with an odd candidate whose top bit is set.
	MinBits = 2

	attemptsPerBit = 64
	minAttempts    = 1024
)

// Result describes one successful search. Elapsed covers every candidate
// including rejected ones; TestTime covers only the accepting test.
type Result struct {
	Value    *big.Int
	Bits     int
	Attempts int
	Elapsed  time.Duration
	TestTime time.Duration
}

// Generator draws candidates from rnd and keeps the first one tester accepts.
// It is not safe for concurrent use when rnd is not.
type Generator struct {
	rnd         io.Reader
	tester      primality.Tester
	maxAttempts int
	now         func() time.Time
}

type Option func(*Generator)

// WithMaxAttempts caps the number of candidates per search. n <= 0 keeps the
// bit-length derived default.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		g.maxAttempts = n
	}
}

// WithClock sets the time source used for elapsed time measurement.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New constructs a Generator.
func New(rnd io.Reader, tester primality.Tester, opts ...Option) (*Generator, error) {
	if rnd == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "random source is required")
	}
	if tester == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "primality tester is required")
	}
	g := &Generator{rnd: rnd, tester: tester, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Tester returns the primality test used to accept candidates.
func (g *Generator) Tester() primality.Tester { return g.tester }

// MaxAttempts returns the candidate budget for a search of the given size.
func (g *Generator) MaxAttempts(bits int) int {
	if g.maxAttempts > 0 {
		return g.maxAttempts
	}
	return max(attemptsPerBit*bits, minAttempts)
}

// Generate returns a probable prime with exactly bits bits. The candidate's
// top and bottom bits are forced to 1, so bits == 2 always yields 3.
func (g *Generator) Generate(ctx context.Context, bits int) (*Result, error) {
	if bits < MinBits {
		return nil, dErrors.New(dErrors.CodeInvalidArgument,
			fmt.Sprintf("bit-length must be at least %d, got %d", MinBits, bits))
	}

	limit := g.MaxAttempts(bits)
	start := g.now()
	for attempt := 1; attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "prime search interrupted")
		}

		candidate, err := g.candidate(bits)
		if err != nil {
			return nil, err
		}

		testStart := g.now()
		ok, err := g.tester.ProbablyPrime(candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			end := g.now()
			return &Result{
				Value:    candidate,
				Bits:     bits,
				Attempts: attempt,
				Elapsed:  end.Sub(start),
				TestTime: end.Sub(testStart),
			}, nil
		}
	}

	return nil, dErrors.New(dErrors.CodeResourceExhausted,
		fmt.Sprintf("no %d-bit prime found in %d attempts", bits, limit))
}

// candidate reads a uniformly random bits-wide integer and forces its top
// and bottom bits.
func (g *Generator) candidate(bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(g.rnd, buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read random candidate")
	}
	buf[0] &= byte(0xff >> uint(len(buf)*8-bits))

	n := new(big.Int).SetBytes(buf)
	n.SetBit(n, bits-1, 1)
	n.SetBit(n, 0, 1)
	return n, nil
}
