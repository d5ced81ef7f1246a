package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	dErrors "primelab/pkg/domain-errors"
)

// Algorithm names the primality test that accepted a prime.
type Algorithm string

const (
	AlgorithmMillerRabin Algorithm = "miller_rabin"
	AlgorithmFermat      Algorithm = "fermat"
)

// ParseAlgorithm validates a configured algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgorithmMillerRabin, AlgorithmFermat:
		return a, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown algorithm %q", s))
	}
}

func (a Algorithm) String() string { return string(a) }

// Record is one successful generation. It is created once, persisted, and
// never mutated afterwards.
//
// Invariants:
//   - Value has exactly Bits bits
//   - Attempts is at least 1
//   - Elapsed and TestTime are non-negative and TestTime <= Elapsed
type Record struct {
	ID        uuid.UUID
	Value     *big.Int
	Bits      int
	Algorithm Algorithm
	Attempts  int
	Elapsed   time.Duration
	TestTime  time.Duration
	CreatedAt time.Time
}

// NewRecord validates the invariants and copies value so later mutation of
// the caller's integer cannot reach the record.
func NewRecord(id uuid.UUID, value *big.Int, bits int, algorithm Algorithm, attempts int, elapsed, testTime time.Duration, createdAt time.Time) (*Record, error) {
	if value == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record value is required")
	}
	if value.BitLen() != bits {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("record value has %d bits, want %d", value.BitLen(), bits))
	}
	if attempts < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record attempts must be at least 1")
	}
	if elapsed < 0 || testTime < 0 || testTime > elapsed {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record timings are inconsistent")
	}
	return &Record{
		ID:        id,
		Value:     new(big.Int).Set(value),
		Bits:      bits,
		Algorithm: algorithm,
		Attempts:  attempts,
		Elapsed:   elapsed,
		TestTime:  testTime,
		CreatedAt: createdAt,
	}, nil
}

// Speed reports candidates tested per second over the whole search.
func (r *Record) Speed() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Elapsed.Seconds()
}
