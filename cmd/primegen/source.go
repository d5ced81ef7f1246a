package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"

	"primelab/internal/prng/generator"
)

const (
	sourceChaCha8 = "chacha8"
	sourceCrypto  = "crypto"
	sourceLCG     = "lcg"
)

// lcgSourceBits is the LCG width when it feeds candidates through a Reader.
const lcgSourceBits = 64

// newSource returns the candidate and witness source named by name.
func newSource(name string, seed int64) (io.Reader, error) {
	switch name {
	case sourceChaCha8:
		var key [32]byte
		binary.LittleEndian.PutUint64(key[:8], uint64(seed))
		return rand.NewChaCha8(key), nil
	case sourceCrypto:
		return crand.Reader, nil
	case sourceLCG:
		gen, err := generator.NewLCG(big.NewInt(seed), lcgSourceBits)
		if err != nil {
			return nil, err
		}
		r, err := generator.NewReader(gen)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown random source %q", name)
	}
}
