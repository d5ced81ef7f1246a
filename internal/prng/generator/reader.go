package generator

import (
	"fmt"
	"math/big"

	dErrors "primelab/pkg/domain-errors"
)

// Reader exposes a Generator as an io.Reader so it can seed other
// components, such as prime candidate search. Each draw contributes only
// the top Bits()/16 bytes of the value. The low half of an LCG state has
// short periods (bit 0 alternates) and never reaches the output.
type Reader struct {
	gen     Generator
	shift   uint
	draw    []byte
	pending []byte
	v       *big.Int
}

// MinReaderBits is the narrowest generator whose high half fills a byte.
const MinReaderBits = 16

func NewReader(gen Generator) (*Reader, error) {
	if gen.Bits() < MinReaderBits {
		return nil, dErrors.New(dErrors.CodeInvalidArgument,
			fmt.Sprintf("reader needs at least %d bits per draw, got %d", MinReaderBits, gen.Bits()))
	}
	n := gen.Bits() / 16
	return &Reader{
		gen:   gen,
		shift: uint(gen.Bits() - 8*n),
		draw:  make([]byte, n),
		v:     new(big.Int),
	}, nil
}

// Read always fills p completely and never fails.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.v.Rsh(r.gen.Next(), r.shift)
			r.v.FillBytes(r.draw)
			r.pending = r.draw
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}
