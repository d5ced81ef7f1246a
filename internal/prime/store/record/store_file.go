package record

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"primelab/internal/prime/models"
	"primelab/pkg/platform/sentinel"
)

// FileStore appends records to the text layout under dir:
//
//	primes_<alg>_<bits>_bits.txt  one prime per line
//	stats_<alg>_<bits>_bits.txt   one stats block per record
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) PrimesPath(algorithm models.Algorithm, bits int) string {
	return filepath.Join(s.dir, fmt.Sprintf("primes_%s_%d_bits.txt", algorithm, bits))
}

func (s *FileStore) StatsPath(algorithm models.Algorithm, bits int) string {
	return filepath.Join(s.dir, fmt.Sprintf("stats_%s_%d_bits.txt", algorithm, bits))
}

func (s *FileStore) Append(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendFile(s.PrimesPath(rec.Algorithm, rec.Bits), func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\n", rec.Value)
		return err
	}); err != nil {
		return fmt.Errorf("append prime: %w", err)
	}
	if err := appendFile(s.StatsPath(rec.Algorithm, rec.Bits), func(w io.Writer) error {
		return WriteStats(w, rec)
	}); err != nil {
		return fmt.Errorf("append stats: %w", err)
	}
	return nil
}

// ListValues reads back the primes file for one algorithm and bit-length.
func (s *FileStore) ListValues(_ context.Context, algorithm models.Algorithm, bits int) ([]*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.PrimesPath(algorithm, bits))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("primes file for %s/%d: %w", algorithm, bits, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open primes file: %w", err)
	}
	defer f.Close()

	var out []*big.Int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, ok := new(big.Int).SetString(line, 10)
		if !ok {
			return nil, fmt.Errorf("parse prime %q", line)
		}
		out = append(out, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read primes file: %w", err)
	}
	return out, nil
}

// WriteStats renders one stats block followed by a blank line.
func WriteStats(w io.Writer, rec *models.Record) error {
	_, err := fmt.Fprintf(w,
		"Prime found: %s\nAlgorithm: %s\nBits: %d\nAttempts: %d\nTime: %.15f sec\nTest Time: %.15f sec\nSpeed: %.0f numbers/sec\n\n",
		rec.Value, rec.Algorithm, rec.Bits, rec.Attempts,
		rec.Elapsed.Seconds(), rec.TestTime.Seconds(), rec.Speed())
	return err
}

func appendFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
