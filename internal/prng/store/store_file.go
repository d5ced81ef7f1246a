package store

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
	"strconv"
	"strings"
	"time"

	"primelab/internal/prng/models"
	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/platform/sentinel"
)

// FileStore reads and writes the PRNG text layout under dir:
//
//	prng_<alg>_<bits>_bits.txt  one number per line
//	time_<alg>_<bits>_bits.txt  timing report
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) NumbersPath(algorithm string, bits int) string {
	return filepath.Join(s.dir, fmt.Sprintf("prng_%s_%d_bits.txt", algorithm, bits))
}

func (s *FileStore) TimingPath(algorithm string, bits int) string {
	return filepath.Join(s.dir, fmt.Sprintf("time_%s_%d_bits.txt", algorithm, bits))
}

// CreateNumbers truncates the numbers file and returns a writer for it.
func (s *FileStore) CreateNumbers(_ context.Context, algorithm string, bits int) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.Create(s.NumbersPath(algorithm, bits))
	if err != nil {
		return nil, fmt.Errorf("create numbers file: %w", err)
	}
	return f, nil
}

// DiscardNumbers removes the numbers file of an unfinished run so no partial
// sample is left for later analysis. A missing file is not an error.
func (s *FileStore) DiscardNumbers(_ context.Context, algorithm string, bits int) error {
	if err := os.Remove(s.NumbersPath(algorithm, bits)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove numbers file: %w", err)
	}
	return nil
}

// SaveTiming overwrites the timing report for the report's run.
func (s *FileStore) SaveTiming(_ context.Context, r models.TimingReport) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Algorithm: %s\n", r.Algorithm)
	fmt.Fprintf(&b, "Bits: %d\n", r.Bits)
	fmt.Fprintf(&b, "Total Time: %.15f sec\n", r.TotalTime.Seconds())
	fmt.Fprintf(&b, "Average Batch Time: %.15f sec\n", r.AverageBatchTime.Seconds())
	fmt.Fprintf(&b, "Speed: %.0f numbers/sec\n", r.Speed)
	if err := os.WriteFile(s.TimingPath(r.Algorithm, r.Bits), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write timing report: %w", err)
	}
	return nil
}

// LoadNumbers reads a numbers file back.
func (s *FileStore) LoadNumbers(_ context.Context, algorithm string, bits int) ([]*big.Int, error) {
	f, err := open(s.NumbersPath(algorithm, bits))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*big.Int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("%s:%d: not an integer", f.Name(), line))
		}
		out = append(out, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read numbers file: %w", err)
	}
	return out, nil
}

// LoadTiming parses a timing report. Unknown lines are ignored.
func (s *FileStore) LoadTiming(_ context.Context, algorithm string, bits int) (*models.TimingReport, error) {
	f, err := open(s.TimingPath(algorithm, bits))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTiming(f)
}

// ParseTiming reads the "Key: value" lines of a timing report. The file does
// not carry the iteration count, so Iterations is approximated from Speed.
func ParseTiming(r io.Reader) (*models.TimingReport, error) {
	report := &models.TimingReport{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		var err error
		switch strings.TrimSpace(key) {
		case "Algorithm":
			report.Algorithm = value
		case "Bits":
			report.Bits, err = strconv.Atoi(value)
		case "Total Time":
			report.TotalTime, err = parseSeconds(value)
		case "Average Batch Time":
			report.AverageBatchTime, err = parseSeconds(value)
		case "Speed":
			report.Speed, err = strconv.ParseFloat(strings.ReplaceAll(firstField(value), ",", ""), 64)
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("parse timing field %q", key))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read timing report: %w", err)
	}
	if report.TotalTime > 0 && report.Speed > 0 {
		report.Iterations = int(report.Speed*report.TotalTime.Seconds() + 0.5)
	}
	return report, nil
}

func parseSeconds(value string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(firstField(value), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func firstField(value string) string {
	if fields := strings.Fields(value); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
