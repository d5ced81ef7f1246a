// Package meantime summarizes PRNG timing reports as a mean time per number.
package meantime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"primelab/internal/prng/models"
	"primelab/pkg/platform/sentinel"
)

type TimingLoader interface {
	LoadTiming(ctx context.Context, algorithm string, bits int) (*models.TimingReport, error)
}

// Entry is one parsed timing report.
type Entry struct {
	Algorithm string
	Bits      int
	// MeanMicros is total_time / speed in microseconds, 0 when speed is 0.
	MeanMicros float64
}

func (e Entry) String() string {
	return fmt.Sprintf("Algorithm: %s, Bits: %d, Mean Time: %.6f microseconds", e.Algorithm, e.Bits, e.MeanMicros)
}

// FromReport derives the entry for r.
func FromReport(r *models.TimingReport) Entry {
	e := Entry{Algorithm: r.Algorithm, Bits: r.Bits}
	if r.Speed > 0 {
		e.MeanMicros = r.TotalTime.Seconds() / r.Speed * 1_000_000
	}
	return e
}

// Run identifies one (algorithm, bits) timing report.
type Run struct {
	Algorithm string
	Bits      int
}

// Summary holds the parsed entries and the runs with no report.
type Summary struct {
	Entries []Entry
	Missing []Run
}

// Collect loads every (algorithm, bits) report; missing ones are skipped.
func Collect(ctx context.Context, loader TimingLoader, logger *slog.Logger, algorithms []string, bitSizes []int) (*Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	summary := &Summary{}
	for _, alg := range algorithms {
		for _, bits := range bitSizes {
			report, err := loader.LoadTiming(ctx, alg, bits)
			if errors.Is(err, sentinel.ErrNotFound) {
				logger.WarnContext(ctx, "timing report not found", "algorithm", alg, "bits", bits)
				summary.Missing = append(summary.Missing, Run{Algorithm: alg, Bits: bits})
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load %s/%d timing: %w", alg, bits, err)
			}
			summary.Entries = append(summary.Entries, FromReport(report))
		}
	}
	return summary, nil
}
