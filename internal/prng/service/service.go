package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"primelab/internal/prng/generator"
	"primelab/internal/prng/metrics"
	"primelab/internal/prng/models"
	dErrors "primelab/pkg/domain-errors"
)

const DefaultBatchSize = 1000

type NumberStore interface {
	CreateNumbers(ctx context.Context, algorithm string, bits int) (io.WriteCloser, error)
	// DiscardNumbers drops the output of a run that did not finish.
	DiscardNumbers(ctx context.Context, algorithm string, bits int) error
	SaveTiming(ctx context.Context, r models.TimingReport) error
}

// Spec describes one generate-and-save run.
type Spec struct {
	Algorithm  string
	Bits       int
	Seed       *big.Int
	Iterations int
	BatchSize  int
}

// Service runs PRNG batches and persists numbers plus timing reports.
type Service struct {
	store    NumberStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	parallel int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithParallelism bounds concurrent runs in RunAll; n <= 0 means unbounded.
func WithParallelism(n int) Option {
	return func(s *Service) {
		s.parallel = n
	}
}

func New(store NumberStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("number store is required")
	}
	s := &Service{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run generates spec.Iterations numbers, writes them one per line and saves
// the timing report.
func (s *Service) Run(ctx context.Context, spec Spec) (*models.TimingReport, error) {
	if spec.Iterations < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "iterations must not be negative")
	}
	if spec.BatchSize <= 0 {
		spec.BatchSize = DefaultBatchSize
	}
	gen, err := generator.New(spec.Algorithm, spec.Seed, spec.Bits)
	if err != nil {
		return nil, err
	}

	w, err := s.store.CreateNumbers(ctx, spec.Algorithm, spec.Bits)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create numbers output")
	}
	report, err := s.generate(ctx, gen, spec, w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = dErrors.Wrap(cerr, dErrors.CodeInternal, "failed to close numbers output")
	}
	if err == nil {
		if serr := s.store.SaveTiming(ctx, report); serr != nil {
			err = dErrors.Wrap(serr, dErrors.CodeInternal, "failed to save timing report")
		}
	}
	if err != nil {
		s.discard(ctx, spec, err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SetSpeed(report.Algorithm, report.Bits, report.Speed)
	}
	s.logger.InfoContext(ctx, "prng run saved",
		"algorithm", report.Algorithm,
		"bits", report.Bits,
		"iterations", report.Iterations,
		"total_time", report.TotalTime,
		"speed", report.Speed,
	)
	return &report, nil
}

// discard removes a partial numbers file. It detaches from ctx's
// cancellation since that may be the reason for the failure.
func (s *Service) discard(ctx context.Context, spec Spec, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.store.DiscardNumbers(ctx, spec.Algorithm, spec.Bits); err != nil {
		s.logger.ErrorContext(ctx, "failed to discard partial numbers",
			"algorithm", spec.Algorithm,
			"bits", spec.Bits,
			"error", err,
		)
		return
	}
	s.logger.WarnContext(ctx, "partial numbers discarded",
		"algorithm", spec.Algorithm,
		"bits", spec.Bits,
		"cause", cause,
	)
}

// generate times each batch's generation separately from its output.
func (s *Service) generate(ctx context.Context, gen generator.Generator, spec Spec, w io.Writer) (models.TimingReport, error) {
	bw := bufio.NewWriter(w)
	batch := make([]*big.Int, 0, spec.BatchSize)
	var durations []time.Duration
	buf := make([]byte, 0, 64)

	for remaining := spec.Iterations; remaining > 0; {
		if err := ctx.Err(); err != nil {
			return models.TimingReport{}, dErrors.Wrap(err, dErrors.CodeTimeout, "prng run interrupted")
		}
		size := min(spec.BatchSize, remaining)

		start := s.now()
		batch = batch[:0]
		for range size {
			batch = append(batch, gen.Next())
		}
		elapsed := s.now().Sub(start)
		durations = append(durations, elapsed)
		if s.metrics != nil {
			s.metrics.ObserveBatch(gen.Name(), gen.Bits(), size, elapsed)
		}

		for _, n := range batch {
			buf = n.Append(buf[:0], 10)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return models.TimingReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write numbers")
			}
		}
		remaining -= size
	}
	if err := bw.Flush(); err != nil {
		return models.TimingReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to flush numbers")
	}
	return models.NewTimingReport(gen.Name(), gen.Bits(), spec.Iterations, durations), nil
}

// RunAll executes every spec concurrently and returns the reports in spec
// order. The first failure cancels the remaining runs.
func (s *Service) RunAll(ctx context.Context, specs []Spec) ([]*models.TimingReport, error) {
	reports := make([]*models.TimingReport, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	if s.parallel > 0 {
		g.SetLimit(s.parallel)
	}
	for i, spec := range specs {
		g.Go(func() error {
			report, err := s.Run(ctx, spec)
			if err != nil {
				return fmt.Errorf("%s/%d bits: %w", spec.Algorithm, spec.Bits, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
