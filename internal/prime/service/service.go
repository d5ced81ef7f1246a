package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"primelab/internal/prime/generator"
	"primelab/internal/prime/metrics"
	"primelab/internal/prime/models"
	dErrors "primelab/pkg/domain-errors"
)

// verificationRounds is the Miller-Rabin round count handed to
// big.Int.ProbablyPrime, which also runs a Baillie-PSW test.
const verificationRounds = 20

type RecordStore interface {
	Append(ctx context.Context, rec *models.Record) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type PrimeGenerator interface {
	Generate(ctx context.Context, bits int) (*generator.Result, error)
}

// Job pairs an algorithm label with the generator that implements it.
type Job struct {
	Algorithm models.Algorithm
	Generator PrimeGenerator
}

// Service runs prime searches, verifies their output independently and
// persists one Record per success.
type Service struct {
	store     RecordStore
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	reporter  func(*models.Record)
	verify    func(*big.Int) bool
	now       func() time.Time
	newID     func() uuid.UUID
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

// WithEventPublisher streams every persisted record. Publish failures are
// logged and counted but do not fail the generation.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithReporter is called with each persisted record, e.g. to print it.
func WithReporter(fn func(*models.Record)) Option {
	return func(s *Service) {
		s.reporter = fn
	}
}

// WithVerifier replaces the independent primality check run before persistence.
func WithVerifier(fn func(*big.Int) bool) Option {
	return func(s *Service) {
		s.verify = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New constructs a Service.
func New(store RecordStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("primelab/internal/prime/service"),
		verify: func(n *big.Int) bool { return n.ProbablyPrime(verificationRounds) },
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate runs one search and persists the result.
func (s *Service) Generate(ctx context.Context, job Job, bits int) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "prime.Generate", trace.WithAttributes(
		attribute.String("prime.algorithm", job.Algorithm.String()),
		attribute.Int("prime.bits", bits),
	))
	defer span.End()

	rec, err := s.generate(ctx, job, bits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prime generation failed")
		s.incrementFailures(job.Algorithm, err)
		s.logger.ErrorContext(ctx, "prime generation failed",
			"algorithm", job.Algorithm,
			"bits", bits,
			"error", err,
		)
		return nil, err
	}
	span.SetAttributes(attribute.Int("prime.attempts", rec.Attempts))
	return rec, nil
}

func (s *Service) generate(ctx context.Context, job Job, bits int) (*models.Record, error) {
	res, err := job.Generator.Generate(ctx, bits)
	if err != nil {
		return nil, err
	}

	if !s.verify(res.Value) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s accepted a composite %d-bit candidate", job.Algorithm, bits))
	}

	rec, err := models.NewRecord(s.newID(), res.Value, res.Bits, job.Algorithm,
		res.Attempts, res.Elapsed, res.TestTime, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Append(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist prime record")
	}
	s.publish(ctx, rec)

	if s.metrics != nil {
		s.metrics.ObserveGenerated(rec.Algorithm.String(), rec.Bits, rec.Attempts, rec.Elapsed)
	}
	s.logger.InfoContext(ctx, "prime generated",
		"id", rec.ID,
		"algorithm", rec.Algorithm,
		"bits", rec.Bits,
		"attempts", rec.Attempts,
		"elapsed", rec.Elapsed,
		"test_time", rec.TestTime,
	)
	if s.reporter != nil {
		s.reporter(rec)
	}
	return rec, nil
}

// RunBatch generates one prime per (bit size, job), bit sizes outermost.
// It stops at the first failure and returns the records persisted so far.
func (s *Service) RunBatch(ctx context.Context, jobs []Job, bitSizes []int) ([]*models.Record, error) {
	records := make([]*models.Record, 0, len(jobs)*len(bitSizes))
	for _, bits := range bitSizes {
		for _, job := range jobs {
			rec, err := s.Generate(ctx, job, bits)
			if err != nil {
				return records, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *Service) publish(ctx context.Context, rec *models.Record) {
	if s.publisher == nil {
		return
	}
	data, err := rec.Marshal()
	if err == nil {
		err = s.publisher.Publish(ctx, []byte(rec.ID.String()), data)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementSinkFailures("events")
		}
		s.logger.WarnContext(ctx, "failed to publish generation event",
			"id", rec.ID,
			"error", err,
		)
	}
}

func (s *Service) incrementFailures(algorithm models.Algorithm, err error) {
	if s.metrics != nil {
		s.metrics.IncrementFailures(algorithm.String(), string(dErrors.CodeOf(err)))
	}
}
