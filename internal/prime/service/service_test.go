package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks RecordStore,EventPublisher,PrimeGenerator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"primelab/internal/prime/generator"
	"primelab/internal/prime/metrics"
	"primelab/internal/prime/models"
	"primelab/internal/prime/service/mocks"
	dErrors "primelab/pkg/domain-errors"
)

// =============================================================================
// Prime Service Test Suite
// =============================================================================
// The service owns verification before persistence, error translation, and
// the best-effort event stream. Generator behavior is covered in its package.

type PrimeServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockStore     *mocks.MockRecordStore
	mockPublisher *mocks.MockEventPublisher
	mockGenerator *mocks.MockPrimeGenerator
	metrics       *metrics.Metrics
	reported      []*models.Record
	service       *Service
	now           time.Time
	id            uuid.UUID
}

func TestPrimeServiceSuite(t *testing.T) {
	suite.Run(t, new(PrimeServiceSuite))
}

func (s *PrimeServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockRecordStore(s.ctrl)
	s.mockPublisher = mocks.NewMockEventPublisher(s.ctrl)
	s.mockGenerator = mocks.NewMockPrimeGenerator(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.reported = nil
	s.now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s.id = uuid.New()

	var err error
	s.service, err = New(s.mockStore,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithEventPublisher(s.mockPublisher),
		WithReporter(func(rec *models.Record) { s.reported = append(s.reported, rec) }),
		WithClock(func() time.Time { return s.now }),
		WithIDGenerator(func() uuid.UUID { return s.id }),
	)
	s.Require().NoError(err)
}

func (s *PrimeServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PrimeServiceSuite) job() Job {
	return Job{Algorithm: models.AlgorithmMillerRabin, Generator: s.mockGenerator}
}

func result(value int64, bits int) *generator.Result {
	return &generator.Result{
		Value:    big.NewInt(value),
		Bits:     bits,
		Attempts: 3,
		Elapsed:  30 * time.Millisecond,
		TestTime: 10 * time.Millisecond,
	}
}

func (s *PrimeServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "record store is required")
	})
}

func (s *PrimeServiceSuite) TestGenerate() {
	s.Run("persists, publishes and reports a verified prime", func() {
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 7).Return(result(97, 7), nil)
		s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *models.Record) error {
				s.Equal(s.id, rec.ID)
				s.Equal(int64(97), rec.Value.Int64())
				s.Equal(models.AlgorithmMillerRabin, rec.Algorithm)
				s.Equal(3, rec.Attempts)
				s.Equal(s.now, rec.CreatedAt)
				return nil
			})
		s.mockPublisher.EXPECT().Publish(gomock.Any(), []byte(s.id.String()), gomock.Any()).Return(nil)

		rec, err := s.service.Generate(context.Background(), s.job(), 7)
		s.Require().NoError(err)
		s.Equal(int64(97), rec.Value.Int64())
		s.Equal([]*models.Record{rec}, s.reported)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PrimesGenerated.WithLabelValues("miller_rabin", "7")))
		s.Equal(3.0, testutil.ToFloat64(s.metrics.CandidatesTested.WithLabelValues("miller_rabin")))
	})

	s.Run("generator error is returned unchanged", func() {
		genErr := dErrors.New(dErrors.CodeResourceExhausted, "no 64-bit prime found")
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 64).Return(nil, genErr)

		_, err := s.service.Generate(context.Background(), s.job(), 64)
		s.ErrorIs(err, genErr)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.GenerationFailures.WithLabelValues("miller_rabin", "resource_exhausted")))
	})

	s.Run("composite candidate is never persisted", func() {
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 10).Return(result(561, 10), nil)

		_, err := s.service.Generate(context.Background(), Job{Algorithm: models.AlgorithmFermat, Generator: s.mockGenerator}, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("bit-length mismatch is an invariant violation", func() {
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 8).Return(result(97, 8), nil)

		_, err := s.service.Generate(context.Background(), s.job(), 8)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("store failure is internal", func() {
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 7).Return(result(97, 7), nil)
		s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Generate(context.Background(), s.job(), 7)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "disk full")
	})

	s.Run("publish failure does not fail generation", func() {
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 7).Return(result(97, 7), nil)
		s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		rec, err := s.service.Generate(context.Background(), s.job(), 7)
		s.Require().NoError(err)
		s.NotNil(rec)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SinkFailures.WithLabelValues("events")))
	})
}

func (s *PrimeServiceSuite) TestRunBatch() {
	fermatGen := mocks.NewMockPrimeGenerator(s.ctrl)
	jobs := []Job{
		{Algorithm: models.AlgorithmFermat, Generator: fermatGen},
		{Algorithm: models.AlgorithmMillerRabin, Generator: s.mockGenerator},
	}

	s.Run("bit sizes outermost", func() {
		gomock.InOrder(
			fermatGen.EXPECT().Generate(gomock.Any(), 4).Return(result(11, 4), nil),
			s.mockGenerator.EXPECT().Generate(gomock.Any(), 4).Return(result(13, 4), nil),
			fermatGen.EXPECT().Generate(gomock.Any(), 7).Return(result(97, 7), nil),
			s.mockGenerator.EXPECT().Generate(gomock.Any(), 7).Return(result(89, 7), nil),
		)
		s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(4)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(4)

		records, err := s.service.RunBatch(context.Background(), jobs, []int{4, 7})
		s.Require().NoError(err)
		s.Require().Len(records, 4)
		s.Equal(models.AlgorithmFermat, records[0].Algorithm)
		s.Equal(4, records[1].Bits)
		s.Equal(int64(89), records[3].Value.Int64())
	})

	s.Run("stops at first failure", func() {
		fermatGen.EXPECT().Generate(gomock.Any(), 4).Return(result(11, 4), nil)
		s.mockGenerator.EXPECT().Generate(gomock.Any(), 4).Return(nil, dErrors.New(dErrors.CodeTimeout, "interrupted"))
		s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		records, err := s.service.RunBatch(context.Background(), jobs, []int{4, 7})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
		s.Len(records, 1)
	})
}
