package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"primelab/internal/prime/models"
	"primelab/pkg/platform/circuit"
	"primelab/pkg/platform/sentinel"
)

type failingSink struct {
	err   error
	calls *int
}

func (f failingSink) Append(context.Context, *models.Record) error {
	if f.calls != nil {
		*f.calls++
	}
	return f.err
}

type sinkFailure struct {
	sink string
	err  error
}

type FanOutSuite struct {
	suite.Suite
	ctx      context.Context
	failures []sinkFailure
}

func TestFanOutSuite(t *testing.T) {
	suite.Run(t, new(FanOutSuite))
}

func (s *FanOutSuite) SetupTest() {
	s.ctx = context.Background()
	s.failures = nil
}

func (s *FanOutSuite) recordFailure(sink string, err error) {
	s.failures = append(s.failures, sinkFailure{sink, err})
}

func (s *FanOutSuite) TestWritesEverySink() {
	primary, secondary := NewInMemoryStore(), NewInMemoryStore()
	f := NewFanOut(NamedSink{"file", primary}, []NamedSink{{"redis", secondary}})

	s.Require().NoError(f.Append(s.ctx, newTestRecord(s.T(), 5, 3, models.AlgorithmFermat)))
	s.Equal(1, primary.Count())
	s.Equal(1, secondary.Count())
	s.Equal([]string{"file", "redis"}, f.Names())
}

func (s *FanOutSuite) TestPrimaryFailureSkipsSecondary() {
	secondary := NewInMemoryStore()
	f := NewFanOut(NamedSink{"file", failingSink{err: errors.New("disk full")}}, []NamedSink{{"redis", secondary}})

	err := f.Append(s.ctx, newTestRecord(s.T(), 5, 3, models.AlgorithmFermat))
	s.Require().Error(err)
	s.Contains(err.Error(), "file sink: disk full")
	s.Zero(secondary.Count())
}

func (s *FanOutSuite) TestSecondaryFailuresAreReported() {
	primary, last := NewInMemoryStore(), NewInMemoryStore()
	redisErr := errors.New("connection refused")
	f := NewFanOut(
		NamedSink{"file", primary},
		[]NamedSink{{"redis", failingSink{err: redisErr}}, {"memory", last}},
		WithFailureHandler(s.recordFailure),
	)

	s.Require().NoError(f.Append(s.ctx, newTestRecord(s.T(), 5, 3, models.AlgorithmFermat)))
	s.Equal(1, primary.Count())
	s.Equal(1, last.Count(), "later sinks still run after a secondary failure")
	s.Require().Len(s.failures, 1)
	s.Equal("redis", s.failures[0].sink)
	s.ErrorIs(s.failures[0].err, redisErr)
}

func (s *FanOutSuite) TestOpenBreakerSkipsSink() {
	calls := 0
	f := NewFanOut(
		NamedSink{"file", NewInMemoryStore()},
		[]NamedSink{{"postgres", failingSink{err: errors.New("dial tcp: i/o timeout"), calls: &calls}}},
		WithBreaker(circuit.WithFailureThreshold(2)),
		WithFailureHandler(s.recordFailure),
	)

	for i := range 4 {
		s.Require().NoError(f.Append(s.ctx, newTestRecord(s.T(), 7, 3, models.AlgorithmMillerRabin)), "append %d", i)
	}
	s.Equal(2, calls, "sink is not called once the breaker opened")
	s.Require().Len(s.failures, 4)
	s.NotErrorIs(s.failures[1].err, sentinel.ErrUnavailable)
	s.ErrorIs(s.failures[2].err, sentinel.ErrUnavailable)
	s.ErrorIs(s.failures[3].err, sentinel.ErrUnavailable)
}
