package record

import (
	"context"
	"fmt"

	"primelab/internal/prime/models"
	"primelab/pkg/platform/circuit"
	"primelab/pkg/platform/sentinel"
)

// Appender is the write side shared by every record sink.
type Appender interface {
	Append(ctx context.Context, rec *models.Record) error
}

// NamedSink labels a sink in errors and logs.
type NamedSink struct {
	Name string
	Sink Appender
}

type secondarySink struct {
	NamedSink
	breaker *circuit.Breaker
}

// FanOut writes each record to the primary sink, then to every secondary
// sink in order. Only a primary failure fails Append. Secondary sinks are
// best-effort: failures go to the failure handler and each sink sits behind
// its own circuit breaker, so a dead cache or database is skipped until its
// cooldown expires.
type FanOut struct {
	primary   NamedSink
	secondary []secondarySink
	onFailure func(sink string, err error)
}

type FanOutOption func(*fanOutConfig)

type fanOutConfig struct {
	breaker   []circuit.Option
	onFailure func(sink string, err error)
}

// WithBreaker configures the breaker in front of each secondary sink.
func WithBreaker(opts ...circuit.Option) FanOutOption {
	return func(c *fanOutConfig) {
		c.breaker = append(c.breaker, opts...)
	}
}

// WithFailureHandler receives secondary sink failures, including appends
// skipped by an open breaker (reported as sentinel.ErrUnavailable).
func WithFailureHandler(fn func(sink string, err error)) FanOutOption {
	return func(c *fanOutConfig) {
		c.onFailure = fn
	}
}

func NewFanOut(primary NamedSink, secondary []NamedSink, opts ...FanOutOption) *FanOut {
	cfg := fanOutConfig{onFailure: func(string, error) {}}
	for _, opt := range opts {
		opt(&cfg)
	}
	f := &FanOut{primary: primary, onFailure: cfg.onFailure}
	for _, s := range secondary {
		f.secondary = append(f.secondary, secondarySink{
			NamedSink: s,
			breaker:   circuit.New(s.Name, cfg.breaker...),
		})
	}
	return f
}

func (f *FanOut) Append(ctx context.Context, rec *models.Record) error {
	if err := f.primary.Sink.Append(ctx, rec); err != nil {
		return fmt.Errorf("%s sink: %w", f.primary.Name, err)
	}

	for _, s := range f.secondary {
		if !s.breaker.Allow() {
			f.onFailure(s.Name, fmt.Errorf("%s sink: circuit open: %w", s.Name, sentinel.ErrUnavailable))
			continue
		}
		if err := s.Sink.Append(ctx, rec); err != nil {
			s.breaker.RecordFailure()
			f.onFailure(s.Name, fmt.Errorf("%s sink: %w", s.Name, err))
			continue
		}
		s.breaker.RecordSuccess()
	}
	return nil
}

// Names lists the configured sinks in write order.
func (f *FanOut) Names() []string {
	names := []string{f.primary.Name}
	for _, s := range f.secondary {
		names = append(names, s.Name)
	}
	return names
}
