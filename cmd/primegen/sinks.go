package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"primelab/internal/platform/config"
	"primelab/internal/platform/kafka"
	"primelab/internal/platform/postgres"
	"primelab/internal/platform/redis"
	"primelab/internal/prime/metrics"
	"primelab/internal/prime/service"
	"primelab/internal/prime/store/record"
	"primelab/pkg/platform/circuit"
)

const (
	breakerThreshold = 3
	breakerCooldown  = 30 * time.Second
)

// sinks holds the record stores and event publisher for one run.
type sinks struct {
	store     *record.FanOut
	publisher service.EventPublisher
	closers   []func() error
}

func (s *sinks) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openSinks always writes the text layout under resultsDir and adds every
// optional sink that has connection settings.
func openSinks(ctx context.Context, cfg config.Config, resultsDir string, logger *slog.Logger, m *metrics.Metrics) (_ *sinks, err error) {
	files, err := record.NewFileStore(resultsDir)
	if err != nil {
		return nil, err
	}
	out := &sinks{}
	defer func() {
		if err != nil {
			_ = out.Close()
		}
	}()

	var secondary []record.NamedSink

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		out.closers = append(out.closers, db.Close)
		pg := record.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		secondary = append(secondary, record.NamedSink{Name: "postgres", Sink: pg})
	}

	rdb, err := openRedis(ctx, cfg.Redis, logger, m)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		out.closers = append(out.closers, rdb.Close)
		secondary = append(secondary, record.NamedSink{Name: "redis", Sink: record.NewRedisStore(rdb.Client)})
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if producer != nil {
		out.closers = append(out.closers, func() error { producer.Close(); return nil })
		if err := producer.EnsureTopic(ctx); err != nil {
			return nil, err
		}
		out.publisher = producer
	}

	out.store = record.NewFanOut(record.NamedSink{Name: "file", Sink: files}, secondary,
		record.WithBreaker(circuit.WithFailureThreshold(breakerThreshold), circuit.WithCooldown(breakerCooldown)),
		record.WithFailureHandler(func(sink string, err error) {
			m.IncrementSinkFailures(sink)
			logger.WarnContext(ctx, "secondary sink failed", "sink", sink, "error", err)
		}),
	)
	events := "disabled"
	if producer != nil {
		events = producer.Topic()
	}
	logger.InfoContext(ctx, "record sinks ready", "sinks", out.store.Names(), "events", events)
	return out, nil
}

// openRedis returns nil when redis is not configured or does not answer a
// health check. An unreachable cache is skipped for the run, not fatal.
func openRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger, m *metrics.Metrics) (*redis.Client, error) {
	rdb, err := redis.New(cfg)
	if err != nil || rdb == nil {
		return nil, err
	}
	if err := rdb.Health(ctx); err != nil {
		_ = rdb.Close()
		m.IncrementSinkFailures("redis")
		logger.WarnContext(ctx, "redis sink disabled for this run", "error", err)
		return nil, nil
	}
	return rdb, nil
}
