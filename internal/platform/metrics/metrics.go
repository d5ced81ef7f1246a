package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"primelab/internal/platform/config"
)

// Batch holds the metrics every primelab command reports about its own run.
type Batch struct {
	Registry        *prometheus.Registry
	LastRunSuccess  prometheus.Gauge
	LastRunDuration prometheus.Gauge
}

// New creates a registry with the Go runtime collector and the batch gauges.
// Domain metrics register on the same Registry.
func New(command string) *Batch {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	labels := prometheus.Labels{"command": command}
	return &Batch{
		Registry: reg,
		LastRunSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "primelab_last_run_success",
			Help:        "1 if the last batch run finished without error, 0 otherwise",
			ConstLabels: labels,
		}),
		LastRunDuration: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "primelab_last_run_duration_seconds",
			Help:        "Wall-clock duration of the last batch run",
			ConstLabels: labels,
		}),
	}
}

// Finish records the outcome of the run.
func (b *Batch) Finish(elapsed time.Duration, err error) {
	b.LastRunDuration.Set(elapsed.Seconds())
	if err != nil {
		b.LastRunSuccess.Set(0)
		return
	}
	b.LastRunSuccess.Set(1)
}

// Push sends everything in the registry to the configured Pushgateway.
// It is a no-op when no Pushgateway URL is set.
func (b *Batch) Push(ctx context.Context, cfg config.MetricsConfig) error {
	if cfg.PushgatewayURL == "" {
		return nil
	}
	if err := push.New(cfg.PushgatewayURL, cfg.Job).Gatherer(b.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
