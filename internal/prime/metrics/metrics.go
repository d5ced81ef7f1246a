package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PrimesGenerated    *prometheus.CounterVec
	CandidatesTested   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	GenerationFailures *prometheus.CounterVec
	SinkFailures       *prometheus.CounterVec
}

// New registers the prime generation metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PrimesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_primes_generated_total",
			Help: "Total number of primes generated and persisted",
		}, []string{"algorithm", "bits"}),
		CandidatesTested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_prime_candidates_tested_total",
			Help: "Total number of candidates tested, including rejected ones",
		}, []string{"algorithm"}),
		GenerationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "primelab_prime_generation_duration_seconds",
			Help:    "Wall-clock time of one prime search",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"algorithm"}),
		GenerationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_prime_generation_failures_total",
			Help: "Total number of failed prime searches by error code",
		}, []string{"algorithm", "code"}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_prime_sink_failures_total",
			Help: "Total number of failed or skipped secondary sink writes (postgres, redis, events)",
		}, []string{"sink"}),
	}
}

func (m *Metrics) ObserveGenerated(algorithm string, bits, attempts int, elapsed time.Duration) {
	m.PrimesGenerated.WithLabelValues(algorithm, strconv.Itoa(bits)).Inc()
	m.CandidatesTested.WithLabelValues(algorithm).Add(float64(attempts))
	m.GenerationDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementFailures(algorithm, code string) {
	m.GenerationFailures.WithLabelValues(algorithm, code).Inc()
}

func (m *Metrics) IncrementSinkFailures(sink string) {
	m.SinkFailures.WithLabelValues(sink).Inc()
}
