package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	NumbersGenerated *prometheus.CounterVec
	BatchDuration    *prometheus.HistogramVec
	Speed            *prometheus.GaugeVec
}

// New registers the PRNG metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		NumbersGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_prng_numbers_generated_total",
			Help: "Total number of pseudo-random numbers generated",
		}, []string{"algorithm", "bits"}),
		BatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "primelab_prng_batch_duration_seconds",
			Help:    "Generation time of one batch, excluding output",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"algorithm"}),
		Speed: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "primelab_prng_speed_numbers_per_second",
			Help: "Generation speed of the last run",
		}, []string{"algorithm", "bits"}),
	}
}

func (m *Metrics) ObserveBatch(algorithm string, bits, size int, elapsed time.Duration) {
	m.NumbersGenerated.WithLabelValues(algorithm, strconv.Itoa(bits)).Add(float64(size))
	m.BatchDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

func (m *Metrics) SetSpeed(algorithm string, bits int, speed float64) {
	m.Speed.WithLabelValues(algorithm, strconv.Itoa(bits)).Set(speed)
}
