package models

import "time"

// TimingReport summarizes one PRNG batch run. Only generation time is
// counted; writing numbers out is excluded.
type TimingReport struct {
	Algorithm        string
	Bits             int
	Iterations       int
	TotalTime        time.Duration
	AverageBatchTime time.Duration
	// Speed is numbers per second, 0 when TotalTime is 0.
	Speed float64
}

// MeanTime is the average time to produce one number.
func (r TimingReport) MeanTime() time.Duration {
	if r.Speed <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / r.Speed)
}

// NewTimingReport derives the averages from per-batch durations.
func NewTimingReport(algorithm string, bits, iterations int, batches []time.Duration) TimingReport {
	var total time.Duration
	for _, b := range batches {
		total += b
	}
	r := TimingReport{Algorithm: algorithm, Bits: bits, Iterations: iterations, TotalTime: total}
	if len(batches) > 0 {
		r.AverageBatchTime = total / time.Duration(len(batches))
	}
	if total > 0 {
		r.Speed = float64(iterations) / total.Seconds()
	}
	return r
}
