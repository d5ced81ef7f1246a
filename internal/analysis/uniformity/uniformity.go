// Package uniformity runs a chi-square goodness-of-fit test over persisted
// PRNG output.
package uniformity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat/distuv"

	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/platform/sentinel"
)

// Alpha is the significance level below which uniformity is rejected.
const Alpha = 0.05

// Result is the outcome of one chi-square test.
type Result struct {
	Samples   int
	Bins      int
	Observed  []int
	Expected  float64
	ChiSquare float64
	PValue    float64
}

// Uniform reports whether the null hypothesis survives at Alpha.
func (r *Result) Uniform() bool {
	return r.PValue > Alpha
}

// SturgesBins returns ceil(1 + 3.322*log10(n)).
func SturgesBins(n int) int {
	if n < 1 {
		return 0
	}
	return int(math.Ceil(1 + 3.322*math.Log10(float64(n))))
}

// Test bins values into Sturges bins of width (max-min) div bins and compares
// the counts against a uniform expectation.
func Test(values []*big.Int) (*Result, error) {
	if len(values) < 2 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "uniformity test needs at least two values")
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v.Cmp(lo) < 0 {
			lo = v
		}
		if v.Cmp(hi) > 0 {
			hi = v
		}
	}

	bins := SturgesBins(len(values))
	width := new(big.Int).Sub(hi, lo)
	width.Quo(width, big.NewInt(int64(bins)))
	if width.Sign() == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "value range is narrower than the bin count")
	}

	observed := make([]int, bins)
	last := big.NewInt(int64(bins - 1))
	idx := new(big.Int)
	for _, v := range values {
		idx.Sub(v, lo)
		idx.Quo(idx, width)
		if idx.Cmp(last) > 0 {
			idx.Set(last)
		}
		observed[idx.Int64()]++
	}

	expected := float64(len(values)) / float64(bins)
	var stat float64
	for _, o := range observed {
		d := float64(o) - expected
		stat += d * d / expected
	}

	return &Result{
		Samples:   len(values),
		Bins:      bins,
		Observed:  observed,
		Expected:  expected,
		ChiSquare: stat,
		PValue:    distuv.ChiSquared{K: float64(bins - 1)}.Survival(stat),
	}, nil
}

type NumberLoader interface {
	LoadNumbers(ctx context.Context, algorithm string, bits int) ([]*big.Int, error)
}

// Report is the per-file outcome of Analyze. Exactly one of Result, Missing
// and Err is set.
type Report struct {
	Algorithm string
	Bits      int
	Result    *Result
	Missing   bool
	Err       error
}

func (r Report) String() string {
	switch {
	case r.Missing:
		return fmt.Sprintf("File not found: %s %d bits", r.Algorithm, r.Bits)
	case r.Err != nil:
		return fmt.Sprintf("Algorithm: %s, Bits: %d\nError: %v\n", r.Algorithm, r.Bits, r.Err)
	}
	verdict := "Reject the null hypothesis: The distribution is not uniform."
	if r.Result.Uniform() {
		verdict = "Fail to reject the null hypothesis: The distribution is uniform."
	}
	return fmt.Sprintf("Algorithm: %s, Bits: %d\nChi-Square Statistic: %v, P-Value: %v\n%s\n",
		r.Algorithm, r.Bits, r.Result.ChiSquare, r.Result.PValue, verdict)
}

type Analyzer struct {
	loader NumberLoader
	logger *slog.Logger
}

func NewAnalyzer(loader NumberLoader, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{loader: loader, logger: logger}
}

// Analyze tests every (algorithm, bits) file. Missing and degenerate files
// are reported per entry; only I/O failures and cancellation abort the run.
func (a *Analyzer) Analyze(ctx context.Context, algorithms []string, bitSizes []int) ([]Report, error) {
	var reports []Report
	for _, alg := range algorithms {
		for _, bits := range bitSizes {
			if err := ctx.Err(); err != nil {
				return reports, dErrors.Wrap(err, dErrors.CodeTimeout, "uniformity analysis interrupted")
			}
			report := Report{Algorithm: alg, Bits: bits}
			values, err := a.loader.LoadNumbers(ctx, alg, bits)
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				report.Missing = true
				a.logger.WarnContext(ctx, "numbers file not found", "algorithm", alg, "bits", bits)
			case dErrors.HasCode(err, dErrors.CodeInvalidInput):
				report.Err = err
			case err != nil:
				return reports, fmt.Errorf("load %s/%d numbers: %w", alg, bits, err)
			default:
				report.Result, report.Err = Test(values)
			}
			if report.Result != nil {
				a.logger.InfoContext(ctx, "uniformity tested",
					"algorithm", alg,
					"bits", bits,
					"chi_square", report.Result.ChiSquare,
					"p_value", report.Result.PValue,
					"uniform", report.Result.Uniform(),
				)
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}
