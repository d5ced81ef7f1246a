package meantime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primelab/internal/prng/models"
	"primelab/internal/prng/store"
	dErrors "primelab/pkg/domain-errors"
)

func TestFromReport(t *testing.T) {
	t.Run("scales to microseconds", func(t *testing.T) {
		e := FromReport(&models.TimingReport{Algorithm: "lcg", Bits: 40, TotalTime: 2 * time.Second, Speed: 250_000})
		assert.InDelta(t, 8.0, e.MeanMicros, 1e-9)
		assert.Equal(t, "Algorithm: lcg, Bits: 40, Mean Time: 8.000000 microseconds", e.String())
	})

	t.Run("zero speed", func(t *testing.T) {
		e := FromReport(&models.TimingReport{Algorithm: "xorshift", Bits: 56, TotalTime: time.Second})
		assert.Zero(t, e.MeanMicros)
	})
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	fs := store.NewFileStore(dir)
	ctx := context.Background()
	require.NoError(t, fs.SaveTiming(ctx, models.TimingReport{
		Algorithm: "lcg", Bits: 40, TotalTime: 500 * time.Millisecond, AverageBatchTime: time.Millisecond, Speed: 1_000_000,
	}))
	require.NoError(t, fs.SaveTiming(ctx, models.TimingReport{
		Algorithm: "xorshift", Bits: 56, TotalTime: time.Second, Speed: 100_000,
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	summary, err := Collect(ctx, fs, logger, []string{"lcg", "xorshift"}, []int{40, 56})
	require.NoError(t, err)

	require.Len(t, summary.Entries, 2)
	assert.Equal(t, "lcg", summary.Entries[0].Algorithm)
	assert.InDelta(t, 0.5, summary.Entries[0].MeanMicros, 1e-9)
	assert.Equal(t, "xorshift", summary.Entries[1].Algorithm)
	assert.InDelta(t, 10.0, summary.Entries[1].MeanMicros, 1e-9)
	assert.Equal(t, []Run{{Algorithm: "lcg", Bits: 56}, {Algorithm: "xorshift", Bits: 40}}, summary.Missing)
}

type failingLoader struct{}

func (failingLoader) LoadTiming(context.Context, string, int) (*models.TimingReport, error) {
	return nil, dErrors.New(dErrors.CodeInvalidInput, "parse timing field \"Speed\"")
}

func TestCollectPropagatesParseErrors(t *testing.T) {
	_, err := Collect(context.Background(), failingLoader{}, nil, []string{"lcg"}, []int{40})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Contains(t, err.Error(), fmt.Sprintf("load %s/%d timing", "lcg", 40))
}
