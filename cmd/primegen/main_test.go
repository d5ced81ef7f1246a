package main

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primelab/internal/platform/config"
	"primelab/internal/prime/generator"
	"primelab/internal/prime/metrics"
	"primelab/internal/prime/models"
	"primelab/internal/prime/primality"
)

func TestBuildJobs(t *testing.T) {
	rnd := rand.NewChaCha8([32]byte{1})

	t.Run("one job per algorithm", func(t *testing.T) {
		jobs, err := buildJobs(config.PrimeConfig{Algorithms: []string{"fermat", "miller_rabin"}}, rnd)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, models.AlgorithmFermat, jobs[0].Algorithm)
		assert.Equal(t, models.AlgorithmMillerRabin, jobs[1].Algorithm)

		res, err := jobs[1].Generator.Generate(context.Background(), 64)
		require.NoError(t, err)
		assert.Equal(t, 64, res.Value.BitLen())
		assert.True(t, res.Value.ProbablyPrime(20))
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := buildJobs(config.PrimeConfig{Algorithms: []string{"aks"}}, rnd)
		assert.Error(t, err)
	})

	t.Run("custom rounds reach the tester", func(t *testing.T) {
		jobs, err := buildJobs(config.PrimeConfig{Algorithms: []string{"miller_rabin"}, Rounds: 8, MaxAttempts: 10}, rnd)
		require.NoError(t, err)
		gen, ok := jobs[0].Generator.(*generator.Generator)
		require.True(t, ok)
		mr, ok := gen.Tester().(*primality.MillerRabin)
		require.True(t, ok)
		assert.Equal(t, 8, mr.Rounds())
		assert.Equal(t, 10, gen.MaxAttempts(512))
	})
}

func TestPrintRecord(t *testing.T) {
	var b strings.Builder
	rec, err := models.NewRecord(uuid.New(), big.NewInt(251), 8, models.AlgorithmMillerRabin,
		3, 1500*time.Microsecond, 100*time.Microsecond, time.Now())
	require.NoError(t, err)

	printRecord(&b)(rec)
	assert.Equal(t, "Prime found: 251 (8 bits, miller_rabin, 0.0015000000000000 sec)\n", b.String())
}

func TestGenerateWritesFileLayout(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		BitSizes: []int{32, 48},
		Seed:     99,
		Prime: config.PrimeConfig{
			Algorithms: []string{"fermat", "miller_rabin"},
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := generate(context.Background(), cfg, dir, sourceChaCha8, log, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)

	for _, name := range []string{"primes_fermat_32_bits.txt", "stats_miller_rabin_48_bits.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
