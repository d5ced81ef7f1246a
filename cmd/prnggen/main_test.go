package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primelab/internal/platform/config"
	"primelab/internal/prng/service"
	"primelab/internal/prng/store"
)

func TestBuildSpecs(t *testing.T) {
	cfg := config.Config{
		BitSizes: []int{40, 56},
		PRNG:     config.PRNGConfig{Algorithms: []string{"lcg", "xorshift"}, Iterations: 10, BatchSize: 5},
	}

	t.Run("clock derived seeds", func(t *testing.T) {
		specs := buildSpecs(cfg, 1_700_000_000)
		require.Len(t, specs, 4)
		assert.Equal(t, "lcg", specs[0].Algorithm)
		assert.Equal(t, "xorshift", specs[1].Algorithm)
		assert.Equal(t, int64(1_700_000_000), specs[0].Seed.Int64())
		assert.Equal(t, specs[0].Seed, specs[1].Seed)
		assert.Equal(t, int64(1_700_000_000^1), specs[2].Seed.Int64())
		assert.Equal(t, 56, specs[3].Bits)
		assert.Equal(t, 5, specs[3].BatchSize)
	})

	t.Run("configured seed", func(t *testing.T) {
		cfg := cfg
		cfg.Seed = 12345
		for _, s := range buildSpecs(cfg, 1) {
			assert.Equal(t, int64(12345), s.Seed.Int64())
		}
	})
}

func TestPrintSaved(t *testing.T) {
	fs := store.NewFileStore("results")
	var b strings.Builder
	printSaved(&b, fs, []service.Spec{{Algorithm: "lcg", Bits: 40}})
	assert.Equal(t, "Data saved to "+filepath.Join("results", "prng_lcg_40_bits.txt")+
		", time logged to "+filepath.Join("results", "time_lcg_40_bits.txt")+"\n", b.String())
}
