package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primelab/internal/platform/config"
	"primelab/internal/platform/logger"
	platformmetrics "primelab/internal/platform/metrics"
	"primelab/internal/prng/metrics"
	"primelab/internal/prng/service"
	"primelab/internal/prng/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "prnggen: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	resultsDir := flag.String("out", cfg.ResultsDir, "results directory")
	iterations := flag.Int("n", cfg.PRNG.Iterations, "numbers to generate per run")
	flag.Parse()
	cfg.PRNG.Iterations = *iterations
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := platformmetrics.New("prnggen")
	fs := store.NewFileStore(*resultsDir)
	svc, err := service.New(fs,
		service.WithLogger(log),
		service.WithMetrics(metrics.New(batch.Registry)),
		service.WithParallelism(cfg.PRNG.Parallel),
	)
	if err != nil {
		return err
	}

	started := time.Now()
	specs := buildSpecs(cfg, started.Unix())
	_, err = svc.RunAll(ctx, specs)
	if err == nil {
		printSaved(os.Stdout, fs, specs)
	}
	batch.Finish(time.Since(started), err)
	if perr := batch.Push(ctx, cfg.Metrics); perr != nil {
		log.WarnContext(ctx, "failed to push metrics", "error", perr)
	}
	return err
}

// buildSpecs pairs every bit size with every algorithm. Runs of the same
// bit size share a seed: the configured one, or now XOR the size's index.
func buildSpecs(cfg config.Config, now int64) []service.Spec {
	specs := make([]service.Spec, 0, len(cfg.BitSizes)*len(cfg.PRNG.Algorithms))
	for i, bits := range cfg.BitSizes {
		seed := cfg.Seed
		if seed == 0 {
			seed = now ^ int64(i)
		}
		for _, alg := range cfg.PRNG.Algorithms {
			specs = append(specs, service.Spec{
				Algorithm:  alg,
				Bits:       bits,
				Seed:       big.NewInt(seed),
				Iterations: cfg.PRNG.Iterations,
				BatchSize:  cfg.PRNG.BatchSize,
			})
		}
	}
	return specs
}

func printSaved(w io.Writer, fs *store.FileStore, specs []service.Spec) {
	for _, s := range specs {
		fmt.Fprintf(w, "Data saved to %s, time logged to %s\n",
			fs.NumbersPath(s.Algorithm, s.Bits), fs.TimingPath(s.Algorithm, s.Bits))
	}
}
