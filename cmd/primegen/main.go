package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primelab/internal/platform/config"
	"primelab/internal/platform/logger"
	platformmetrics "primelab/internal/platform/metrics"
	"primelab/internal/prime/generator"
	"primelab/internal/prime/metrics"
	"primelab/internal/prime/models"
	"primelab/internal/prime/primality"
	"primelab/internal/prime/service"
)

// main wires configuration, sinks and generators, then runs one batch of
// prime searches. Search logic lives in internal/prime.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "primegen: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	bitSizes := flag.String("bits", "", "comma separated bit sizes, overrides PRIMELAB_BIT_SIZES")
	resultsDir := flag.String("out", cfg.Prime.ResultsDir, "results directory")
	source := flag.String("source", cfg.Prime.Source, "random source: chacha8, crypto or lcg")
	flag.Parse()
	if *bitSizes != "" {
		if cfg.BitSizes, err = config.ParseIntList(*bitSizes); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := logger.New(cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := platformmetrics.New("primegen")
	started := time.Now()
	err = generate(ctx, cfg, *resultsDir, *source, log, metrics.New(batch.Registry))
	batch.Finish(time.Since(started), err)
	if perr := batch.Push(ctx, cfg.Metrics); perr != nil {
		log.WarnContext(ctx, "failed to push metrics", "error", perr)
	}
	return err
}

func generate(ctx context.Context, cfg config.Config, resultsDir, sourceName string, log *slog.Logger, m *metrics.Metrics) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().Unix()
	}
	rnd, err := newSource(sourceName, seed)
	if err != nil {
		return err
	}
	jobs, err := buildJobs(cfg.Prime, rnd)
	if err != nil {
		return err
	}

	out, err := openSinks(ctx, cfg, resultsDir, log, m)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.WarnContext(ctx, "failed to close sinks", "error", cerr)
		}
	}()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithReporter(printRecord(os.Stdout)),
	}
	if out.publisher != nil {
		opts = append(opts, service.WithEventPublisher(out.publisher))
	}
	svc, err := service.New(out.store, opts...)
	if err != nil {
		return err
	}

	records, err := svc.RunBatch(ctx, jobs, cfg.BitSizes)
	log.InfoContext(ctx, "prime batch finished", "records", len(records), "source", sourceName, "seed", seed)
	return err
}

// buildJobs creates one generator per configured algorithm, all drawing from rnd.
func buildJobs(cfg config.PrimeConfig, rnd io.Reader) ([]service.Job, error) {
	var genOpts []generator.Option
	if cfg.MaxAttempts > 0 {
		genOpts = append(genOpts, generator.WithMaxAttempts(cfg.MaxAttempts))
	}

	jobs := make([]service.Job, 0, len(cfg.Algorithms))
	for _, name := range cfg.Algorithms {
		alg, err := models.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		tester, err := primality.New(alg.String(), rnd, cfg.Rounds)
		if err != nil {
			return nil, err
		}
		gen, err := generator.New(rnd, tester, genOpts...)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, service.Job{Algorithm: alg, Generator: gen})
	}
	return jobs, nil
}

func printRecord(w io.Writer) func(*models.Record) {
	return func(rec *models.Record) {
		fmt.Fprintf(w, "Prime found: %s (%d bits, %s, %.16f sec)\n",
			rec.Value, rec.Bits, rec.Algorithm, rec.Elapsed.Seconds())
	}
}
