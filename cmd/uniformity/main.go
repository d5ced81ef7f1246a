package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"primelab/internal/analysis/uniformity"
	"primelab/internal/platform/config"
	"primelab/internal/platform/logger"
	"primelab/internal/prng/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "uniformity: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run prints one report per (algorithm, bits) file to stdout. Logs go to logs.
func run(ctx context.Context, args []string, stdout, logs io.Writer) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	flags := flag.NewFlagSet("uniformity", flag.ContinueOnError)
	resultsDir := flags.String("dir", cfg.ResultsDir, "directory holding prng_<alg>_<bits>_bits.txt files")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := logger.NewWithWriter(logs, cfg.Log)
	reports, err := uniformity.NewAnalyzer(store.NewFileStore(*resultsDir), log).
		Analyze(ctx, cfg.PRNG.Algorithms, cfg.BitSizes)
	for _, r := range reports {
		fmt.Fprintln(stdout, r)
	}
	return err
}
