package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"primelab/internal/analysis/meantime"
	"primelab/internal/platform/config"
	"primelab/internal/platform/logger"
	"primelab/internal/prng/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "meantime: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, logs io.Writer) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	flags := flag.NewFlagSet("meantime", flag.ContinueOnError)
	resultsDir := flags.String("dir", cfg.ResultsDir, "directory holding time_<alg>_<bits>_bits.txt reports")
	if err := flags.Parse(args); err != nil {
		return err
	}

	fs := store.NewFileStore(*resultsDir)
	summary, err := meantime.Collect(ctx, fs, logger.NewWithWriter(logs, cfg.Log), cfg.PRNG.Algorithms, cfg.BitSizes)
	if err != nil {
		return err
	}
	for _, m := range summary.Missing {
		fmt.Fprintf(stdout, "File %s not found.\n", fs.TimingPath(m.Algorithm, m.Bits))
	}
	for _, e := range summary.Entries {
		fmt.Fprintln(stdout, e)
	}
	return nil
}
