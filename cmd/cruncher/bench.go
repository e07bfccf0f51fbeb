package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/batch"
	"github.com/mohamedkhairy/stock-cruncher/internal/crossover"
	"github.com/mohamedkhairy/stock-cruncher/internal/data"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/urfave/cli/v3"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Time a 1-worker run against an N-worker run and compare results",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Parallel worker count (0 = one per CPU)",
			},
			&cli.IntFlag{
				Name:  "tickers",
				Usage: "Number of tickers (default SYNTHETIC_TICKERS)",
			},
			&cli.IntFlag{
				Name:  "points",
				Usage: "Closes per ticker (default SYNTHETIC_POINTS)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Generator seed (default SYNTHETIC_SEED)",
			},
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Benchmark series from a YAML manifest instead of generated ones",
			},
		},
		Action: benchAction,
	}
}

// BenchResult compares a sequential and a parallel run over the same batch
type BenchResult struct {
	Series     int
	Workers    int
	Sequential time.Duration
	Parallel   time.Duration
	Identical  bool
	Mismatch   string // First differing series ID, if any
	Alerts     int
}

// Speedup returns Sequential / Parallel
func (b BenchResult) Speedup() float64 {
	if b.Parallel <= 0 {
		return 0
	}
	return float64(b.Sequential) / float64(b.Parallel)
}

func benchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	var series []models.PriceSeries
	if path := cmd.String("manifest"); path != "" {
		series, err = data.LoadManifest(path)
		if err != nil {
			return err
		}
	} else {
		series = data.Generate(generatorConfig(cmd, cfg))
	}

	workers := workersFlag(cmd, cfg)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result, err := bench(ctx, series, workers)
	if err != nil {
		return err
	}
	printBench(os.Stdout, result)

	if !result.Identical {
		return fmt.Errorf("parallel results differ from sequential at series %s", result.Mismatch)
	}
	return nil
}

func bench(ctx context.Context, series []models.PriceSeries, workers int) (BenchResult, error) {
	res := BenchResult{Series: len(series), Workers: workers, Identical: true}

	logger.Info("Benchmark: sequential run", logger.Int("series", len(series)))
	start := time.Now()
	seq := batch.NewScheduler(batch.Config{Workers: 1}).Run(ctx, series)
	res.Sequential = time.Since(start)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	logger.Info("Benchmark: parallel run", logger.Int("workers", workers))
	start = time.Now()
	par := batch.NewScheduler(batch.Config{Workers: workers}).Run(ctx, series)
	res.Parallel = time.Since(start)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for i := range seq {
		a, b := seq[i], par[i]
		sameErr := (a.Err == nil) == (b.Err == nil)
		if !sameErr || !a.Set.Equal(b.Set) {
			res.Identical = false
			res.Mismatch = a.ID
			break
		}
		if a.Err == nil {
			res.Alerts += len(crossover.Detect(a.ID, a.Set))
		}
	}
	return res, nil
}

func printBench(w io.Writer, res BenchResult) {
	fmt.Fprintf(w, "series:      %d\n", res.Series)
	fmt.Fprintf(w, "sequential:  %s\n", res.Sequential.Round(time.Millisecond))
	fmt.Fprintf(w, "parallel:    %s (%d workers)\n", res.Parallel.Round(time.Millisecond), res.Workers)
	fmt.Fprintf(w, "speedup:     %.2fx\n", res.Speedup())
	fmt.Fprintf(w, "crossovers:  %d\n", res.Alerts)
	fmt.Fprintf(w, "identical:   %t\n", res.Identical)
}
