package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "cruncher",
		Usage: "Compute SMA, RSI and MACD over price series and report crossovers",
		Commands: []*cli.Command{
			runCommand(),
			syntheticCommand(),
			benchCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cruncher: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// sharedFlags are accepted by every subcommand that runs a batch
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Worker goroutines (0 = BATCH_WORKERS, or one per CPU)",
		},
		&cli.StringSliceFlag{
			Name:  "sinks",
			Usage: "Alert sinks: log, file, stream, postgres (default ALERT_SINKS)",
		},
		&cli.StringSliceFlag{
			Name:  "kinds",
			Usage: "Only deliver these alert kinds, e.g. SMA_BUY,MACD_SELL",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar on stderr",
		},
		&cli.BoolFlag{
			Name:  "verify",
			Usage: "Cross-check SMA and MACD against techan",
		},
	}
}

// setup loads configuration and initializes the global logger
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func workersFlag(cmd *cli.Command, cfg *config.Config) int {
	if w := cmd.Int("workers"); w > 0 {
		return w
	}
	return cfg.Batch.Workers
}
