package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/alert"
	"github.com/mohamedkhairy/stock-cruncher/internal/batch"
	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/internal/data"
	"github.com/mohamedkhairy/stock-cruncher/internal/indicator"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Process series loaded from a CSV file or a YAML manifest",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "CSV file with a date,close header",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Series ID for --input (default: file name)",
			},
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "YAML manifest listing CSV files",
			},
		}, sharedFlags()...),
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	input, manifest := cmd.String("input"), cmd.String("manifest")
	if (input == "") == (manifest == "") {
		return errors.New("exactly one of --input or --manifest is required")
	}

	cfg, err := setup()
	if err != nil {
		return err
	}

	var series []models.PriceSeries
	if input != "" {
		s, stats, err := data.LoadCSVFile(input, cmd.String("id"))
		if err != nil {
			return err
		}
		logger.Info("Loaded series",
			logger.String("series_id", s.ID),
			logger.Int("rows", stats.Loaded),
			logger.Int("skipped", stats.Skipped),
		)
		series = []models.PriceSeries{*s}
	} else {
		series, err = data.LoadManifest(manifest)
		if err != nil {
			return err
		}
	}

	return runBatch(ctx, cmd, cfg, series)
}

func syntheticCommand() *cli.Command {
	return &cli.Command{
		Name:  "synthetic",
		Usage: "Process generated random-walk tickers",
		Flags: append([]cli.Flag{
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
		}, sharedFlags()...),
		Action: syntheticAction,
	}
}

func syntheticAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	gen := generatorConfig(cmd, cfg)
	logger.Info("Generating synthetic series",
		logger.Int("tickers", gen.Tickers),
		logger.Int("points", gen.Points),
		logger.Int64("seed", gen.Seed),
	)

	return runBatch(ctx, cmd, cfg, data.Generate(gen))
}

func generatorConfig(cmd *cli.Command, cfg *config.Config) data.GeneratorConfig {
	gen := data.GeneratorConfig{
		Tickers: cfg.Synthetic.Tickers,
		Points:  cfg.Synthetic.Points,
		Seed:    cfg.Synthetic.Seed,
	}
	if cmd.IsSet("tickers") {
		gen.Tickers = cmd.Int("tickers")
	}
	if cmd.IsSet("points") {
		gen.Points = cmd.Int("points")
	}
	if cmd.IsSet("seed") {
		gen.Seed = cmd.Int64("seed")
	}
	return gen
}

func dispatcherOptions(cmd *cli.Command) ([]alert.DispatcherOption, error) {
	var opts []alert.DispatcherOption
	if names := cmd.StringSlice("kinds"); len(names) > 0 {
		kinds, err := alert.ParseKinds(names)
		if err != nil {
			return nil, err
		}
		opts = append(opts, alert.WithKindFilter(alert.NewKindFilter(kinds...)))
	}
	return opts, nil
}

// runBatch runs the engine over series, delivers alerts to the selected
// sinks and prints a summary to stdout
func runBatch(ctx context.Context, cmd *cli.Command, cfg *config.Config, series []models.PriceSeries) error {
	if len(series) == 0 {
		return errors.New("no series to process")
	}

	sinks := cmd.StringSlice("sinks")
	if len(sinks) == 0 {
		sinks = cfg.Alert.Sinks
	}
	opts, err := dispatcherOptions(cmd)
	if err != nil {
		return err
	}
	delivery, err := alert.NewDelivery(cfg, sinks, opts...)
	if err != nil {
		return err
	}
	defer delivery.Close()

	var batchOpts []batch.Option
	var bar *progressbar.ProgressBar
	if cmd.Bool("progress") {
		bar = progressbar.NewOptions(len(series),
			progressbar.OptionSetDescription("computing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		batchOpts = append(batchOpts, batch.WithOnUnitDone(func(batch.Result) {
			bar.Add(1)
		}))
	}

	engine := indicator.NewEngine(indicator.EngineConfig{
		Workers: workersFlag(cmd, cfg),
		Verify:  cmd.Bool("verify"),
	}, delivery.Dispatcher, batchOpts...)

	report := engine.Run(ctx, series)
	if bar != nil {
		bar.Finish()
	}

	printReport(os.Stdout, report)

	if report.Batch.Cancelled > 0 {
		return fmt.Errorf("run interrupted: %d series not processed", report.Batch.Cancelled)
	}
	return nil
}

// formatLast renders a final indicator value, "-" while undefined
func formatLast(v optional.Option[float64]) string {
	if v.IsNone() {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Unwrap())
}

func printReport(w io.Writer, report *indicator.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIES\tLENGTH\tRSI\tMACD\tALERTS\tVERIFY\tERROR")
	for _, s := range report.Series {
		check := "-"
		if s.Verify != nil {
			check = s.Verify.String()
		}
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Length, formatLast(s.Set.RSI.Last()), formatLast(s.Set.MACD.Last()), len(s.Alerts), check, errText)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nrun %s: %d series, %d ok, %d failed, %d cancelled; %d alerts, %d delivered; %s\n",
		report.RunID,
		report.Batch.Series,
		report.Batch.Succeeded,
		report.Batch.Failed,
		report.Batch.Cancelled,
		len(report.Alerts()),
		report.Dispatch.Delivered,
		report.Duration.Round(time.Millisecond),
	)
}
