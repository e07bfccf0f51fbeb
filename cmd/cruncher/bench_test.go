package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/batch"
	"github.com/mohamedkhairy/stock-cruncher/internal/data"
	"github.com/mohamedkhairy/stock-cruncher/internal/indicator"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	indicatorpkg "github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBench_Identical(t *testing.T) {
	series := data.Generate(data.GeneratorConfig{Tickers: 8, Points: 500, Seed: 4})

	res, err := bench(context.Background(), series, 4)
	require.NoError(t, err)

	assert.True(t, res.Identical)
	assert.Empty(t, res.Mismatch)
	assert.Equal(t, 8, res.Series)
	assert.Equal(t, 4, res.Workers)
	assert.Positive(t, res.Alerts)
}

func TestBench_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bench(ctx, data.Generate(data.GeneratorConfig{Tickers: 2, Points: 100}), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBenchResult_Speedup(t *testing.T) {
	assert.Equal(t, 2.0, BenchResult{Sequential: 2 * time.Second, Parallel: time.Second}.Speedup())
	assert.Zero(t, BenchResult{Sequential: time.Second}.Speedup())
}

func TestPrintReport(t *testing.T) {
	report := &indicator.RunReport{
		RunID: "run-7",
		Series: []indicator.SeriesReport{
			{ID: "AAPL", Length: 300, Alerts: []*models.Alert{{ID: "a"}}},
			{ID: "BAD", Length: 2, Err: errors.New("malformed price series")},
		},
		Batch: batch.Stats{Series: 2, Succeeded: 1, Failed: 1},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "malformed price series")
	assert.Contains(t, out, "RSI")
	assert.Contains(t, out, "run run-7: 2 series, 1 ok, 1 failed, 0 cancelled; 1 alerts, 0 delivered")
}

func TestFormatLast(t *testing.T) {
	assert.Equal(t, "-", formatLast(indicatorpkg.NewSeries(3).Last()))
	assert.Equal(t, "61.25", formatLast(indicatorpkg.FromValues([]float64{50, 61.25}).Last()))
}

func TestPrintReport_LastValues(t *testing.T) {
	report := &indicator.RunReport{
		RunID: "run-8",
		Series: []indicator.SeriesReport{{
			ID:     "AAPL",
			Length: 2,
			Set: indicatorpkg.Set{
				SMAShort:   indicatorpkg.NewSeries(2),
				SMALong:    indicatorpkg.NewSeries(2),
				RSI:        indicatorpkg.FromValues([]float64{40, 72.5}),
				MACD:       indicatorpkg.FromValues([]float64{0.1, -1.75}),
				MACDSignal: indicatorpkg.NewSeries(2),
			},
		}},
		Batch: batch.Stats{Series: 1, Succeeded: 1},
	}

	var buf bytes.Buffer
	printReport(&buf, report)

	assert.Contains(t, buf.String(), "72.50")
	assert.Contains(t, buf.String(), "-1.75")
}

func TestPrintBench(t *testing.T) {
	var buf bytes.Buffer
	printBench(&buf, BenchResult{Series: 3, Workers: 2, Sequential: 4 * time.Millisecond, Parallel: 2 * time.Millisecond, Identical: true})

	assert.Contains(t, buf.String(), "speedup:     2.00x")
	assert.Contains(t, buf.String(), "identical:   true")
}
