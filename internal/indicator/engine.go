package indicator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohamedkhairy/stock-cruncher/internal/alert"
	"github.com/mohamedkhairy/stock-cruncher/internal/batch"
	"github.com/mohamedkhairy/stock-cruncher/internal/crossover"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/internal/verify"
	indicatorpkg "github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// SeriesReport is everything computed for one input series
type SeriesReport struct {
	ID     string              `json:"id"`
	Length int                 `json:"length"`
	Set    indicatorpkg.Set    `json:"indicators"`
	Events []models.AlertEvent `json:"-"`
	Alerts []*models.Alert     `json:"alerts"`
	Verify *verify.Report      `json:"-"`
	Err    error               `json:"-"`
	Took   time.Duration       `json:"-"`
}

// RunReport summarizes one engine run
type RunReport struct {
	RunID    string
	Series   []SeriesReport
	Batch    batch.Stats
	Dispatch alert.DispatchStats
	Duration time.Duration
}

// Alerts returns every alert of the run in series order
func (r *RunReport) Alerts() []*models.Alert {
	var out []*models.Alert
	for i := range r.Series {
		out = append(out, r.Series[i].Alerts...)
	}
	return out
}

// EngineConfig holds configuration for the engine
type EngineConfig struct {
	Workers int  // Batch worker goroutines (0 = one per CPU)
	Verify  bool // Cross-check every successful series against techan
}

// DefaultEngineConfig returns default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{}
}

// Engine runs the indicator pipeline over a batch, detects crossovers and
// hands the resulting alerts to a dispatcher
type Engine struct {
	config     EngineConfig
	scheduler  *batch.Scheduler
	dispatcher *alert.Dispatcher
}

// NewEngine creates a new engine. A nil dispatcher builds alerts without delivering them.
func NewEngine(config EngineConfig, dispatcher *alert.Dispatcher, opts ...batch.Option) *Engine {
	return &Engine{
		config:     config,
		scheduler:  batch.NewScheduler(batch.Config{Workers: config.Workers}, opts...),
		dispatcher: dispatcher,
	}
}

// Workers returns the effective worker count
func (e *Engine) Workers() int {
	return e.scheduler.Workers()
}

// Run processes the batch. The run ID is taken from ctx when set, otherwise
// a new one is generated.
func (e *Engine) Run(ctx context.Context, series []models.PriceSeries) *RunReport {
	start := time.Now()

	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.New().String()
		ctx = logger.WithRunID(ctx, runID)
	}

	log := logger.WithContext(ctx)
	log.Info("Starting batch",
		logger.Int("series", len(series)),
		logger.Int("workers", e.scheduler.Workers()),
	)

	results := e.scheduler.Run(ctx, series)

	report := &RunReport{
		RunID:  runID,
		Series: make([]SeriesReport, len(results)),
		Batch:  batch.Summarize(results),
	}

	for i, res := range results {
		sr := SeriesReport{
			ID:     res.ID,
			Length: res.Set.Len(),
			Set:    res.Set,
			Err:    res.Err,
			Took:   res.Duration,
		}
		if res.Err == nil {
			sr.Events = crossover.Detect(res.ID, res.Set)
			sr.Alerts = alert.BuildAll(runID, sr.Events, &series[i])
			if e.config.Verify {
				vr := verify.CrossCheck(series[i].Closes, res.Set)
				sr.Verify = &vr
				if !vr.OK(verify.DefaultTolerance) {
					log.Warn("Cross-check deviation",
						logger.String("series_id", res.ID),
						logger.String("report", vr.String()),
					)
				}
			}
		}
		report.Series[i] = sr
	}

	if e.dispatcher != nil {
		report.Dispatch = e.dispatcher.Dispatch(ctx, report.Alerts())
	}

	report.Duration = time.Since(start)
	log.Info("Batch finished",
		logger.Int("succeeded", report.Batch.Succeeded),
		logger.Int("failed", report.Batch.Failed),
		logger.Int("cancelled", report.Batch.Cancelled),
		logger.Int("alerts", len(report.Alerts())),
		logger.Int("delivered", report.Dispatch.Delivered),
		logger.Duration("duration", report.Duration),
	)

	return report
}

// ErrorSummary describes the first failed series, or "" when all succeeded
func (r *RunReport) ErrorSummary() string {
	for _, s := range r.Series {
		if s.Err != nil {
			return fmt.Sprintf("%d of %d series failed; first: %v", r.Batch.Failed+r.Batch.Cancelled, len(r.Series), s.Err)
		}
	}
	return ""
}
