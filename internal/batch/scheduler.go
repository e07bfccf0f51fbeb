package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// ErrUnitPanicked is recorded for a series whose computation panicked
var ErrUnitPanicked = errors.New("indicator computation panicked")

// ComputeFunc computes the indicator set for one series of closing prices
type ComputeFunc func(prices []float64) indicator.Set

// OnUnitDone is called after each series finishes. It runs on worker
// goroutines and must be safe for concurrent use.
type OnUnitDone func(result Result)

// Config holds configuration for the scheduler
type Config struct {
	Workers int // Number of worker goroutines (<= 0 = runtime.NumCPU())
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
	}
}

// Result is the outcome for one input series. Results are indexed exactly
// like the input slice passed to Run.
type Result struct {
	Index    int
	ID       string
	Set      indicator.Set
	Err      error
	Duration time.Duration
}

// Stats summarizes the results of one Run
type Stats struct {
	Series    int `json:"series"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Summarize counts succeeded, failed and cancelled results
func Summarize(results []Result) Stats {
	stats := Stats{Series: len(results)}
	for i := range results {
		switch {
		case results[i].Err == nil:
			stats.Succeeded++
		case errors.Is(results[i].Err, context.Canceled), errors.Is(results[i].Err, context.DeadlineExceeded):
			stats.Cancelled++
		default:
			stats.Failed++
		}
	}
	return stats
}

// Scheduler applies the indicator pipeline to many independent series in parallel
type Scheduler struct {
	workers    int
	compute    ComputeFunc
	onUnitDone OnUnitDone
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithCompute replaces the pipeline run for each series (default indicator.Compute)
func WithCompute(fn ComputeFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.compute = fn
		}
	}
}

// WithOnUnitDone registers a per-series completion callback
func WithOnUnitDone(fn OnUnitDone) Option {
	return func(s *Scheduler) {
		s.onUnitDone = fn
	}
}

// NewScheduler creates a new scheduler
func NewScheduler(config Config, opts ...Option) *Scheduler {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	s := &Scheduler{
		workers: workers,
		compute: indicator.Compute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workers returns the configured worker count
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run computes one indicator set per input series and returns results with
// results[t] corresponding to series[t]. Each worker writes only the result
// slots of the series it processes, so no locking is needed.
//
// A failing series gets an all-undefined set and a non-nil Err; other series
// are unaffected. When ctx is cancelled, series that have not started yet are
// marked with ctx.Err(); series already running finish normally.
func (s *Scheduler) Run(ctx context.Context, series []models.PriceSeries) []Result {
	start := time.Now()
	results := make([]Result, len(series))

	if len(series) == 0 {
		return results
	}

	workers := s.workers
	if workers > len(series) {
		workers = len(series)
	}
	batchWorkers.Set(float64(workers))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				results[t] = s.runUnit(t, &series[t])
				if s.onUnitDone != nil {
					s.onUnitDone(results[t])
				}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(series); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	// Series never handed to a worker
	for t := next; t < len(series); t++ {
		results[t] = Result{
			Index: t,
			ID:    series[t].ID,
			Set:   indicator.UndefinedSet(series[t].Len()),
			Err:   ctx.Err(),
		}
		seriesProcessed.WithLabelValues(statusCancelled).Inc()
	}

	elapsed := time.Since(start)
	batchDuration.Observe(elapsed.Seconds())

	stats := Summarize(results)
	logger.WithContext(ctx).Debug("Batch completed",
		logger.Int("series", stats.Series),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("cancelled", stats.Cancelled),
		logger.Int("workers", workers),
		logger.Duration("duration", elapsed),
	)

	return results
}

// runUnit computes one series. It never panics.
func (s *Scheduler) runUnit(t int, ps *models.PriceSeries) (result Result) {
	start := time.Now()
	result = Result{Index: t, ID: ps.ID}

	defer func() {
		if r := recover(); r != nil {
			result.Set = indicator.UndefinedSet(ps.Len())
			result.Err = fmt.Errorf("%w: series %q: %v", ErrUnitPanicked, ps.ID, r)
		}
		result.Duration = time.Since(start)
		seriesComputeSeconds.Observe(result.Duration.Seconds())
		if result.Err != nil {
			seriesProcessed.WithLabelValues(statusFailed).Inc()
			logger.Warn("Series computation failed",
				logger.String("series_id", ps.ID),
				logger.Int("index", t),
				logger.ErrorField(result.Err),
			)
		} else {
			seriesProcessed.WithLabelValues(statusOK).Inc()
		}
	}()

	if err := ps.Validate(); err != nil {
		result.Set = indicator.UndefinedSet(ps.Len())
		result.Err = fmt.Errorf("series %q: %w", ps.ID, err)
		return result
	}

	result.Set = s.compute(ps.Closes)
	return result
}
