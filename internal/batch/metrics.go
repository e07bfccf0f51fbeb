package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK        = "ok"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

var (
	seriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_series_processed_total",
			Help: "Total number of price series processed by the batch scheduler",
		},
		[]string{"status"},
	)

	seriesComputeSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cruncher_series_compute_seconds",
			Help:    "Time to compute the indicator set for one series",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cruncher_batch_duration_seconds",
			Help:    "Wall-clock time of one batch run",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	batchWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cruncher_batch_workers",
			Help: "Number of worker goroutines used by the most recent batch",
		},
	)
)
