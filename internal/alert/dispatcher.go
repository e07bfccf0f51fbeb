package alert

import (
	"context"
	"errors"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_alerts_emitted_total",
			Help: "Total number of alerts delivered to at least one sink",
		},
		[]string{"kind"},
	)

	sinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_alert_sink_errors_total",
			Help: "Total number of failed sink deliveries",
		},
		[]string{"sink"},
	)
)

// DispatchStats summarizes one Dispatch call
type DispatchStats struct {
	Received   int
	Filtered   int
	Duplicates int
	Delivered  int // Alerts accepted by at least one sink
	SinkErrors int
	Duration   time.Duration
}

type namedSink struct {
	name string
	sink Sink
}

// Dispatcher delivers alerts to every registered sink. A failing sink is
// logged and counted; delivery to other sinks and of later alerts continues.
type Dispatcher struct {
	sinks  []namedSink
	filter *KindFilter
	dedupe *Deduplicator
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithKindFilter restricts delivery to the filter's alert kinds
func WithKindFilter(f *KindFilter) DispatcherOption {
	return func(d *Dispatcher) {
		d.filter = f
	}
}

// WithDeduplicator drops alerts whose idempotency key was already delivered
func WithDeduplicator(dd *Deduplicator) DispatcherOption {
	return func(d *Dispatcher) {
		d.dedupe = dd
	}
}

// NewDispatcher creates a dispatcher with no sinks
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddSink registers a sink under a name used in logs and metrics
func (d *Dispatcher) AddSink(name string, sink Sink) {
	d.sinks = append(d.sinks, namedSink{name: name, sink: sink})
}

// SinkNames returns registered sink names in delivery order
func (d *Dispatcher) SinkNames() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.name
	}
	return names
}

// Dispatch delivers alerts in order. Sinks implementing BatchSink receive
// the whole batch in one call.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []*models.Alert) DispatchStats {
	start := time.Now()
	stats := DispatchStats{Received: len(alerts)}

	pending := make([]*models.Alert, 0, len(alerts))
	keys := make(map[string]struct{}, len(alerts))
	for _, a := range alerts {
		if !d.filter.Pass(a) {
			stats.Filtered++
			continue
		}
		if d.dedupe != nil {
			key := GenerateIdempotencyKey(a)
			if _, dup := keys[key]; dup || d.dedupe.Seen(a) {
				stats.Duplicates++
				continue
			}
			keys[key] = struct{}{}
		}
		pending = append(pending, a)
	}

	if len(pending) == 0 || len(d.sinks) == 0 {
		stats.Duration = time.Since(start)
		return stats
	}

	delivered := make([]bool, len(pending))
	for _, s := range d.sinks {
		if batch, ok := s.sink.(BatchSink); ok {
			err := batch.EmitBatch(ctx, pending)
			if err == nil {
				for i := range delivered {
					delivered[i] = true
				}
				continue
			}
			stats.SinkErrors++
			var partial *PartialError
			if !errors.As(err, &partial) {
				d.recordFailure(ctx, s.name, err, len(pending))
				continue
			}
			d.recordFailure(ctx, s.name, err, len(partial.Failed))
			failed := make(map[int]struct{}, len(partial.Failed))
			for _, i := range partial.Failed {
				failed[i] = struct{}{}
			}
			for i := range delivered {
				if _, ok := failed[i]; !ok {
					delivered[i] = true
				}
			}
			continue
		}

		for i, a := range pending {
			if err := s.sink.Emit(ctx, a); err != nil {
				d.recordFailure(ctx, s.name, err, 1)
				stats.SinkErrors++
				continue
			}
			delivered[i] = true
		}
	}

	// Only delivered alerts are remembered, so a failed batch can be retried
	for i, ok := range delivered {
		if ok {
			stats.Delivered++
			alertsEmitted.WithLabelValues(string(pending[i].Kind)).Inc()
			if d.dedupe != nil {
				d.dedupe.Mark(pending[i])
			}
		}
	}

	stats.Duration = time.Since(start)
	logger.WithContext(ctx).Debug("Dispatched alerts",
		logger.Int("received", stats.Received),
		logger.Int("delivered", stats.Delivered),
		logger.Int("sink_errors", stats.SinkErrors),
		logger.Duration("duration", stats.Duration),
	)
	return stats
}

func (d *Dispatcher) recordFailure(ctx context.Context, sink string, err error, count int) {
	sinkErrors.WithLabelValues(sink).Inc()
	logger.WithContext(ctx).Error("Alert sink failed",
		logger.String("sink", sink),
		logger.Int("count", count),
		logger.ErrorField(err),
	)
}
