package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// Sink delivers alerts somewhere
type Sink interface {
	Emit(ctx context.Context, alert *models.Alert) error
}

// BatchSink is implemented by sinks that can deliver many alerts at once
type BatchSink interface {
	Sink
	EmitBatch(ctx context.Context, alerts []*models.Alert) error
}

// PartialError is returned by EmitBatch when only some alerts failed.
// Failed holds indexes into the emitted slice.
type PartialError struct {
	Failed []int
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d alerts failed: %v", len(e.Failed), e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, alert *models.Alert) error

// Emit calls f(ctx, alert)
func (f SinkFunc) Emit(ctx context.Context, alert *models.Alert) error {
	return f(ctx, alert)
}

// LogSink writes alerts to the structured logger
type LogSink struct{}

// NewLogSink creates a new log sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Emit logs the alert at info level
func (s *LogSink) Emit(ctx context.Context, alert *models.Alert) error {
	logger.WithContext(ctx).Info(BaseMessage(alert.Kind),
		logger.String("alert_id", alert.ID),
		logger.String("series_id", alert.SeriesID),
		logger.Int("index", alert.Index),
		logger.String("kind", string(alert.Kind)),
		logger.String("date", alert.Date),
		logger.Float64("close", alert.Price),
	)
	return nil
}

// MultiSink fans an alert out to several sinks. Every sink is tried; the
// returned error joins all failures.
type MultiSink []Sink

// Emit delivers to every sink
func (m MultiSink) Emit(ctx context.Context, alert *models.Alert) error {
	var errs []error
	for i, sink := range m {
		if err := sink.Emit(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
