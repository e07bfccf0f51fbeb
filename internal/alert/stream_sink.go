package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/internal/pubsub"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// StreamSink publishes alerts to a Redis stream
type StreamSink struct {
	publisher      *pubsub.AlertPublisher
	publishTimeout time.Duration
}

// NewStreamSink creates a new stream sink
func NewStreamSink(publisher *pubsub.AlertPublisher, publishTimeout time.Duration) *StreamSink {
	return &StreamSink{
		publisher:      publisher,
		publishTimeout: publishTimeout,
	}
}

// Emit publishes a single alert
func (s *StreamSink) Emit(ctx context.Context, alert *models.Alert) error {
	return s.EmitBatch(ctx, []*models.Alert{alert})
}

// EmitBatch publishes alerts through a pipeline
func (s *StreamSink) EmitBatch(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	if err := s.publisher.PublishAlerts(ctx, alerts); err != nil {
		var perr *pubsub.PublishError
		if errors.As(err, &perr) && len(perr.Failed) < len(alerts) {
			return &PartialError{Failed: perr.Failed, Err: fmt.Errorf("failed to publish alerts to stream: %w", err)}
		}
		return fmt.Errorf("failed to publish alerts to stream: %w", err)
	}

	logger.Debug("Published alerts to stream", logger.Int("count", len(alerts)))
	return nil
}
