package alert

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/internal/storage"
)

// StoreSink persists alerts through an AlertStorage
type StoreSink struct {
	store storage.AlertStorage
}

// NewStoreSink creates a new store sink
func NewStoreSink(store storage.AlertStorage) *StoreSink {
	return &StoreSink{store: store}
}

// Emit writes a single alert
func (s *StoreSink) Emit(ctx context.Context, alert *models.Alert) error {
	if err := s.store.WriteAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist alert: %w", err)
	}
	return nil
}

// EmitBatch writes all alerts in one batch
func (s *StoreSink) EmitBatch(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := s.store.WriteAlerts(ctx, alerts); err != nil {
		return fmt.Errorf("failed to persist %d alerts: %w", len(alerts), err)
	}
	return nil
}
