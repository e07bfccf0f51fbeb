package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

// AlertStorage defines the interface for alert storage operations
type AlertStorage interface {
	// WriteAlert writes an alert to storage
	WriteAlert(ctx context.Context, alert *models.Alert) error

	// WriteAlerts writes multiple alerts to storage (batch operation)
	WriteAlerts(ctx context.Context, alerts []*models.Alert) error

	// GetAlerts retrieves alerts with filtering options
	GetAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)

	// GetAlert retrieves a single alert by ID
	GetAlert(ctx context.Context, alertID string) (*models.Alert, error)

	// Close closes the storage connection
	Close() error
}

// AlertFilter defines filtering options for alert queries
type AlertFilter struct {
	SeriesID  string
	RunID     string
	Kind      models.AlertKind
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// StreamClient defines the stream operations used to publish alerts
type StreamClient interface {
	PublishToStream(ctx context.Context, stream string, key string, value interface{}) error
	PublishBatchToStream(ctx context.Context, stream string, messages []map[string]interface{}) error
	Close() error
}
