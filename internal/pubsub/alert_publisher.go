package pubsub

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/internal/storage"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AlertField is the stream field holding the JSON-encoded alert
const AlertField = "alert"

var (
	publishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_stream_publish_total",
			Help: "Total number of alerts published to streams",
		},
		[]string{"stream"},
	)

	publishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_stream_publish_errors_total",
			Help: "Total number of alerts that could not be published",
		},
		[]string{"stream"},
	)

	publishLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cruncher_stream_publish_latency_seconds",
			Help:    "Publish latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"stream"},
	)
)

// AlertPublisherConfig holds configuration for the alert publisher
type AlertPublisherConfig struct {
	StreamName    string
	BatchSize     int
	Partitions    int // Number of partitions (0 = no partitioning)
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultAlertPublisherConfig returns default configuration
func DefaultAlertPublisherConfig(streamName string) AlertPublisherConfig {
	return AlertPublisherConfig{
		StreamName:    streamName,
		BatchSize:     100,
		Partitions:    0,
		RetryAttempts: 3,
		RetryDelay:    100 * time.Millisecond,
	}
}

// AlertPublisher writes alerts to Redis streams in pipelined batches with retries
type AlertPublisher struct {
	config AlertPublisherConfig
	client storage.StreamClient
}

// NewAlertPublisher creates a new alert publisher
func NewAlertPublisher(client storage.StreamClient, config AlertPublisherConfig) *AlertPublisher {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	return &AlertPublisher{config: config, client: client}
}

// Publish publishes a single alert
func (p *AlertPublisher) Publish(ctx context.Context, alert *models.Alert) error {
	return p.PublishAlerts(ctx, []*models.Alert{alert})
}

// PublishError reports which alerts of a PublishAlerts call were not
// written. Alerts not listed reached their stream.
type PublishError struct {
	Failed []int // Indexes into the published slice, ascending
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%d alerts not published: %v", len(e.Failed), e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// PublishAlerts publishes alerts in order. With partitioning enabled, all
// alerts of a series go to the same partition stream and a failing
// partition does not stop the others. Any failure is a *PublishError.
func (p *AlertPublisher) PublishAlerts(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	if p.config.Partitions <= 0 {
		index := make([]int, len(alerts))
		for i := range index {
			index[i] = i
		}
		if failed, err := p.publishChunked(ctx, p.config.StreamName, alerts, index); err != nil {
			return &PublishError{Failed: failed, Err: err}
		}
		return nil
	}

	// Preserve per-partition order by grouping in input order
	type group struct {
		alerts []*models.Alert
		index  []int
	}
	order := make([]int, 0, p.config.Partitions)
	partitions := make(map[int]*group)
	for i, alert := range alerts {
		partition := p.Partition(alert.SeriesID)
		g, ok := partitions[partition]
		if !ok {
			g = &group{}
			partitions[partition] = g
			order = append(order, partition)
		}
		g.alerts = append(g.alerts, alert)
		g.index = append(g.index, i)
	}

	var failed []int
	var errs []error
	for _, partition := range order {
		g := partitions[partition]
		if f, err := p.publishChunked(ctx, p.PartitionStreamName(partition), g.alerts, g.index); err != nil {
			failed = append(failed, f...)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	sort.Ints(failed)
	return &PublishError{Failed: failed, Err: errors.Join(errs...)}
}

// publishChunked writes alerts in BatchSize chunks and stops at the first
// failing chunk. It returns the indexes of every alert not written.
func (p *AlertPublisher) publishChunked(ctx context.Context, stream string, alerts []*models.Alert, index []int) ([]int, error) {
	for start := 0; start < len(alerts); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(alerts) {
			end = len(alerts)
		}
		if err := p.publishBatch(ctx, stream, alerts[start:end]); err != nil {
			return index[start:], err
		}
	}
	return nil, nil
}

func (p *AlertPublisher) publishBatch(ctx context.Context, stream string, alerts []*models.Alert) error {
	startTime := time.Now()

	messages := make([]map[string]interface{}, 0, len(alerts))
	for _, alert := range alerts {
		alertJSON, err := json.Marshal(alert)
		if err != nil {
			logger.Error("Failed to marshal alert",
				logger.ErrorField(err),
				logger.String("alert_id", alert.ID),
			)
			continue
		}
		messages = append(messages, map[string]interface{}{
			AlertField: string(alertJSON),
		})
	}

	if len(messages) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		err = p.client.PublishBatchToStream(ctx, stream, messages)
		if err == nil {
			break
		}

		if attempt < p.config.RetryAttempts-1 {
			logger.Warn("Failed to publish alerts, retrying",
				logger.ErrorField(err),
				logger.String("stream", stream),
				logger.Int("attempt", attempt+1),
				logger.Int("count", len(messages)),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay * time.Duration(attempt+1)):
			}
		}
	}

	if err != nil {
		publishErrors.WithLabelValues(stream).Add(float64(len(messages)))
		return fmt.Errorf("failed to publish %d alerts to %s after %d attempts: %w",
			len(messages), stream, p.config.RetryAttempts, err)
	}

	publishTotal.WithLabelValues(stream).Add(float64(len(messages)))
	publishLatency.WithLabelValues(stream).Observe(time.Since(startTime).Seconds())

	logger.Debug("Published alerts to stream",
		logger.String("stream", stream),
		logger.Int("count", len(messages)),
		logger.Duration("latency", time.Since(startTime)),
	)

	return nil
}

// Partition returns the partition for a series using hash-based partitioning
func (p *AlertPublisher) Partition(seriesID string) int {
	if p.config.Partitions <= 0 {
		return 0
	}

	hash := sha256.Sum256([]byte(seriesID))
	hashInt := uint32(hash[0])<<24 | uint32(hash[1])<<16 | uint32(hash[2])<<8 | uint32(hash[3])
	return int(hashInt % uint32(p.config.Partitions))
}

// PartitionStreamName returns the stream name for a given partition
func (p *AlertPublisher) PartitionStreamName(partition int) string {
	if p.config.Partitions <= 0 {
		return p.config.StreamName
	}
	return fmt.Sprintf("%s.p%d", p.config.StreamName, partition)
}
