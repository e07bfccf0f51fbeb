package alert

import (
	"fmt"
	"sync"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// Deduplicator remembers the idempotency keys of delivered alerts. With a
// positive capacity the oldest keys are forgotten first.
type Deduplicator struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string // Insertion order, used as a ring when capacity > 0
	next     int
	capacity int
}

// NewDeduplicator creates a deduplicator holding at most capacity keys
// (0 = unbounded)
func NewDeduplicator(capacity int) *Deduplicator {
	if capacity < 0 {
		capacity = 0
	}
	return &Deduplicator{
		seen:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// GenerateIdempotencyKey generates an idempotency key for an alert
// Format: {run_id}:{series_id}:{index}:{kind}
func GenerateIdempotencyKey(alert *models.Alert) string {
	return fmt.Sprintf("%s:%s:%d:%s", alert.RunID, alert.SeriesID, alert.Index, alert.Kind)
}

// Seen reports whether the alert's key was marked before
func (d *Deduplicator) Seen(alert *models.Alert) bool {
	key := GenerateIdempotencyKey(alert)

	d.mu.Lock()
	_, ok := d.seen[key]
	d.mu.Unlock()

	if ok {
		logger.Debug("Duplicate alert detected",
			logger.String("alert_id", alert.ID),
			logger.String("series_id", alert.SeriesID),
			logger.String("idempotency_key", key),
		)
	}
	return ok
}

// Mark records the alert's key as delivered
func (d *Deduplicator) Mark(alert *models.Alert) {
	key := GenerateIdempotencyKey(alert)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}

	if d.capacity == 0 {
		return
	}
	if len(d.order) < d.capacity {
		d.order = append(d.order, key)
		return
	}
	delete(d.seen, d.order[d.next])
	d.order[d.next] = key
	d.next = (d.next + 1) % d.capacity
}

// Len returns the number of remembered keys
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Reset forgets every key
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{})
	d.order = nil
	d.next = 0
}
