package alert

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

// FileSink appends one "[time] message" line per alert to a file
type FileSink struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileSink creates a file sink. The file is created on first write.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, now: time.Now}
}

// Path returns the file the sink appends to
func (s *FileSink) Path() string {
	return s.path
}

// Emit appends a single alert line
func (s *FileSink) Emit(ctx context.Context, alert *models.Alert) error {
	return s.EmitBatch(ctx, []*models.Alert{alert})
}

// EmitBatch appends all alerts with a single open of the file
func (s *FileSink) EmitBatch(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open alert file %s: %w", s.path, err)
	}

	stamp := s.now().Format(time.RFC3339)
	for _, alert := range alerts {
		if _, err := fmt.Fprintf(f, "[%s] %s\n", stamp, alert.Message); err != nil {
			f.Close()
			return fmt.Errorf("failed to write alert file %s: %w", s.path, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close alert file %s: %w", s.path, err)
	}
	return nil
}
