package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

// MockAlertStorage is a mock implementation of AlertStorage for testing
type MockAlertStorage struct {
	mu       sync.Mutex
	Alerts   []*models.Alert
	WriteErr error
	GetErr   error
}

func (m *MockAlertStorage) WriteAlert(ctx context.Context, alert *models.Alert) error {
	return m.WriteAlerts(ctx, []*models.Alert{alert})
}

func (m *MockAlertStorage) WriteAlerts(ctx context.Context, alerts []*models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Alerts = append(m.Alerts, alerts...)
	return nil
}

func (m *MockAlertStorage) GetAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var result []*models.Alert
	for _, alert := range m.Alerts {
		if filter.SeriesID != "" && alert.SeriesID != filter.SeriesID {
			continue
		}
		if filter.RunID != "" && alert.RunID != filter.RunID {
			continue
		}
		if filter.Kind != "" && alert.Kind != filter.Kind {
			continue
		}
		if !filter.StartTime.IsZero() && alert.CreatedAt.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && alert.CreatedAt.After(filter.EndTime) {
			continue
		}
		result = append(result, alert)
	}
	// Apply limit and offset
	start := filter.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}
	if filter.Limit > 0 {
		return result[start:end], nil
	}
	return result[start:], nil
}

func (m *MockAlertStorage) GetAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, alert := range m.Alerts {
		if alert.ID == alertID {
			return alert, nil
		}
	}
	return nil, nil
}

func (m *MockAlertStorage) Close() error {
	return nil
}

// MockStreamMessage is a message recorded by MockStreamClient
type MockStreamMessage struct {
	Stream string
	Values map[string]interface{}
}

// MockStreamClient is a mock implementation of StreamClient for testing
type MockStreamClient struct {
	mu         sync.Mutex
	Messages   []MockStreamMessage
	Batches    int
	PublishErr error
	FailTimes  int              // Fail this many calls with PublishErr, then succeed (0 = always fail)
	StreamErrs map[string]error // Publishing to these streams always fails
	calls      int
	Closed     bool
}

func NewMockStreamClient() *MockStreamClient {
	return &MockStreamClient{}
}

func (m *MockStreamClient) PublishToStream(ctx context.Context, stream string, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.PublishBatchToStream(ctx, stream, []map[string]interface{}{{key: string(data)}})
}

func (m *MockStreamClient) PublishBatchToStream(ctx context.Context, stream string, messages []map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.PublishErr != nil && (m.FailTimes == 0 || m.calls <= m.FailTimes) {
		return m.PublishErr
	}
	if err, ok := m.StreamErrs[stream]; ok {
		return err
	}

	m.Batches++
	for _, msg := range messages {
		m.Messages = append(m.Messages, MockStreamMessage{Stream: stream, Values: msg})
	}
	return nil
}

// Calls returns the number of publish calls, including failed ones
func (m *MockStreamClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StreamMessages returns the messages published to one stream
func (m *MockStreamClient) StreamMessages(stream string) []MockStreamMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockStreamMessage
	for _, msg := range m.Messages {
		if msg.Stream == stream {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MockStreamClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
