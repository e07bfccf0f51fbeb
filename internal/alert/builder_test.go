package alert

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

func TestBuild(t *testing.T) {
	series := &models.PriceSeries{
		ID:     "AAPL",
		Dates:  []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Closes: []float64{180, 181.5, 183.25},
	}
	event := models.AlertEvent{SeriesID: "AAPL", Index: 2, Kind: models.AlertSMABuy}

	a := Build("run-1", event, series)

	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("Expected UUID alert ID, got %q: %v", a.ID, err)
	}
	if a.RunID != "run-1" || a.SeriesID != "AAPL" || a.Index != 2 || a.Kind != models.AlertSMABuy {
		t.Errorf("Unexpected alert fields: %+v", a)
	}
	if a.Date != "2024-01-03" {
		t.Errorf("Expected date 2024-01-03, got %q", a.Date)
	}
	if a.Price != 183.25 {
		t.Errorf("Expected price 183.25, got %f", a.Price)
	}
	if a.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	want := "SMA Crossover BUY signal detected. series=AAPL index=2 date=2024-01-03 close=183.2500"
	if a.Message != want {
		t.Errorf("Expected message %q, got %q", want, a.Message)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Built alert should validate: %v", err)
	}
}

func TestBuild_WithoutDates(t *testing.T) {
	series := &models.PriceSeries{ID: "T001", Closes: []float64{1, 2}}
	a := Build("", models.AlertEvent{SeriesID: "T001", Index: 1, Kind: models.AlertMACDSell}, series)

	if a.Date != "" {
		t.Errorf("Expected empty date, got %q", a.Date)
	}
	if strings.Contains(a.Message, "date=") {
		t.Errorf("Message should omit date: %q", a.Message)
	}
	if !strings.HasPrefix(a.Message, "MACD SELL signal detected.") {
		t.Errorf("Unexpected message %q", a.Message)
	}
}

func TestBuildAll_UniqueIDs(t *testing.T) {
	series := &models.PriceSeries{ID: "X", Closes: []float64{1, 2, 3, 4}}
	events := []models.AlertEvent{
		{SeriesID: "X", Index: 1, Kind: models.AlertSMABuy},
		{SeriesID: "X", Index: 1, Kind: models.AlertMACDBuy},
		{SeriesID: "X", Index: 3, Kind: models.AlertSMASell},
	}

	alerts := BuildAll("r", events, series)
	if len(alerts) != 3 {
		t.Fatalf("Expected 3 alerts, got %d", len(alerts))
	}
	seen := make(map[string]bool)
	for i, a := range alerts {
		if a.Event() != events[i] {
			t.Errorf("Alert %d out of order: %+v", i, a.Event())
		}
		if seen[a.ID] {
			t.Errorf("Duplicate alert ID %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestBaseMessage(t *testing.T) {
	tests := map[models.AlertKind]string{
		models.AlertSMABuy:   "SMA Crossover BUY signal detected.",
		models.AlertSMASell:  "SMA Crossover SELL signal detected.",
		models.AlertMACDBuy:  "MACD BUY signal detected.",
		models.AlertMACDSell: "MACD SELL signal detected.",
	}
	for kind, want := range tests {
		if got := BaseMessage(kind); got != want {
			t.Errorf("BaseMessage(%s) = %q, want %q", kind, got, want)
		}
	}
}
