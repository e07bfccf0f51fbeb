package models

import (
	"fmt"
	"math"
	"time"
)

// PriceSeries is one instrument's ordered closing prices
type PriceSeries struct {
	ID     string    `json:"id"`
	Dates  []string  `json:"dates,omitempty"` // Passed through for reporting only
	Closes []float64 `json:"closes"`
}

// Len returns the number of closing prices
func (p *PriceSeries) Len() int {
	return len(p.Closes)
}

// DateAt returns the date label for index i, or "" if none was loaded
func (p *PriceSeries) DateAt(i int) string {
	if i < 0 || i >= len(p.Dates) {
		return ""
	}
	return p.Dates[i]
}

// Validate validates a PriceSeries
func (p *PriceSeries) Validate() error {
	if len(p.Dates) > 0 && len(p.Dates) != len(p.Closes) {
		return fmt.Errorf("%w: %d dates for %d closes", ErrMalformedSeries, len(p.Dates), len(p.Closes))
	}
	for i, c := range p.Closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite close at index %d", ErrMalformedSeries, i)
		}
	}
	return nil
}

// AlertKind identifies which crossover produced an alert
type AlertKind string

const (
	AlertSMABuy   AlertKind = "SMA_BUY"
	AlertSMASell  AlertKind = "SMA_SELL"
	AlertMACDBuy  AlertKind = "MACD_BUY"
	AlertMACDSell AlertKind = "MACD_SELL"
)

// AllAlertKinds lists every alert kind in emission order
var AllAlertKinds = []AlertKind{AlertSMABuy, AlertSMASell, AlertMACDBuy, AlertMACDSell}

// Validate validates an AlertKind
func (k AlertKind) Validate() error {
	for _, known := range AllAlertKinds {
		if k == known {
			return nil
		}
	}
	return ErrInvalidAlertKind
}

// AlertEvent is a crossover detected at one index of one series
type AlertEvent struct {
	SeriesID string    `json:"series_id"`
	Index    int       `json:"index"`
	Kind     AlertKind `json:"kind"`
}

// Alert is an AlertEvent enriched for delivery to a sink
type Alert struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	SeriesID  string    `json:"series_id"`
	Index     int       `json:"index"`
	Kind      AlertKind `json:"kind"`
	Date      string    `json:"date,omitempty"`
	Price     float64   `json:"price"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Event returns the AlertEvent the alert was built from
func (a *Alert) Event() AlertEvent {
	return AlertEvent{SeriesID: a.SeriesID, Index: a.Index, Kind: a.Kind}
}

// Validate validates an Alert
func (a *Alert) Validate() error {
	if a.ID == "" {
		return ErrInvalidAlertID
	}
	if a.SeriesID == "" {
		return ErrInvalidSeriesID
	}
	if a.Index < 0 {
		return ErrInvalidIndex
	}
	return a.Kind.Validate()
}
