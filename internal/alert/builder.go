package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

var baseMessages = map[models.AlertKind]string{
	models.AlertSMABuy:   "SMA Crossover BUY signal detected.",
	models.AlertSMASell:  "SMA Crossover SELL signal detected.",
	models.AlertMACDBuy:  "MACD BUY signal detected.",
	models.AlertMACDSell: "MACD SELL signal detected.",
}

// BaseMessage returns the fixed headline for an alert kind
func BaseMessage(kind models.AlertKind) string {
	if msg, ok := baseMessages[kind]; ok {
		return msg
	}
	return fmt.Sprintf("%s signal detected.", kind)
}

// Build turns a detected crossover into a deliverable alert. The series
// supplies the date and close at the event index.
func Build(runID string, event models.AlertEvent, series *models.PriceSeries) *models.Alert {
	a := &models.Alert{
		ID:        uuid.New().String(),
		RunID:     runID,
		SeriesID:  event.SeriesID,
		Index:     event.Index,
		Kind:      event.Kind,
		CreatedAt: time.Now().UTC(),
	}
	if series != nil {
		a.Date = series.DateAt(event.Index)
		if event.Index >= 0 && event.Index < series.Len() {
			a.Price = series.Closes[event.Index]
		}
	}
	a.Message = FormatMessage(a)
	return a
}

// BuildAll builds alerts for every event of one series, preserving order
func BuildAll(runID string, events []models.AlertEvent, series *models.PriceSeries) []*models.Alert {
	alerts := make([]*models.Alert, 0, len(events))
	for _, e := range events {
		alerts = append(alerts, Build(runID, e, series))
	}
	return alerts
}

// FormatMessage renders e.g. "SMA Crossover BUY signal detected. series=AAPL index=57 date=2024-03-01 close=182.3100"
func FormatMessage(a *models.Alert) string {
	msg := fmt.Sprintf("%s series=%s index=%d", BaseMessage(a.Kind), a.SeriesID, a.Index)
	if a.Date != "" {
		msg += " date=" + a.Date
	}
	return msg + fmt.Sprintf(" close=%.4f", a.Price)
}
