package crossover

import (
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
)

// Detect scans an indicator set for SMA and MACD crossovers. Events are
// ordered by index; at the same index SMA events come before MACD events.
func Detect(seriesID string, set indicator.Set) []models.AlertEvent {
	sma := DetectSMA(seriesID, set.SMAShort, set.SMALong)
	macd := DetectMACD(seriesID, set.MACD, set.MACDSignal)
	if len(macd) == 0 {
		return sma
	}
	if len(sma) == 0 {
		return macd
	}

	events := make([]models.AlertEvent, 0, len(sma)+len(macd))
	i, j := 0, 0
	for i < len(sma) && j < len(macd) {
		if sma[i].Index <= macd[j].Index {
			events = append(events, sma[i])
			i++
		} else {
			events = append(events, macd[j])
			j++
		}
	}
	events = append(events, sma[i:]...)
	events = append(events, macd[j:]...)
	return events
}

// DetectSMA reports SMA_BUY when the short average moves from at-or-below to
// strictly above the long average, and SMA_SELL when it moves from strictly
// above to strictly below.
func DetectSMA(seriesID string, short, long indicator.Series) []models.AlertEvent {
	return scan(seriesID, short, long, func(prevA, prevB, curA, curB float64) (models.AlertKind, bool) {
		switch {
		case prevA <= prevB && curA > curB:
			return models.AlertSMABuy, true
		case prevA > prevB && curA < curB:
			return models.AlertSMASell, true
		}
		return "", false
	})
}

// DetectMACD reports MACD_BUY when MACD moves from strictly below to strictly
// above its signal line, and MACD_SELL for the reverse. Touching the signal
// line is not a cross.
func DetectMACD(seriesID string, macd, signal indicator.Series) []models.AlertEvent {
	return scan(seriesID, macd, signal, func(prevA, prevB, curA, curB float64) (models.AlertKind, bool) {
		switch {
		case prevA < prevB && curA > curB:
			return models.AlertMACDBuy, true
		case prevA > prevB && curA < curB:
			return models.AlertMACDSell, true
		}
		return "", false
	})
}

type rule func(prevA, prevB, curA, curB float64) (models.AlertKind, bool)

func scan(seriesID string, a, b indicator.Series, match rule) []models.AlertEvent {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}

	var events []models.AlertEvent
	for i := 1; i < n; i++ {
		prevA, ok1 := a.Value(i - 1)
		prevB, ok2 := b.Value(i - 1)
		curA, ok3 := a.Value(i)
		curB, ok4 := b.Value(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		if kind, ok := match(prevA, prevB, curA, curB); ok {
			events = append(events, models.AlertEvent{SeriesID: seriesID, Index: i, Kind: kind})
		}
	}
	return events
}
