package alert

import (
	"errors"
	"testing"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

func TestKindFilter_Empty(t *testing.T) {
	filter := NewKindFilter()
	for _, kind := range models.AllAlertKinds {
		if !filter.Pass(testAlert("a", kind, 1)) {
			t.Errorf("Empty filter should pass %s", kind)
		}
	}

	var none *KindFilter
	if !none.Pass(testAlert("a", models.AlertSMABuy, 1)) {
		t.Error("Nil filter should pass everything")
	}
}

func TestKindFilter_FilterAlerts(t *testing.T) {
	filter := NewKindFilter(models.AlertMACDBuy, models.AlertMACDSell)

	alerts := []*models.Alert{
		testAlert("a1", models.AlertSMABuy, 1),
		testAlert("a2", models.AlertMACDBuy, 2),
		testAlert("a3", models.AlertSMASell, 3),
		testAlert("a4", models.AlertMACDSell, 4),
	}

	filtered := filter.FilterAlerts(alerts)
	if len(filtered) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(filtered))
	}
	if filtered[0].ID != "a2" || filtered[1].ID != "a4" {
		t.Errorf("Unexpected filtered alerts %s, %s", filtered[0].ID, filtered[1].ID)
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"SMA_BUY", "MACD_SELL"})
	if err != nil {
		t.Fatalf("ParseKinds failed: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != models.AlertSMABuy || kinds[1] != models.AlertMACDSell {
		t.Errorf("Unexpected kinds %v", kinds)
	}

	_, err = ParseKinds([]string{"RSI_OVERBOUGHT"})
	if !errors.Is(err, models.ErrInvalidAlertKind) {
		t.Errorf("Expected ErrInvalidAlertKind, got %v", err)
	}
}
