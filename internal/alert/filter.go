package alert

import (
	"fmt"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

// KindFilter passes only alerts of the enabled kinds.
// An empty filter passes everything.
type KindFilter struct {
	kinds map[models.AlertKind]bool
}

// NewKindFilter creates a filter for the given kinds
func NewKindFilter(kinds ...models.AlertKind) *KindFilter {
	f := &KindFilter{kinds: make(map[models.AlertKind]bool, len(kinds))}
	for _, k := range kinds {
		f.kinds[k] = true
	}
	return f
}

// ParseKinds converts kind names into alert kinds
func ParseKinds(names []string) ([]models.AlertKind, error) {
	kinds := make([]models.AlertKind, 0, len(names))
	for _, name := range names {
		kind := models.AlertKind(name)
		if err := kind.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Pass reports whether the alert should be delivered
func (f *KindFilter) Pass(alert *models.Alert) bool {
	if f == nil || len(f.kinds) == 0 {
		return true
	}
	return f.kinds[alert.Kind]
}

// FilterAlerts returns the alerts that pass, in order
func (f *KindFilter) FilterAlerts(alerts []*models.Alert) []*models.Alert {
	filtered := make([]*models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if f.Pass(alert) {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}
