package storage

import (
	"fmt"
	"strings"
)

const alertColumns = "id, run_id, series_id, idx, kind, date, price, message, created_at"

// buildAlertQuery builds the SELECT for GetAlerts with positional arguments
func buildAlertQuery(filter AlertFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT " + alertColumns + " FROM crossover_alerts WHERE 1=1")

	args := []interface{}{}
	argIndex := 1

	if filter.SeriesID != "" {
		fmt.Fprintf(&sb, " AND series_id = $%d", argIndex)
		args = append(args, filter.SeriesID)
		argIndex++
	}

	if filter.RunID != "" {
		fmt.Fprintf(&sb, " AND run_id = $%d", argIndex)
		args = append(args, filter.RunID)
		argIndex++
	}

	if filter.Kind != "" {
		fmt.Fprintf(&sb, " AND kind = $%d", argIndex)
		args = append(args, string(filter.Kind))
		argIndex++
	}

	if !filter.StartTime.IsZero() {
		fmt.Fprintf(&sb, " AND created_at >= $%d", argIndex)
		args = append(args, filter.StartTime)
		argIndex++
	}

	if !filter.EndTime.IsZero() {
		fmt.Fprintf(&sb, " AND created_at <= $%d", argIndex)
		args = append(args, filter.EndTime)
		argIndex++
	}

	sb.WriteString(" ORDER BY series_id, idx, kind")

	if filter.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	return sb.String(), args
}
