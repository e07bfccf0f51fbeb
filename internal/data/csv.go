package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// ErrNoRecords is returned when a source yields no usable price rows
var ErrNoRecords = errors.New("no valid records")

// LoadStats counts rows accepted and rejected by a loader
type LoadStats struct {
	Loaded  int
	Skipped int
}

// LoadCSV reads "date,close" rows after a header line. Rows whose close
// does not parse as a finite number are skipped and counted.
func LoadCSV(r io.Reader, id string) (*models.PriceSeries, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, stats, fmt.Errorf("%s: %w", id, ErrNoRecords)
		}
		return nil, stats, fmt.Errorf("failed to read header of %s: %w", id, err)
	}

	series := &models.PriceSeries{ID: id}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("Skipping invalid line",
					logger.String("series_id", id),
					logger.ErrorField(err),
				)
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("failed to read %s: %w", id, err)
		}

		date, closePrice, ok := parseRow(record)
		if !ok {
			line, _ := reader.FieldPos(0)
			logger.Warn("Skipping invalid line",
				logger.String("series_id", id),
				logger.Int("line", line),
				logger.String("row", strings.Join(record, ",")),
			)
			stats.Skipped++
			continue
		}

		series.Dates = append(series.Dates, date)
		series.Closes = append(series.Closes, closePrice)
		stats.Loaded++
	}

	if stats.Loaded == 0 {
		return nil, stats, fmt.Errorf("%s: %w", id, ErrNoRecords)
	}

	logger.Debug("Loaded price series",
		logger.String("series_id", id),
		logger.Int("loaded", stats.Loaded),
		logger.Int("skipped", stats.Skipped),
	)
	return series, stats, nil
}

// LoadCSVFile opens path and loads it with LoadCSV. An empty id defaults
// to the file name without extension.
func LoadCSVFile(path, id string) (*models.PriceSeries, LoadStats, error) {
	if id == "" {
		id = SeriesIDFromPath(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()

	return LoadCSV(f, id)
}

func parseRow(record []string) (string, float64, bool) {
	if len(record) < 2 {
		return "", 0, false
	}
	closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil || math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
		return "", 0, false
	}
	return strings.TrimSpace(record[0]), closePrice, true
}
