package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/stock-cruncher/internal/batch"
	"github.com/mohamedkhairy/stock-cruncher/internal/indicator"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/internal/storage"
	indicatorpkg "github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

// IndicatorRequest is the body of POST /api/v1/indicators
type IndicatorRequest struct {
	Series []models.PriceSeries `json:"series"`
}

// SeriesResult is the per-series part of an IndicatorResponse
type SeriesResult struct {
	ID         string           `json:"id"`
	Length     int              `json:"length"`
	Indicators indicatorpkg.Set `json:"indicators"`
	Alerts     []*models.Alert  `json:"alerts"`
	Error      string           `json:"error,omitempty"`
}

// IndicatorResponse is the response of POST /api/v1/indicators
type IndicatorResponse struct {
	RunID      string         `json:"run_id"`
	Series     []SeriesResult `json:"series"`
	Stats      batch.Stats    `json:"stats"`
	Delivered  int            `json:"delivered"`
	Duplicates int            `json:"duplicates"`
	DurationMs int64          `json:"duration_ms"`
}

// IndicatorHandler computes indicator sets for a batch of series
type IndicatorHandler struct {
	engine    *indicator.Engine
	maxSeries int
}

// NewIndicatorHandler creates a new indicator handler. maxSeries <= 0 means no limit.
func NewIndicatorHandler(engine *indicator.Engine, maxSeries int) *IndicatorHandler {
	return &IndicatorHandler{
		engine:    engine,
		maxSeries: maxSeries,
	}
}

// Compute handles POST /api/v1/indicators
func (h *IndicatorHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req IndicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validateRequest(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := h.engine.Run(r.Context(), req.Series)

	resp := IndicatorResponse{
		RunID:      report.RunID,
		Series:     make([]SeriesResult, len(report.Series)),
		Stats:      report.Batch,
		Delivered:  report.Dispatch.Delivered,
		Duplicates: report.Dispatch.Duplicates,
		DurationMs: report.Duration.Milliseconds(),
	}
	for i, s := range report.Series {
		res := SeriesResult{
			ID:         s.ID,
			Length:     s.Length,
			Indicators: s.Set,
			Alerts:     s.Alerts,
		}
		if res.Alerts == nil {
			res.Alerts = []*models.Alert{}
		}
		if s.Err != nil {
			res.Error = s.Err.Error()
		}
		resp.Series[i] = res
	}

	if summary := report.ErrorSummary(); summary != "" {
		logger.WithContext(r.Context()).Warn("Indicator request had failures",
			logger.String("summary", summary),
		)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *IndicatorHandler) validateRequest(req *IndicatorRequest) error {
	if len(req.Series) == 0 {
		return errors.New("at least one series is required")
	}
	if h.maxSeries > 0 && len(req.Series) > h.maxSeries {
		return fmt.Errorf("too many series: %d (max %d)", len(req.Series), h.maxSeries)
	}
	seen := make(map[string]struct{}, len(req.Series))
	for i, s := range req.Series {
		if s.ID == "" {
			return fmt.Errorf("series %d: %w", i, models.ErrInvalidSeriesID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate series id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// AlertHandler handles alert history endpoints
type AlertHandler struct {
	alertStorage storage.AlertStorage
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertStorage storage.AlertStorage) *AlertHandler {
	return &AlertHandler{
		alertStorage: alertStorage,
	}
}

// ListAlerts handles GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.AlertFilter{
		SeriesID: query.Get("series_id"),
		RunID:    query.Get("run_id"),
		Limit:    100,
	}

	if kindStr := query.Get("kind"); kindStr != "" {
		kind := models.AlertKind(kindStr)
		if err := kind.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid kind %q", kindStr))
			return
		}
		filter.Kind = kind
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := parseInt(limitStr); err == nil && limit > 0 && limit <= 1000 {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := parseInt(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	if startStr := query.Get("start_time"); startStr != "" {
		if start, err := time.Parse(time.RFC3339, startStr); err == nil {
			filter.StartTime = start
		}
	}

	if endStr := query.Get("end_time"); endStr != "" {
		if end, err := time.Parse(time.RFC3339, endStr); err == nil {
			filter.EndTime = end
		}
	}

	alerts, err := h.alertStorage.GetAlerts(r.Context(), filter)
	if err != nil {
		logger.Error("Failed to retrieve alerts", logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve alerts")
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetAlert handles GET /api/v1/alerts/{id}
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["id"]

	alert, err := h.alertStorage.GetAlert(r.Context(), alertID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve alert")
		return
	}

	if alert == nil {
		respondWithError(w, http.StatusNotFound, "Alert not found")
		return
	}

	respondWithJSON(w, http.StatusOK, alert)
}

// Helper functions

func parseInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	return result, err
}
