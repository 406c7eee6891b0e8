package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"insights-be/internal/domain"
	"insights-be/internal/service"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// AnalyticsHandler handles the usage analytics HTTP endpoints
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// RegisterRoutes registers analytics routes with the router
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chats", h.GetChatSeries)
	r.Get("/active-users", h.GetActiveUserSeries)
	r.Get("/sessions", h.GetSessionSeries)
	r.Get("/export.csv", h.ExportCSV)
	r.Get("/ip-usage", h.GetIpUsage)
}

// seriesPointResponse is one {date, value} pair of a time series
type seriesPointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// sessionPointResponse is one bucket of the session series
type sessionPointResponse struct {
	Date              string  `json:"date"`
	SessionCount      int     `json:"sessionCount"`
	DurationInSeconds float64 `json:"durationInSeconds"`
}

// seriesResponse is the envelope of the count series endpoints. Trend is
// null when undefined (empty series or a zero first value).
type seriesResponse struct {
	Success  bool                  `json:"success"`
	Data     []seriesPointResponse `json:"data"`
	Previous []seriesPointResponse `json:"previous,omitempty"`
	Trend    *float64              `json:"trend"`
}

// sessionSeriesResponse is the envelope of the session series endpoint
type sessionSeriesResponse struct {
	Success  bool                   `json:"success"`
	Data     []sessionPointResponse `json:"data"`
	Previous []sessionPointResponse `json:"previous,omitempty"`
}

// ipUsageResponse is the envelope of the IP usage endpoint
type ipUsageResponse struct {
	Success bool                   `json:"success"`
	Data    []domain.IpUsageRecord `json:"data"`
}

// GetChatSeries handles GET /api/analytics/chats
func (h *AnalyticsHandler) GetChatSeries(w http.ResponseWriter, r *http.Request) {
	h.serveCountSeries(w, r, h.analytics.ChatSeries)
}

// GetActiveUserSeries handles GET /api/analytics/active-users
func (h *AnalyticsHandler) GetActiveUserSeries(w http.ResponseWriter, r *http.Request) {
	h.serveCountSeries(w, r, h.analytics.ActiveUserSeries)
}

func (h *AnalyticsHandler) serveCountSeries(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, q domain.SeriesQuery) (*domain.SeriesResult, error),
) {
	query, err := parseSeriesQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := fetch(r.Context(), *query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, seriesResponse{
		Success:  true,
		Data:     toSeriesPoints(result.Current),
		Previous: toSeriesPoints(result.Previous),
		Trend:    service.Trend(result.Current),
	})
}

// GetSessionSeries handles GET /api/analytics/sessions
func (h *AnalyticsHandler) GetSessionSeries(w http.ResponseWriter, r *http.Request) {
	query, err := parseSeriesQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.analytics.SessionSeries(r.Context(), *query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sessionSeriesResponse{
		Success:  true,
		Data:     toSessionPoints(result.Current),
		Previous: toSessionPoints(result.Previous),
	})
}

// ExportCSV handles GET /api/analytics/export.csv. The CSV is rendered into
// a buffer first so a mid-computation failure still produces the structured
// error contract instead of a truncated download.
func (h *AnalyticsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	query, err := parseSeriesQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.analytics.WriteExportCSV(r.Context(), *query, &buf); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="usage-export.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WithError(err).Error("Failed to write CSV export")
	}
}

// GetIpUsage handles GET /api/analytics/ip-usage
func (h *AnalyticsHandler) GetIpUsage(w http.ResponseWriter, r *http.Request) {
	query, err := parseIpUsageQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	records, err := h.analytics.IpUsage(r.Context(), *query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ipUsageResponse{Success: true, Data: records})
}

func toSeriesPoints(series []domain.SeriesPoint) []seriesPointResponse {
	if series == nil {
		return nil
	}
	points := make([]seriesPointResponse, len(series))
	for i, point := range series {
		points[i] = seriesPointResponse{
			Date:  point.Date.Format(time.RFC3339),
			Value: point.Value,
		}
	}
	return points
}

func toSessionPoints(series []domain.SessionSeriesPoint) []sessionPointResponse {
	if series == nil {
		return nil
	}
	points := make([]sessionPointResponse, len(series))
	for i, point := range series {
		points[i] = sessionPointResponse{
			Date:              point.Date.Format(time.RFC3339),
			SessionCount:      point.SessionCount,
			DurationInSeconds: point.DurationInSeconds,
		}
	}
	return points
}

// writeJSON writes a JSON response
func (h *AnalyticsHandler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps an error onto the structured error contract
func (h *AnalyticsHandler) writeError(w http.ResponseWriter, err error) {
	writeErrorResponse(w, h.logger, err)
}

// writeErrorResponse is shared by all handlers in this package
func writeErrorResponse(w http.ResponseWriter, log *logger.Logger, err error) {
	statusCode := http.StatusInternalServerError
	errorType := string(apperrors.ErrorTypeInternal)
	message := "Internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode
		errorType = string(appErr.Type)
		message = appErr.Message
	}

	if statusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Debug("Request rejected")
	}

	response := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"type":    errorType,
			"message": message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}
