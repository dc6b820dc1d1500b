package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/billharmony/backend/internal/domain/entities"
)

// ZeroResultReporter lists searches that returned nothing
type ZeroResultReporter interface {
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}

// AnalyticsHandler exposes search analytics
type AnalyticsHandler struct {
	reporter ZeroResultReporter
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(reporter ZeroResultReporter) *AnalyticsHandler {
	return &AnalyticsHandler{reporter: reporter}
}

// GetZeroResultQueries handles GET /api/analytics/zero-result-queries?limit=
func (h *AnalyticsHandler) GetZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	events, err := h.reporter.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": events,
		"count":   len(events),
	})
}
