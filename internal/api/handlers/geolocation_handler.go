package handlers

import (
	"net/http"
	"strings"

	"github.com/billharmony/backend/internal/domain/providers"
)

// GeolocationHandler handles geolocation endpoints.
type GeolocationHandler struct {
	resolver providers.LocationResolver
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(resolver providers.LocationResolver) *GeolocationHandler {
	return &GeolocationHandler{resolver: resolver}
}

// Geocode handles GET /api/geocode?location=...
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "location parameter is required")
		return
	}

	res := h.resolver.Resolve(location)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"lat":       res.Location.Latitude,
		"lon":       res.Location.Longitude,
		"source":    res.Source,
		"label":     res.Label,
		"estimated": res.IsFallback(),
	})
}
