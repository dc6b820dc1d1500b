package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/billharmony/backend/internal/application/services"
	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
)

// FacilityFinder looks facilities up by name and location
type FacilityFinder interface {
	Lookup(ctx context.Context, params repositories.FacilityLookupParams) (*services.FacilityLookupResult, error)
}

// CatalogHandler serves the read-only reference catalog
type CatalogHandler struct {
	catalog *entities.ReferenceCatalog
	finder  FacilityFinder
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *entities.ReferenceCatalog, finder FacilityFinder) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, finder: finder}
}

// ListProcedures handles GET /api/procedures
func (h *CatalogHandler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	procedures := make([]entities.Procedure, 0)
	for _, p := range h.catalog.Procedures() {
		if category == "" || strings.EqualFold(p.Category, category) {
			procedures = append(procedures, p)
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"procedures": procedures,
		"count":      len(procedures),
	})
}

// ListInsurers handles GET /api/insurers
func (h *CatalogHandler) ListInsurers(w http.ResponseWriter, r *http.Request) {
	insurers := h.catalog.Insurers()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"insurers": insurers,
		"count":    len(insurers),
	})
}

// GetInsurer handles GET /api/insurers/{id}
func (h *CatalogHandler) GetInsurer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	insurer, ok := h.catalog.Insurer(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "insurer not found")
		return
	}
	respondWithJSON(w, http.StatusOK, insurer)
}

// GetFacility handles GET /api/facilities/{id}
func (h *CatalogHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	facility, ok := h.catalog.Facility(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "facility not found")
		return
	}
	respondWithJSON(w, http.StatusOK, facility)
}

// LookupFacilities handles GET /api/facilities/lookup?q=&lat=&lng=&radius=&procedure=&limit=
func (h *CatalogHandler) LookupFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := repositories.FacilityLookupParams{
		Query:       q.Get("q"),
		ProcedureID: strings.TrimSpace(q.Get("procedure")),
	}

	latStr, lngStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if latStr != "" || lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			respondWithError(w, http.StatusBadRequest, "invalid lat parameter")
			return
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil || lng < -180 || lng > 180 {
			respondWithError(w, http.StatusBadRequest, "invalid lng parameter")
			return
		}
		params.Latitude, params.Longitude, params.HasOrigin = lat, lng, true
	}

	if v := strings.TrimSpace(q.Get("radius")); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid radius parameter")
			return
		}
		params.RadiusMiles = radius
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		params.Limit = limit
	}

	result, err := h.finder.Lookup(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": result.Facilities,
		"count":      len(result.Facilities),
		"source":     result.Source,
	})
}
