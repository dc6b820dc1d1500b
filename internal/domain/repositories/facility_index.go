package repositories

import (
	"context"

	"github.com/billharmony/backend/internal/domain/entities"
)

// FacilityLookupParams narrows a free-text facility lookup
type FacilityLookupParams struct {
	Query       string
	Latitude    float64
	Longitude   float64
	HasOrigin   bool
	RadiusMiles float64
	ProcedureID string
	Limit       int
}

// FacilityIndex is a full-text and geo index over catalog facilities
type FacilityIndex interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, facilities []entities.Facility) error
	// Lookup returns matching facility IDs in relevance order
	Lookup(ctx context.Context, params FacilityLookupParams) ([]string, error)
}
