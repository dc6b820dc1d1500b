package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	tsclient "github.com/billharmony/backend/internal/infrastructure/clients/typesense"
	"github.com/rs/zerolog"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const collectionName = "facilities"

const defaultLookupLimit = 20

// TypesenseAdapter indexes catalog facilities in Typesense for name and geo lookup
type TypesenseAdapter struct {
	client *tsclient.Client
	logger zerolog.Logger
}

var _ repositories.FacilityIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, logger zerolog.Logger) *TypesenseAdapter {
	return &TypesenseAdapter{
		client: client,
		logger: logger.With().Str("component", "typesense_index").Logger(),
	}
}

// EnsureSchema creates the facilities collection when it does not exist
func (a *TypesenseAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "state", Type: "string", Facet: pointer.True()},
			{Name: "zip_code", Type: "string"},
			{Name: "location", Type: "geopoint"},
			{Name: "procedures", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "insurers", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "tags", Type: "string[]", Optional: pointer.True()},
			{Name: "procedure_count", Type: "int32"},
		},
		DefaultSortingField: pointer.String("procedure_count"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	a.logger.Info().Str("collection", collectionName).Msg("created typesense collection")
	return nil
}

// DropCollection deletes the facilities collection so the next EnsureSchema recreates it
func (a *TypesenseAdapter) DropCollection(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	a.logger.Info().Str("collection", collectionName).Msg("deleted typesense collection")
	return nil
}

// Upsert indexes every facility, stopping at the first failure
func (a *TypesenseAdapter) Upsert(ctx context.Context, facilities []entities.Facility) error {
	for i := range facilities {
		if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, facilityDocument(&facilities[i])); err != nil {
			return fmt.Errorf("failed to index facility %s: %w", facilities[i].ID, err)
		}
	}
	a.logger.Info().Int("facilities", len(facilities)).Msg("facilities indexed")
	return nil
}

// Lookup searches facility names and tags, optionally restricted to a radius and a procedure
func (a *TypesenseAdapter) Lookup(ctx context.Context, params repositories.FacilityLookupParams) ([]string, error) {
	searchParams := buildSearchParams(params)

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}

	ids := []string{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildSearchParams(params repositories.FacilityLookupParams) *api.SearchCollectionParams {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLookupLimit
	}

	var filters []string
	if params.HasOrigin && params.RadiusMiles > 0 {
		filters = append(filters, fmt.Sprintf("location:(%f, %f, %g mi)", params.Latitude, params.Longitude, params.RadiusMiles))
	}
	if params.ProcedureID != "" {
		filters = append(filters, fmt.Sprintf("procedures:=`%s`", params.ProcedureID))
	}

	sp := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,tags"),
		PerPage: pointer.Int(limit),
	}
	if len(filters) > 0 {
		sp.FilterBy = pointer.String(strings.Join(filters, " && "))
	}
	if params.HasOrigin {
		sp.SortBy = pointer.String(fmt.Sprintf("location(%f, %f):asc", params.Latitude, params.Longitude))
	}
	return sp
}

func facilityDocument(f *entities.Facility) map[string]interface{} {
	procedures := make([]string, 0, len(f.Charges))
	for id := range f.Charges {
		procedures = append(procedures, id)
	}
	sort.Strings(procedures)

	return map[string]interface{}{
		"id":              f.ID,
		"name":            f.Name,
		"city":            f.Address.City,
		"state":           f.Address.State,
		"zip_code":        f.Address.ZipCode,
		"location":        []float64{f.Location.Latitude, f.Location.Longitude},
		"procedures":      procedures,
		"insurers":        f.InNetworkInsurers,
		"tags":            buildFacilityTags(f),
		"procedure_count": len(procedures),
	}
}

// buildFacilityTags lowercases and dedupes the searchable words of a facility
func buildFacilityTags(f *entities.Facility) []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}

	add(f.Name)
	add(f.Address.City)
	add(f.Address.State)
	add(f.Address.ZipCode)
	for _, ins := range f.InNetworkInsurers {
		add(ins)
	}
	return tags
}
