package geolocation

import (
	"regexp"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/rs/zerolog"
)

// KnownPlace is a city whose name (case-insensitive) or zip fragments resolve to a fixed coordinate
type KnownPlace struct {
	Name         string
	ZipFragments []string
	Location     entities.Location
}

// DefaultKnownPlaces returns the Southern California places the catalog covers
func DefaultKnownPlaces() []KnownPlace {
	return []KnownPlace{
		{Name: "Beverly Hills", ZipFragments: []string{"90210"}, Location: entities.Location{Latitude: 34.0736, Longitude: -118.4004}},
		{Name: "Los Angeles", ZipFragments: []string{"90033"}, Location: entities.Location{Latitude: 34.0522, Longitude: -118.2437}},
		{Name: "Orange", ZipFragments: []string{"92868"}, Location: entities.Location{Latitude: 33.7879, Longitude: -117.8531}},
		{Name: "San Diego", ZipFragments: []string{"92103"}, Location: entities.Location{Latitude: 32.7157, Longitude: -117.1611}},
		{Name: "Riverside", ZipFragments: []string{"92501"}, Location: entities.Location{Latitude: 33.9533, Longitude: -117.3962}},
		{Name: "Long Beach", ZipFragments: []string{"90806"}, Location: entities.Location{Latitude: 33.8044, Longitude: -118.1950}},
		{Name: "Santa Monica", ZipFragments: []string{"90404"}, Location: entities.Location{Latitude: 34.0195, Longitude: -118.4912}},
		{Name: "Pasadena", ZipFragments: []string{"91105"}, Location: entities.Location{Latitude: 34.1478, Longitude: -118.1445}},
		{Name: "Glendale", ZipFragments: []string{"91206"}, Location: entities.Location{Latitude: 34.1425, Longitude: -118.2551}},
		{Name: "Burbank", ZipFragments: []string{"91505"}, Location: entities.Location{Latitude: 34.1808, Longitude: -118.3090}},
	}
}

var zipTokenPattern = regexp.MustCompile(`^\d{5}$`)

// TableResolver resolves location tokens against the catalog zip table and a
// list of known places. Unmatched tokens resolve to a configured fallback
// coordinate; every fallback is logged and flagged on the Resolution.
type TableResolver struct {
	catalog  *entities.ReferenceCatalog
	places   []KnownPlace
	fallback providers.Resolution
	logger   zerolog.Logger
}

// NewTableResolver creates a new resolver; a nil places list uses DefaultKnownPlaces
func NewTableResolver(catalog *entities.ReferenceCatalog, places []KnownPlace, fallbackLabel string, fallback entities.Location, logger zerolog.Logger) providers.LocationResolver {
	if places == nil {
		places = DefaultKnownPlaces()
	}
	return &TableResolver{
		catalog: catalog,
		places:  places,
		fallback: providers.Resolution{
			Location: fallback,
			Source:   providers.SourceFallback,
			Label:    fallbackLabel,
		},
		logger: logger.With().Str("component", "location_resolver").Logger(),
	}
}

// Lookup resolves token without falling back
func (r *TableResolver) Lookup(token string) (providers.Resolution, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return providers.Resolution{}, false
	}

	if zipTokenPattern.MatchString(trimmed) && r.catalog != nil {
		if z, ok := r.catalog.Zip(trimmed); ok {
			return providers.Resolution{
				Token:    token,
				Location: z.Location,
				Source:   providers.SourceZipTable,
				Label:    z.City,
			}, true
		}
	}

	lower := strings.ToLower(trimmed)
	for _, place := range r.places {
		if strings.Contains(lower, strings.ToLower(place.Name)) || containsAny(trimmed, place.ZipFragments) {
			return providers.Resolution{
				Token:    token,
				Location: place.Location,
				Source:   providers.SourceKnownPlace,
				Label:    place.Name,
			}, true
		}
	}

	return providers.Resolution{}, false
}

// Resolve resolves token, using the fallback coordinate when nothing matches
func (r *TableResolver) Resolve(token string) providers.Resolution {
	if res, ok := r.Lookup(token); ok {
		return res
	}

	r.logger.Warn().
		Str("token", token).
		Str("fallback", r.fallback.Label).
		Msg("location not recognized, using fallback coordinate")

	res := r.fallback
	res.Token = token
	return res
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}
