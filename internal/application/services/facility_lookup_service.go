package services

import (
	"context"
	"sort"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/circuitbreaker"
	"github.com/billharmony/backend/pkg/geo"
	"github.com/rs/zerolog"
)

const (
	defaultLookupLimit = 20
	maxLookupLimit     = 100
)

// Lookup sources
const (
	LookupSourceIndex   = "index"
	LookupSourceCatalog = "catalog"
)

// BreakerMetrics publishes circuit breaker state
type BreakerMetrics interface {
	SetBreakerState(name, state string)
}

// FacilityLookupResult is a facility lookup answer and where it came from
type FacilityLookupResult struct {
	Facilities []entities.FacilitySummary `json:"facilities"`
	Source     string                     `json:"source"`
}

// FacilityLookupService finds facilities by name and location through the
// search index, falling back to scanning the catalog when the index is
// disabled, failing, or behind an open breaker.
type FacilityLookupService struct {
	catalog *entities.ReferenceCatalog
	index   repositories.FacilityIndex
	breaker *circuitbreaker.CircuitBreaker
	flags   *FeatureFlags
	logger  zerolog.Logger
}

// NewFacilityLookupService creates a new lookup service. index and breaker may be nil.
func NewFacilityLookupService(
	catalog *entities.ReferenceCatalog,
	index repositories.FacilityIndex,
	breaker *circuitbreaker.CircuitBreaker,
	flags *FeatureFlags,
	metrics BreakerMetrics,
	logger zerolog.Logger,
) *FacilityLookupService {
	if breaker != nil && metrics != nil {
		metrics.SetBreakerState(breaker.Name(), string(breaker.State()))
		breaker.OnStateChange(func(name string, _, to circuitbreaker.State) {
			metrics.SetBreakerState(name, string(to))
		})
	}
	return &FacilityLookupService{
		catalog: catalog,
		index:   index,
		breaker: breaker,
		flags:   flags,
		logger:  logger.With().Str("component", "facility_lookup").Logger(),
	}
}

// Lookup returns facilities matching params
func (s *FacilityLookupService) Lookup(ctx context.Context, params repositories.FacilityLookupParams) (*FacilityLookupResult, error) {
	ctx, span := observability.StartSpan(ctx, "FacilityLookupService.Lookup")
	defer span.End()

	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = defaultLookupLimit
	}
	if params.Limit > maxLookupLimit {
		params.Limit = maxLookupLimit
	}
	if params.HasOrigin && params.RadiusMiles <= 0 {
		params.RadiusMiles = entities.DefaultRadiusMiles
	}
	if params.RadiusMiles > 0 {
		params.RadiusMiles = entities.ClampRadius(params.RadiusMiles)
	}

	if s.index == nil || !s.flags.FacilityLookupEnabled() {
		return s.fromCatalog(params), nil
	}

	lookup := func() (interface{}, error) {
		return s.index.Lookup(ctx, params)
	}
	fallback := func(err error) (interface{}, error) {
		s.logger.Warn().Err(err).Str("query", params.Query).Msg("facility index unavailable, scanning catalog")
		return nil, nil
	}

	var (
		raw interface{}
		err error
	)
	if s.breaker != nil {
		raw, err = s.breaker.ExecuteWithFallback(ctx, lookup, fallback)
	} else {
		raw, err = lookup()
		if err != nil {
			raw, err = fallback(err)
		}
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	ids, ok := raw.([]string)
	if !ok {
		return s.fromCatalog(params), nil
	}
	return s.fromIDs(ids), nil
}

func (s *FacilityLookupService) fromIDs(ids []string) *FacilityLookupResult {
	out := make([]entities.FacilitySummary, 0, len(ids))
	for _, id := range ids {
		// The index may lag the catalog.
		if f, ok := s.catalog.Facility(id); ok {
			out = append(out, f.Summary())
		}
	}
	return &FacilityLookupResult{Facilities: out, Source: LookupSourceIndex}
}

type lookupCandidate struct {
	facility *entities.Facility
	distance float64
}

func (s *FacilityLookupService) fromCatalog(params repositories.FacilityLookupParams) *FacilityLookupResult {
	query := strings.ToLower(params.Query)
	facilities := s.catalog.Facilities()

	var candidates []lookupCandidate
	for i := range facilities {
		f := &facilities[i]
		if query != "" && !matchesFacility(f, query) {
			continue
		}
		if params.ProcedureID != "" {
			if _, ok := f.Charge(params.ProcedureID); !ok {
				continue
			}
		}
		c := lookupCandidate{facility: f}
		if params.HasOrigin {
			c.distance = geo.DistanceMiles(params.Latitude, params.Longitude, f.Location.Latitude, f.Location.Longitude)
			if params.RadiusMiles > 0 && c.distance > params.RadiusMiles {
				continue
			}
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if params.HasOrigin {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].facility.Name < candidates[j].facility.Name
	})
	if len(candidates) > params.Limit {
		candidates = candidates[:params.Limit]
	}

	out := make([]entities.FacilitySummary, len(candidates))
	for i, c := range candidates {
		out[i] = c.facility.Summary()
	}
	return &FacilityLookupResult{Facilities: out, Source: LookupSourceCatalog}
}

func matchesFacility(f *entities.Facility, query string) bool {
	return strings.Contains(strings.ToLower(f.Name), query) ||
		strings.Contains(strings.ToLower(f.Address.City), query)
}
