package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Search kinds used as metric labels
const (
	SearchKindAI         = "ai"
	SearchKindStructured = "structured"
)

const (
	missingInsuranceMessage = "To provide accurate cost estimates, we need to know your insurance provider. What insurance do you have?"
	missingLocationMessage  = "Could not determine location from your query. Please specify a zip code or city, state."
	missingInfoCostQuery    = "cost_query"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

// SearchMetrics receives domain counters for searches and eligibility checks
type SearchMetrics interface {
	ObserveSearch(kind, outcome string, results int, seconds float64)
	ObserveLocationFallback()
	ObserveEligibility(qualified bool)
}

// AISearchRequest is a free-text price question plus optional saved defaults
type AISearchRequest struct {
	Query     string                `json:"ai_query"`
	Profile   *entities.UserProfile `json:"user_profile,omitempty"`
	ProfileID string                `json:"profile_id,omitempty"`
}

// StructuredSearchRequest is the form-based search
type StructuredSearchRequest struct {
	Procedure   string  `json:"procedure"`
	Location    string  `json:"location"`
	InsurerID   string  `json:"insurance,omitempty"`
	PlanID      string  `json:"insurance_plan,omitempty"`
	RadiusMiles float64 `json:"max_distance"`
}

// MissingInfo asks the caller for data needed before results can be priced
type MissingInfo struct {
	Required []string `json:"required"`
	Message  string   `json:"message"`
	Context  string   `json:"context"`
}

// ParsedData echoes the interpreted request back to the caller
type ParsedData struct {
	Procedures     []string                   `json:"procedures"`
	InsurerID      string                     `json:"insurance"`
	PlanID         string                     `json:"insurance_plan,omitempty"`
	Location       string                     `json:"location"`
	RadiusMiles    float64                    `json:"max_distance"`
	ZipCode        string                     `json:"zip_code,omitempty"`
	CashOnly       bool                       `json:"cash_only"`
	LocationSource providers.ResolutionSource `json:"location_source,omitempty"`
}

// SearchResponse is the result of an AI or structured search
type SearchResponse struct {
	Results     []entities.SearchResultEntry `json:"results"`
	ParsedData  ParsedData                   `json:"parsed_data"`
	Query       string                       `json:"ai_query,omitempty"`
	MissingInfo *MissingInfo                 `json:"missing_info,omitempty"`
	// BestOption indexes Results; nil when there are no results
	BestOption   *int                   `json:"best_option"`
	PaymentPlans []entities.PaymentPlan `json:"payment_plans,omitempty"`
	Origin       *providers.Resolution  `json:"origin,omitempty"`
}

// PriceSearchService runs the search pipeline: interpret, default from the
// user profile, resolve location, match and price facilities, explain costs.
type PriceSearchService struct {
	catalog     *entities.ReferenceCatalog
	interpreter *QueryInterpreter
	resolver    providers.LocationResolver
	matcher     *FacilityMatcher
	explainer   *CostExplainer
	preferences repositories.PreferenceRepository
	analytics   *SearchAnalyticsService
	flags       *FeatureFlags
	metrics     SearchMetrics
	logger      zerolog.Logger
	now         func() time.Time
}

// PriceSearchDeps groups the collaborators of PriceSearchService.
// Preferences, Analytics, Flags and Metrics are optional.
type PriceSearchDeps struct {
	Catalog     *entities.ReferenceCatalog
	Interpreter *QueryInterpreter
	Resolver    providers.LocationResolver
	Matcher     *FacilityMatcher
	Explainer   *CostExplainer
	Preferences repositories.PreferenceRepository
	Analytics   *SearchAnalyticsService
	Flags       *FeatureFlags
	Metrics     SearchMetrics
	Logger      zerolog.Logger
}

// NewPriceSearchService creates a new price search service
func NewPriceSearchService(deps PriceSearchDeps) *PriceSearchService {
	interpreter := deps.Interpreter
	if interpreter == nil {
		interpreter = NewQueryInterpreter(nil, deps.Catalog)
	}
	matcher := deps.Matcher
	if matcher == nil {
		matcher = NewFacilityMatcher(nil)
	}
	explainer := deps.Explainer
	if explainer == nil {
		explainer = NewCostExplainer()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = (*observability.DomainMetrics)(nil)
	}

	return &PriceSearchService{
		catalog:     deps.Catalog,
		interpreter: interpreter,
		resolver:    deps.Resolver,
		matcher:     matcher,
		explainer:   explainer,
		preferences: deps.Preferences,
		analytics:   deps.Analytics,
		flags:       deps.Flags,
		metrics:     metrics,
		logger:      deps.Logger.With().Str("component", "price_search").Logger(),
		now:         time.Now,
	}
}

// AISearch answers a free-text price question
func (s *PriceSearchService) AISearch(ctx context.Context, req AISearchRequest) (*SearchResponse, error) {
	ctx, span := observability.StartSpan(ctx, "PriceSearchService.AISearch")
	defer span.End()
	start := s.now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.metrics.ObserveSearch(SearchKindAI, observability.OutcomeInvalid, 0, 0)
		return nil, apperrors.NewFieldValidationError("ai_query", "AI query is required")
	}

	intent := s.interpreter.Parse(query)

	profile, err := s.profileFor(ctx, req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if intent.ExplicitNoInsurance {
		intent.ClearInsurance()
	} else if intent.InsurerID == "" && profile != nil && profile.InsurerID != "" {
		intent.InsurerID = profile.InsurerID
		intent.PlanID = profile.PlanID
	}

	span.SetAttributes(
		attribute.StringSlice("search.procedures", intent.Procedures),
		attribute.String("search.insurer", intent.InsurerID),
		attribute.Bool("search.cash_only", intent.ExplicitNoInsurance),
	)

	if s.interpreter.IsCostQuery(query) && intent.InsurerID == "" && !intent.ExplicitNoInsurance {
		s.metrics.ObserveSearch(SearchKindAI, observability.OutcomeMissingInfo, 0, s.since(start))
		s.track(ctx, query, intent, providers.Resolution{}, 0, true, start)
		return &SearchResponse{
			Results: []entities.SearchResultEntry{},
			ParsedData: ParsedData{
				Procedures:  intent.Procedures,
				Location:    intent.Location,
				RadiusMiles: intent.RadiusMiles,
			},
			Query: query,
			MissingInfo: &MissingInfo{
				Required: []string{"insurance"},
				Message:  missingInsuranceMessage,
				Context:  missingInfoCostQuery,
			},
		}, nil
	}

	if intent.Location == "" {
		intent.Location = profile.LocationToken()
	}
	if intent.Location == "" {
		s.metrics.ObserveSearch(SearchKindAI, observability.OutcomeInvalid, 0, s.since(start))
		return nil, apperrors.NewFieldValidationError("location", missingLocationMessage)
	}

	resp := s.run(ctx, intent)
	resp.Query = query

	s.metrics.ObserveSearch(SearchKindAI, outcomeFor(resp.Results), len(resp.Results), s.since(start))
	s.track(ctx, query, intent, *resp.Origin, len(resp.Results), false, start)

	s.logger.Debug().
		Str("request_id", observability.RequestIDFromContext(ctx)).
		Strs("procedures", intent.Procedures).
		Str("location", intent.Location).
		Int("results", len(resp.Results)).
		Msg("ai search completed")

	return resp, nil
}

// Search runs a structured form search for one procedure
func (s *PriceSearchService) Search(ctx context.Context, req StructuredSearchRequest) (*SearchResponse, error) {
	ctx, span := observability.StartSpan(ctx, "PriceSearchService.Search")
	defer span.End()
	start := s.now()

	procedure := strings.TrimSpace(req.Procedure)
	location := strings.TrimSpace(req.Location)
	if procedure == "" {
		return nil, s.invalid(SearchKindStructured, apperrors.NewFieldValidationError("procedure", "procedure is required"))
	}
	if location == "" {
		return nil, s.invalid(SearchKindStructured, apperrors.NewFieldValidationError("location", "location is required"))
	}
	if req.RadiusMiles <= 0 {
		return nil, s.invalid(SearchKindStructured, apperrors.NewFieldValidationError("max_distance", "max distance is required"))
	}
	if s.catalog != nil {
		if _, ok := s.catalog.Procedure(procedure); !ok {
			return nil, s.invalid(SearchKindStructured, apperrors.NewNotFoundError("procedure not found: "+procedure))
		}
	}

	intent := &entities.ParsedIntent{
		Procedures:  []string{procedure},
		InsurerID:   strings.TrimSpace(req.InsurerID),
		PlanID:      strings.TrimSpace(req.PlanID),
		Location:    location,
		RadiusMiles: entities.ClampRadius(req.RadiusMiles),
	}
	if intent.InsurerID == "" {
		intent.PlanID = ""
	}

	resp := s.run(ctx, intent)
	s.metrics.ObserveSearch(SearchKindStructured, outcomeFor(resp.Results), len(resp.Results), s.since(start))
	return resp, nil
}

// run resolves the location, matches facilities and attaches cost explanations
func (s *PriceSearchService) run(ctx context.Context, intent *entities.ParsedIntent) *SearchResponse {
	_, span := observability.StartSpan(ctx, "PriceSearchService.match",
		attribute.String("search.location", intent.Location),
		attribute.Float64("search.radius_miles", intent.RadiusMiles),
	)
	defer span.End()

	origin := s.resolver.Resolve(intent.Location)
	if origin.IsFallback() {
		s.metrics.ObserveLocationFallback()
	}
	span.SetAttributes(attribute.String("search.location_source", string(origin.Source)))

	results := s.matcher.Search(intent, origin.Location, s.catalog)
	for i := range results {
		results[i].CostBreakdown = s.explainer.Breakdown(&results[i])
	}

	resp := &SearchResponse{
		Results: results,
		ParsedData: ParsedData{
			Procedures:     intent.Procedures,
			InsurerID:      intent.InsurerID,
			PlanID:         intent.PlanID,
			Location:       intent.Location,
			RadiusMiles:    intent.RadiusMiles,
			CashOnly:       intent.ExplicitNoInsurance,
			LocationSource: origin.Source,
		},
		Origin: &origin,
	}
	if zipCodePattern.MatchString(intent.Location) {
		resp.ParsedData.ZipCode = intent.Location
	}

	if best := s.explainer.BestOption(results); best >= 0 {
		resp.BestOption = &best
		resp.PaymentPlans = s.explainer.PaymentPlans(results[best].OutOfPocket())
	}

	return resp
}

// profileFor returns the inline profile, else the stored one. A missing stored profile is not an error.
func (s *PriceSearchService) profileFor(ctx context.Context, req AISearchRequest) (*entities.UserProfile, error) {
	if req.Profile != nil {
		return req.Profile, nil
	}
	if req.ProfileID == "" || s.preferences == nil {
		return nil, nil
	}

	profile, err := s.preferences.GetByID(ctx, req.ProfileID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.Info().Str("profile_id", req.ProfileID).Msg("profile not found, searching without defaults")
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *PriceSearchService) track(ctx context.Context, query string, intent *entities.ParsedIntent, origin providers.Resolution, count int, missing bool, start time.Time) {
	if !s.flags.SearchAnalyticsEnabled() {
		return
	}
	s.analytics.TrackSearch(ctx, &entities.SearchEvent{
		Query:          query,
		Procedures:     append([]string(nil), intent.Procedures...),
		InsurerID:      intent.InsurerID,
		PlanID:         intent.PlanID,
		LocationToken:  intent.Location,
		LocationSource: string(origin.Source),
		RadiusMiles:    intent.RadiusMiles,
		CashOnly:       intent.ExplicitNoInsurance,
		MissingInfo:    missing,
		ResultCount:    count,
		LatencyMs:      int(s.now().Sub(start).Milliseconds()),
		UserLatitude:   origin.Location.Latitude,
		UserLongitude:  origin.Location.Longitude,
	})
}

func (s *PriceSearchService) invalid(kind string, err error) error {
	s.metrics.ObserveSearch(kind, observability.OutcomeInvalid, 0, 0)
	return err
}

func (s *PriceSearchService) since(start time.Time) float64 {
	return s.now().Sub(start).Seconds()
}

func outcomeFor(results []entities.SearchResultEntry) string {
	if len(results) == 0 {
		return observability.OutcomeNoResults
	}
	return observability.OutcomeResults
}
