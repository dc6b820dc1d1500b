package routes

import (
	"net/http"

	"github.com/billharmony/backend/internal/api/handlers"
	"github.com/billharmony/backend/internal/api/middleware"
	"github.com/billharmony/backend/internal/infrastructure/observability"
)

// Handlers groups the route handlers. Profile and Analytics are optional.
type Handlers struct {
	Search      *handlers.SearchHandler
	Eligibility *handlers.EligibilityHandler
	Catalog     *handlers.CatalogHandler
	Geolocation *handlers.GeolocationHandler
	Profile     *handlers.ProfileHandler
	Analytics   *handlers.AnalyticsHandler
}

// Options configures the middleware chain
type Options struct {
	AllowedOrigins  []string
	CacheMiddleware *middleware.CacheMiddleware
	Metrics         *observability.Metrics
	// DomainMetrics is served on MetricsPath when set
	DomainMetrics *observability.DomainMetrics
	MetricsPath   string
}

// Router holds all route handlers
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	opts     Options
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		opts:     opts,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	if r.opts.DomainMetrics != nil {
		r.mux.Handle("GET "+r.opts.MetricsPath, r.opts.DomainMetrics.Handler())
	}

	// Search endpoints
	r.mux.HandleFunc("POST /api/ai-search", r.handlers.Search.AISearch)
	r.mux.HandleFunc("POST /api/search", r.handlers.Search.Search)
	r.mux.HandleFunc("POST /api/charity-eligibility", r.handlers.Eligibility.Check)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/procedures", r.handlers.Catalog.ListProcedures)
	r.mux.HandleFunc("GET /api/insurers", r.handlers.Catalog.ListInsurers)
	r.mux.HandleFunc("GET /api/insurers/{id}", r.handlers.Catalog.GetInsurer)
	r.mux.HandleFunc("GET /api/facilities/lookup", r.handlers.Catalog.LookupFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.handlers.Catalog.GetFacility)
	r.mux.HandleFunc("GET /api/geocode", r.handlers.Geolocation.Geocode)

	if r.handlers.Profile != nil {
		r.mux.HandleFunc("GET /api/profiles/{id}", r.handlers.Profile.GetProfile)
		r.mux.HandleFunc("PUT /api/profiles/{id}", r.handlers.Profile.PutProfile)
	}
	if r.handlers.Analytics != nil {
		r.mux.HandleFunc("GET /api/analytics/zero-result-queries", r.handlers.Analytics.GetZeroResultQueries)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.opts.CacheMiddleware != nil {
		handler = r.opts.CacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.opts.Metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoverMiddleware(handler)
	handler = middleware.CORSMiddleware(r.opts.AllowedOrigins)(handler)

	return handler
}
