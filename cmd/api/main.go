package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/billharmony/backend/internal/adapters/cache"
	"github.com/billharmony/backend/internal/adapters/catalog"
	"github.com/billharmony/backend/internal/adapters/database"
	"github.com/billharmony/backend/internal/adapters/providers/geolocation"
	"github.com/billharmony/backend/internal/adapters/search"
	"github.com/billharmony/backend/internal/api/handlers"
	"github.com/billharmony/backend/internal/api/middleware"
	"github.com/billharmony/backend/internal/api/routes"
	"github.com/billharmony/backend/internal/application/services"
	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	"github.com/billharmony/backend/internal/infrastructure/clients/redis"
	"github.com/billharmony/backend/internal/infrastructure/clients/typesense"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/circuitbreaker"
	"github.com/billharmony/backend/pkg/config"
	"github.com/billharmony/backend/pkg/secrets"
	"github.com/rs/zerolog/log"
)

func main() {
	if res, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	} else if res.Enabled {
		log.Info().Str("path", res.Path).Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("secrets loaded from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment, cfg.LogLevel)
	logger := log.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	httpMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	domainMetrics := observability.NewDomainMetrics()

	// Postgres backs the catalog (optionally), profiles and search analytics.
	// The API still serves searches from the JSON catalog without it.
	var pgClient *postgres.Client
	if cfg.Catalog.Source == config.CatalogSourcePostgres || cfg.Features.SearchAnalytics {
		pgClient, err = postgres.NewClient(&cfg.Database)
		if err != nil {
			if cfg.Catalog.Source == config.CatalogSourcePostgres {
				log.Fatal().Err(err).Msg("catalog source is postgres but the database is unreachable")
			}
			log.Warn().Err(err).Msg("PostgreSQL unavailable; profiles and search analytics disabled")
			pgClient = nil
		} else {
			defer pgClient.Close()
			if err := pgClient.EnsureSchema(ctx); err != nil {
				log.Fatal().Err(err).Msg("failed to apply database schema")
			}
		}
	}

	var loader repositories.CatalogLoader
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		loader = database.NewCatalogAdapter(pgClient, logger)
	} else {
		loader = catalog.NewJSONLoader(cfg.Catalog.DataDir, logger)
	}
	refCatalog, err := loader.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("failed to load reference catalog")
	}
	log.Info().
		Str("source", cfg.Catalog.Source).
		Int("procedures", len(refCatalog.Procedures())).
		Int("insurers", len(refCatalog.Insurers())).
		Int("facilities", len(refCatalog.Facilities())).
		Msg("reference catalog loaded")

	var cacheProvider providers.CacheProvider
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable; using in-process cache")
			cacheProvider = cache.NewMemoryAdapter()
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, "billharmony:")
		}
	}

	flags := services.NewFeatureFlags(cfg.Features)

	var preferences repositories.PreferenceRepository
	var analytics *services.SearchAnalyticsService
	if pgClient != nil {
		preferences = database.NewPreferenceAdapter(pgClient)
		if cacheProvider != nil {
			preferences = database.NewCachedPreferenceAdapter(preferences, cacheProvider, cfg.Cache.ProfileTTLSeconds, logger)
		}
		analytics = services.NewSearchAnalyticsService(database.NewSearchAnalyticsAdapter(pgClient), logger)
	}

	var facilityIndex repositories.FacilityIndex
	var breaker *circuitbreaker.CircuitBreaker
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; facility lookup scans the catalog")
		} else {
			facilityIndex = search.NewTypesenseAdapter(tsClient, logger)
			breaker, err = circuitbreaker.New(circuitbreaker.DefaultConfig("typesense"), logger)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create circuit breaker")
			}
		}
	}

	resolver := geolocation.NewTableResolver(
		refCatalog,
		geolocation.DefaultKnownPlaces(),
		cfg.Location.FallbackLabel,
		entities.Location{Latitude: cfg.Location.FallbackLatitude, Longitude: cfg.Location.FallbackLongitude},
		logger,
	)

	searchService := services.NewPriceSearchService(services.PriceSearchDeps{
		Catalog:     refCatalog,
		Resolver:    resolver,
		Preferences: preferences,
		Analytics:   analytics,
		Flags:       flags,
		Metrics:     domainMetrics,
		Logger:      logger,
	})
	eligibilityService := services.NewEligibilityService(refCatalog, nil, domainMetrics)
	lookupService := services.NewFacilityLookupService(refCatalog, facilityIndex, breaker, flags, domainMetrics, logger)

	h := routes.Handlers{
		Search:      handlers.NewSearchHandler(searchService),
		Eligibility: handlers.NewEligibilityHandler(eligibilityService),
		Catalog:     handlers.NewCatalogHandler(refCatalog, lookupService),
		Geolocation: handlers.NewGeolocationHandler(resolver),
	}
	if preferences != nil {
		h.Profile = handlers.NewProfileHandler(preferences, refCatalog)
	}
	if analytics != nil {
		h.Analytics = handlers.NewAnalyticsHandler(analytics)
	}

	opts := routes.Options{
		AllowedOrigins: middleware.ParseAllowedOrigins(cfg.Server.AllowedOrigins),
		Metrics:        httpMetrics,
		MetricsPath:    cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		opts.DomainMetrics = domainMetrics
	}
	if cacheProvider != nil {
		opts.CacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, middleware.DefaultCacheRoutes(cfg.Cache.CatalogTTLSeconds), httpMetrics)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      routes.NewRouter(h, opts).SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Flush analytics writes started by in-flight requests.
	analytics.Wait()

	log.Info().Msg("server stopped")
}
