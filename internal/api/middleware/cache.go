package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/billharmony/backend/internal/infrastructure/observability"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// DefaultCacheRoutes caches the read-only catalog endpoints. Keys ending in "/" match by prefix.
func DefaultCacheRoutes(catalogTTLSeconds int) map[string]CacheConfig {
	catalog := CacheConfig{TTLSeconds: catalogTTLSeconds, Enabled: catalogTTLSeconds > 0}
	return map[string]CacheConfig{
		"/api/procedures":  catalog,
		"/api/insurers":    catalog,
		"/api/insurers/":   catalog,
		"/api/facilities/": catalog,
		// Lookups depend on index state and the breaker, so they are never cached.
		"/api/facilities/lookup": {Enabled: false},
		// Every geocode must reach the resolver so fallbacks are logged.
		"/api/geocode": {Enabled: false},
	}
}

// CacheMiddleware provides HTTP response caching for GET requests
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
	prefixes     []string
	metrics      *observability.Metrics
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider, routes map[string]CacheConfig, metrics *observability.Metrics) *CacheMiddleware {
	m := &CacheMiddleware{
		cache:        cache,
		routeConfigs: routes,
		metrics:      metrics,
	}
	for pattern := range routes {
		if strings.HasSuffix(pattern, "/") {
			m.prefixes = append(m.prefixes, pattern)
		}
	}
	// Longest prefix wins.
	sort.Slice(m.prefixes, func(i, j int) bool { return len(m.prefixes[i]) > len(m.prefixes[j]) })
	return m
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := generateCacheKey(r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, r.URL.Path)
			logger.Debug().Str("key", cacheKey).Msg("response cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, r.URL.Path)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

// getRouteConfig gets the cache configuration for a route
func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	if config, exists := m.routeConfigs[path]; exists {
		return config
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(path, prefix) {
			return m.routeConfigs[prefix]
		}
	}
	return CacheConfig{Enabled: false}
}

// generateCacheKey hashes method, path and sorted query parameters
func generateCacheKey(r *http.Request) string {
	key := r.Method + ":" + r.URL.Path
	if q := r.URL.Query(); len(q) > 0 {
		key += "?" + q.Encode()
	}

	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
