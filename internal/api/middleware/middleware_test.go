package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billharmony/backend/internal/adapters/cache"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestCacheMiddleware_CachesCatalogGets(t *testing.T) {
	calls := 0
	m := NewCacheMiddleware(cache.NewMemoryAdapter(), DefaultCacheRoutes(60), nil)
	h := m.Middleware(countingHandler(&calls, http.StatusOK, `{"count":2}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/procedures?b=2&a=1", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/procedures?a=1&b=2", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"count":2}`, rec.Body.String())
	assert.Equal(t, 1, calls, "query order does not change the key")
}

func TestCacheMiddleware_PrefixRoutes(t *testing.T) {
	m := NewCacheMiddleware(cache.NewMemoryAdapter(), DefaultCacheRoutes(60), nil)

	assert.True(t, m.getRouteConfig("/api/facilities/cedars").Enabled)
	assert.True(t, m.getRouteConfig("/api/insurers/aetna").Enabled)
	assert.False(t, m.getRouteConfig("/api/facilities/lookup").Enabled)
	assert.False(t, m.getRouteConfig("/api/profiles/p-1").Enabled)
}

func TestCacheMiddleware_GeocodeIsNeverCached(t *testing.T) {
	calls := 0
	m := NewCacheMiddleware(cache.NewMemoryAdapter(), DefaultCacheRoutes(60), nil)
	h := m.Middleware(countingHandler(&calls, http.StatusOK, `{"source":"fallback"}`))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode?location=Atlantis", nil))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls, "each geocode reaches the resolver")
}

func TestCacheMiddleware_SkipsNonGetAndErrors(t *testing.T) {
	calls := 0
	m := NewCacheMiddleware(cache.NewMemoryAdapter(), DefaultCacheRoutes(60), nil)

	failing := m.Middleware(countingHandler(&calls, http.StatusNotFound, `{"error":"facility not found"}`))
	for i := 0; i < 2; i++ {
		failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/facilities/ghost", nil))
	}
	assert.Equal(t, 2, calls, "error responses are not cached")

	calls = 0
	post := m.Middleware(countingHandler(&calls, http.StatusOK, `{}`))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		post.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/procedures", nil))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestCacheMiddleware_NilCachePassesThrough(t *testing.T) {
	calls := 0
	h := NewCacheMiddleware(nil, DefaultCacheRoutes(60), nil).Middleware(countingHandler(&calls, http.StatusOK, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/procedures", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/procedures", nil))
	assert.Equal(t, 2, calls)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36, "invalid ids are replaced with a uuid")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/procedures", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	calls := 0
	h := CORSMiddleware(ParseAllowedOrigins("https://billharmony.example, https://admin.example"))(countingHandler(&calls, http.StatusOK, `{}`))

	req := httptest.NewRequest(http.MethodOptions, "/api/ai-search", nil)
	req.Header.Set("Origin", "https://billharmony.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://billharmony.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, calls)

	req = httptest.NewRequest(http.MethodGet, "/api/procedures", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, calls)
}

func TestParseAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseAllowedOrigins(""))
	assert.Equal(t, []string{"a", "b"}, ParseAllowedOrigins(" a ,, b "))
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
