package database

import (
	"context"
	"fmt"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/billharmony/backend/internal/domain/repositories"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// CachedPreferenceAdapter wraps a PreferenceRepository with cache-aside reads
type CachedPreferenceAdapter struct {
	adapter repositories.PreferenceRepository
	cache   providers.CacheProvider
	ttl     int
	logger  zerolog.Logger
}

// NewCachedPreferenceAdapter creates a new cached preference adapter. ttlSeconds bounds staleness.
func NewCachedPreferenceAdapter(adapter repositories.PreferenceRepository, cache providers.CacheProvider, ttlSeconds int, logger zerolog.Logger) repositories.PreferenceRepository {
	return &CachedPreferenceAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
		logger:  logger.With().Str("component", "profile_cache").Logger(),
	}
}

func profileCacheKey(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

// GetByID serves from cache and fills it on a miss. Cache failures fall through to the store.
func (a *CachedPreferenceAdapter) GetByID(ctx context.Context, id string) (*entities.UserProfile, error) {
	key := profileCacheKey(id)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var profile entities.UserProfile
		if err := json.Unmarshal(cached, &profile); err == nil {
			return &profile, nil
		}
		a.logger.Warn().Err(err).Str("profile_id", id).Msg("discarding undecodable cached profile")
	}

	profile, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
			a.logger.Warn().Err(err).Str("profile_id", id).Msg("failed to cache profile")
		}
	}
	return profile, nil
}

// Upsert writes through to the store and evicts the cached copy
func (a *CachedPreferenceAdapter) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	if err := a.adapter.Upsert(ctx, profile); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, profileCacheKey(profile.ID)); err != nil {
		a.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("failed to evict cached profile")
	}
	return nil
}
