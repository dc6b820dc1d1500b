package services

import (
	"context"
	"sync"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/rs/zerolog"
)

const analyticsWriteTimeout = 5 * time.Second

type SearchAnalyticsService struct {
	repo   repositories.SearchAnalyticsRepository
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewSearchAnalyticsService creates the analytics recorder. A nil repo disables recording.
func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository, logger zerolog.Logger) *SearchAnalyticsService {
	return &SearchAnalyticsService{
		repo:   repo,
		logger: logger.With().Str("component", "search_analytics").Logger(),
	}
}

// TrackSearch stores the event on a background goroutine so the response is not delayed
func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	if s == nil || s.repo == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The request context may be cancelled before the write finishes.
		bgCtx, cancel := context.WithTimeout(context.Background(), analyticsWriteTimeout)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			s.logger.Warn().Err(err).Str("query", event.Query).Msg("failed to log search event")
		}
	}()
}

// Wait blocks until pending writes finish
func (s *SearchAnalyticsService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *SearchAnalyticsService) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if s == nil || s.repo == nil {
		return []*entities.SearchEvent{}, nil
	}
	return s.repo.GetZeroResultQueries(ctx, limit)
}
