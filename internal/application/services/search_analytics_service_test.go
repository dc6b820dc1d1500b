package services

import (
	"context"
	"errors"
	"testing"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchAnalyticsRepository struct {
	mock.Mock
}

func (m *MockSearchAnalyticsRepository) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSearchAnalyticsRepository) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SearchEvent), args.Error(1)
}

func TestSearchAnalyticsService_TrackSearchOutlivesRequestContext(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	event := &entities.SearchEvent{ID: "evt-1", Query: "MRI near 90210"}
	repo.On("LogEvent", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), event).Return(nil).Once()

	svc := NewSearchAnalyticsService(repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.TrackSearch(ctx, event)
	svc.Wait()

	repo.AssertExpectations(t)
}

func TestSearchAnalyticsService_WriteErrorIsSwallowed(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	repo.On("LogEvent", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	svc := NewSearchAnalyticsService(repo, zerolog.Nop())
	assert.NotPanics(t, func() {
		svc.TrackSearch(context.Background(), &entities.SearchEvent{Query: "x-ray"})
		svc.Wait()
	})
	repo.AssertExpectations(t)
}

func TestSearchAnalyticsService_GetZeroResultQueries(t *testing.T) {
	repo := new(MockSearchAnalyticsRepository)
	want := []*entities.SearchEvent{{ID: "evt-2", Query: "dental cleaning in Fresno"}}
	repo.On("GetZeroResultQueries", mock.Anything, 25).Return(want, nil).Once()

	got, err := NewSearchAnalyticsService(repo, zerolog.Nop()).GetZeroResultQueries(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSearchAnalyticsService_NilIsDisabled(t *testing.T) {
	var svc *SearchAnalyticsService

	assert.NotPanics(t, func() {
		svc.TrackSearch(context.Background(), &entities.SearchEvent{})
		svc.Wait()
	})
	got, err := svc.GetZeroResultQueries(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	withoutRepo := NewSearchAnalyticsService(nil, zerolog.Nop())
	withoutRepo.TrackSearch(context.Background(), &entities.SearchEvent{})
	withoutRepo.Wait()
}
