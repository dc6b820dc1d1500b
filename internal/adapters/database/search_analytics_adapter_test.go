package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billharmony/backend/internal/domain/entities"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchAnalyticsAdapter_LogEvent(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec(`INSERT INTO search_events`).
		WithArgs(
			sqlmock.AnyArg(), "mri near 90210", sqlmock.AnyArg(), "aetna", "", "90210", "zip_table", 100.0,
			false, false, 3, 12, 34.0736, -118.4004, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &entities.SearchEvent{
		Query:          "mri near 90210",
		Procedures:     []string{"MRI"},
		InsurerID:      "aetna",
		LocationToken:  "90210",
		LocationSource: "zip_table",
		RadiusMiles:    100,
		ResultCount:    3,
		LatencyMs:      12,
		UserLatitude:   34.0736,
		UserLongitude:  -118.4004,
	}
	require.NoError(t, NewSearchAnalyticsAdapter(client).LogEvent(context.Background(), event))

	assert.NotEmpty(t, event.ID, "id assigned")
	assert.False(t, event.CreatedAt.IsZero(), "timestamp assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_LogEventError(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec(`INSERT INTO search_events`).WillReturnError(errors.New("disk full"))

	err := NewSearchAnalyticsAdapter(client).LogEvent(context.Background(), &entities.SearchEvent{Query: "x"})
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestSearchAnalyticsAdapter_GetZeroResultQueries(t *testing.T) {
	client, mock := newMockClient(t)
	at := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM search_events\s+WHERE result_count = 0`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "query", "procedures", "insurer_id", "plan_id", "location_token", "location_source", "radius_miles",
			"cash_only", "missing_info", "result_count", "latency_ms", "user_latitude", "user_longitude", "created_at",
		}).AddRow("e-1", "pet scan in fresno", "{MRI,\"CT Scan\"}", "", "", "Fresno", "fallback", 100.0,
			true, false, 0, 4, 34.0736, -118.4004, at))

	events, err := NewSearchAnalyticsAdapter(client).GetZeroResultQueries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "pet scan in fresno", events[0].Query)
	assert.Equal(t, []string{"MRI", "CT Scan"}, events[0].Procedures)
	assert.Equal(t, "fallback", events[0].LocationSource)
	assert.True(t, events[0].CashOnly)
	assert.Equal(t, at, events[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
