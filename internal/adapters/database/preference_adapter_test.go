package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billharmony/backend/internal/domain/entities"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{"id", "insurer_id", "plan_id", "zip_code", "city", "state", "created_at", "updated_at"}

func TestPreferenceAdapter_GetByID(t *testing.T) {
	client, mock := newMockClient(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "user_profiles" WHERE \("id" = 'u-1'\)`).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("u-1", "aetna", "aetna-gold", "90210", "", "", created, created))

	profile, err := NewPreferenceAdapter(client).GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, &entities.UserProfile{
		ID: "u-1", InsurerID: "aetna", PlanID: "aetna-gold", ZipCode: "90210",
		CreatedAt: created, UpdatedAt: created,
	}, profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceAdapter_GetByIDNotFound(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery(`SELECT .* FROM "user_profiles"`).WillReturnError(sql.ErrNoRows)

	_, err := NewPreferenceAdapter(client).GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPreferenceAdapter_Upsert(t *testing.T) {
	client, mock := newMockClient(t)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	adapter := NewPreferenceAdapter(client).(*PreferenceAdapter)
	adapter.now = func() time.Time { return now }

	mock.ExpectExec(`INSERT INTO "user_profiles" .* ON CONFLICT \(id\) DO UPDATE SET .*EXCLUDED\.insurer_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile := &entities.UserProfile{ID: "u-1", InsurerID: "bluecross", City: "Pasadena", State: "CA"}
	require.NoError(t, adapter.Upsert(context.Background(), profile))

	assert.Equal(t, now, profile.CreatedAt)
	assert.Equal(t, now, profile.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceAdapter_UpsertRequiresID(t *testing.T) {
	client, _ := newMockClient(t)

	err := NewPreferenceAdapter(client).Upsert(context.Background(), &entities.UserProfile{})
	assert.True(t, apperrors.IsValidation(err))
}
