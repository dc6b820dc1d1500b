package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
)

const tableUserProfiles = "user_profiles"

// PreferenceAdapter implements PreferenceRepository
type PreferenceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	now    func() time.Time
}

// NewPreferenceAdapter creates a new preference adapter
func NewPreferenceAdapter(client *postgres.Client) repositories.PreferenceRepository {
	return &PreferenceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		now:    time.Now,
	}
}

// GetByID retrieves a saved profile
func (a *PreferenceAdapter) GetByID(ctx context.Context, id string) (*entities.UserProfile, error) {
	query, args, err := a.db.Select(
		"id", "insurer_id", "plan_id", "zip_code", "city", "state", "created_at", "updated_at",
	).From(tableUserProfiles).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.UserProfile{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.InsurerID,
		&profile.PlanID,
		&profile.ZipCode,
		&profile.City,
		&profile.State,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profile", err)
	}

	return profile, nil
}

// Upsert inserts the profile or overwrites its saved defaults
func (a *PreferenceAdapter) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	if profile.ID == "" {
		return apperrors.NewFieldValidationError("id", "profile id is required")
	}
	now := a.now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	record := goqu.Record{
		"id":         profile.ID,
		"insurer_id": profile.InsurerID,
		"plan_id":    profile.PlanID,
		"zip_code":   profile.ZipCode,
		"city":       profile.City,
		"state":      profile.State,
		"created_at": profile.CreatedAt,
		"updated_at": profile.UpdatedAt,
	}

	query, args, err := a.db.Insert(tableUserProfiles).
		Rows(record).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"insurer_id": goqu.L("EXCLUDED.insurer_id"),
			"plan_id":    goqu.L("EXCLUDED.plan_id"),
			"zip_code":   goqu.L("EXCLUDED.zip_code"),
			"city":       goqu.L("EXCLUDED.city"),
			"state":      goqu.L("EXCLUDED.state"),
			"updated_at": goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save profile", err)
	}
	return nil
}
