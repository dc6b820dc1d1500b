package repositories

import (
	"context"

	"github.com/billharmony/backend/internal/domain/entities"
)

// PreferenceRepository stores per-user search defaults
type PreferenceRepository interface {
	// GetByID returns a NOT_FOUND AppError when the profile does not exist
	GetByID(ctx context.Context, id string) (*entities.UserProfile, error)
	Upsert(ctx context.Context, profile *entities.UserProfile) error
}
