package repositories

import (
	"context"

	"github.com/billharmony/backend/internal/domain/entities"
)

// CatalogLoader reads the reference data once at process start
type CatalogLoader interface {
	Load(ctx context.Context) (*entities.ReferenceCatalog, error)
}

// CatalogWriter persists a reference catalog into a backing store
type CatalogWriter interface {
	Save(ctx context.Context, catalog *entities.ReferenceCatalog) error
}
