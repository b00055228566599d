// Package assets persists asset metadata. Chunk bytes live in the blob store.
package assets

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Repository stores assets keyed by (collection, full path).
type Repository interface {
	// Get returns common.ErrorNotFound when the asset does not exist.
	Get(ctx context.Context, collection, fullPath string) (*models.Asset, error)
	// Upsert writes asset if the stored version equals prevVersion (0: absent).
	Upsert(ctx context.Context, asset *models.Asset, prevVersion uint64) error
	Delete(ctx context.Context, collection, fullPath string, version uint64) error
	ListByCollection(ctx context.Context, collection string) ([]*models.Asset, error)
	CountByOwner(ctx context.Context, collection, owner string) (int, error)
	All(ctx context.Context) ([]*models.Asset, error)
}
