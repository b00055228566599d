// Package docs persists documents of the document store.
package docs

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Repository stores documents keyed by (collection, key).
type Repository interface {
	// Get returns common.ErrorNotFound when the document does not exist.
	Get(ctx context.Context, collection, key string) (*models.Doc, error)
	// Upsert writes doc if the stored version equals prevVersion (0: absent).
	Upsert(ctx context.Context, doc *models.Doc, prevVersion uint64) error
	Delete(ctx context.Context, collection, key string, version uint64) error
	ListByCollection(ctx context.Context, collection string) ([]*models.Doc, error)
	CountByOwner(ctx context.Context, collection, owner string) (int, error)
	All(ctx context.Context) ([]*models.Doc, error)
}
