// Package rules persists collection rules.
package rules

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Repository stores rules keyed by (kind, collection).
type Repository interface {
	// Get returns common.ErrorNotFound when no rule is stored.
	Get(ctx context.Context, kind models.RulesType, collection string) (*models.Rule, error)
	List(ctx context.Context, kind models.RulesType) ([]*models.Rule, error)
	// Upsert writes rule if the stored version equals prevVersion (0: absent).
	Upsert(ctx context.Context, rule *models.Rule, prevVersion uint64) error
	Delete(ctx context.Context, kind models.RulesType, collection string, version uint64) error
}
