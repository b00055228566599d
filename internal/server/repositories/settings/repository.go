// Package settings persists the hosting configuration and custom domains.
package settings

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Repository stores the singleton storage config and the custom domains.
type Repository interface {
	// GetConfig returns an empty config when none was stored.
	GetConfig(ctx context.Context) (*models.StorageConfig, error)
	SetConfig(ctx context.Context, cfg *models.StorageConfig) error
	// GetCustomDomain returns common.ErrorNotFound for unknown domains.
	GetCustomDomain(ctx context.Context, domain string) (*models.CustomDomain, error)
	ListCustomDomains(ctx context.Context) ([]*models.CustomDomain, error)
	SetCustomDomain(ctx context.Context, d *models.CustomDomain) error
	DeleteCustomDomain(ctx context.Context, domain string) error
}
