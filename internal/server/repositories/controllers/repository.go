// Package controllers persists the controller roster.
package controllers

import (
	"context"

	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// Repository stores controllers keyed by principal.
type Repository interface {
	// Get returns common.ErrorNotFound for unknown principals.
	Get(ctx context.Context, id string) (*models.Controller, error)
	List(ctx context.Context) ([]*models.Controller, error)
	Upsert(ctx context.Context, c *models.Controller) error
	Delete(ctx context.Context, id string) error
}
