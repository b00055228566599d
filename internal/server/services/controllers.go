package services

import (
	"context"
	"fmt"
	"maps"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// ControllerService manages the controller roster.
type ControllerService struct {
	*Store
}

// NewControllerService returns a ControllerService over store.
func NewControllerService(store *Store) *ControllerService {
	return &ControllerService{Store: store}
}

// Bootstrap registers ids as admin controllers unless they already exist.
// It runs without a caller and is meant for server startup.
func (s *ControllerService) Bootstrap(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		repo := s.Repos.Controllers(db)
		now := s.now()
		for _, id := range ids {
			if common.IsAnonymous(id) {
				return fmt.Errorf("anonymous principal cannot be a controller: %w", common.ErrInvalidInput)
			}
			existing, err := notFoundAsNil(repo.Get(ctx, id))
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			c := &models.Controller{ID: id, Scope: models.ControllerScopeAdmin, CreatedAt: now, UpdatedAt: now}
			if err := repo.Upsert(ctx, c); err != nil {
				return err
			}
			s.Logger.Info(ctx, "Bootstrapped admin controller", "id", id)
		}
		return nil
	})
}

// List returns every controller. Admin only.
func (s *ControllerService) List(ctx context.Context, principal string) ([]*models.Controller, error) {
	var out []*models.Controller
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		var err error
		out, err = s.Repos.Controllers(db).List(ctx)
		return err
	})
	return out, err
}

// Set adds or updates controllers. Admin only.
func (s *ControllerService) Set(ctx context.Context, principal string, ids []string, in models.SetController) ([]*models.Controller, error) {
	for _, id := range ids {
		if common.IsAnonymous(id) {
			return nil, fmt.Errorf("anonymous principal cannot be a controller: %w", common.ErrInvalidInput)
		}
	}

	var out []*models.Controller
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Controllers(db)
		current, err := repo.List(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]*models.Controller, len(current))
		scopes := make(map[string]models.ControllerScope, len(current)+len(ids))
		for _, c := range current {
			byID[c.ID] = c
			scopes[c.ID] = c.Scope
		}
		for _, id := range ids {
			scopes[id] = in.Scope
		}
		admins := 0
		for _, sc := range scopes {
			if sc == models.ControllerScopeAdmin {
				admins++
			}
		}
		if admins > common.MaxAdminControllers {
			return fmt.Errorf("at most %d admin controllers: %w", common.MaxAdminControllers, common.ErrInvalidInput)
		}

		now := s.now()
		for _, id := range ids {
			c := &models.Controller{
				ID:        id,
				Scope:     in.Scope,
				Metadata:  maps.Clone(in.Metadata),
				CreatedAt: now,
				UpdatedAt: now,
				ExpiresAt: in.ExpiresAt,
			}
			if existing, ok := byID[id]; ok {
				c.CreatedAt = existing.CreatedAt
			}
			if err := repo.Upsert(ctx, c); err != nil {
				return err
			}
		}
		out, err = repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info(ctx, "Controllers set", "count", len(ids), "scope", in.Scope.String())
	return out, nil
}

// Delete removes controllers. Admin only. Unknown ids are ignored.
func (s *ControllerService) Delete(ctx context.Context, principal string, ids []string) ([]*models.Controller, error) {
	var out []*models.Controller
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Controllers(db)
		for _, id := range ids {
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
		}
		var err error
		out, err = repo.List(ctx)
		return err
	})
	return out, err
}

// IsController reports whether principal is a live controller.
func (s *ControllerService) IsController(ctx context.Context, principal string) (bool, error) {
	var ok bool
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		ok, err = s.roster(db).IsController(ctx, principal)
		return err
	})
	return ok, err
}
