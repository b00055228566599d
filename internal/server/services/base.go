// Package services implements the satellite operations on top of the
// repositories: rule registry, document store, asset store and upload
// pipeline, controllers, settings, hooks and snapshots. Every operation runs
// as one unit of work through a dbx.Transactor.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/controllers"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/repomanager"
	"github.com/juju/clock"
)

// Store bundles what every service needs to run a unit of work.
type Store struct {
	Tx     dbx.Transactor
	Repos  repomanager.RepositoryManager
	Clock  clock.Clock
	Logger logging.Logger
}

func (s *Store) now() time.Time {
	return s.Clock.Now().UTC()
}

// roster answers controller lookups inside a unit of work.
type roster struct {
	repo controllers.Repository
	now  time.Time
}

func (r roster) get(ctx context.Context, principal string) (*models.Controller, error) {
	c, err := r.repo.Get(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if c.Expired(r.now) {
		return nil, nil
	}
	return c, nil
}

// IsController implements authz.Roster. Expired controllers do not count.
func (r roster) IsController(ctx context.Context, principal string) (bool, error) {
	c, err := r.get(ctx, principal)
	return c != nil, err
}

func (r roster) isAdmin(ctx context.Context, principal string) (bool, error) {
	if common.IsAnonymous(principal) {
		return false, nil
	}
	c, err := r.get(ctx, principal)
	if err != nil {
		return false, err
	}
	return c != nil && c.Scope == models.ControllerScopeAdmin, nil
}

func (s *Store) roster(db dbx.DBTX) roster {
	return roster{repo: s.Repos.Controllers(db), now: s.now()}
}

func (s *Store) caller(ctx context.Context, db dbx.DBTX, principal string) (authz.Caller, error) {
	return authz.ResolveCaller(ctx, s.roster(db), principal)
}

// requireAdmin fails with ErrPermissionDenied unless principal is an admin controller.
func (s *Store) requireAdmin(ctx context.Context, db dbx.DBTX, principal string) error {
	ok, err := s.roster(db).isAdmin(ctx, principal)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not an admin controller: %w", principal, common.ErrPermissionDenied)
	}
	return nil
}

// rule loads the rule of a collection, falling back to the system default.
func (s *Store) rule(ctx context.Context, db dbx.DBTX, kind models.RulesType, collection string) (models.Rule, error) {
	r, err := s.Repos.Rules(db).Get(ctx, kind, collection)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return authz.Default(kind, collection), nil
		}
		return models.Rule{}, err
	}
	return *r, nil
}

// checkVersion compares a caller supplied expected version with the stored
// one (0 when the record does not exist).
func checkVersion(expected *uint64, current uint64) error {
	if expected != nil && *expected != current {
		return fmt.Errorf("expected version %d, stored %d: %w", *expected, current, common.ErrVersionConflict)
	}
	return nil
}

// notFoundAsNil turns ErrorNotFound into a nil record.
func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return v, err
}
