package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/timex"
)

// RuleService is the rule registry.
type RuleService struct {
	*Store
}

// NewRuleService returns a RuleService over store.
func NewRuleService(store *Store) *RuleService {
	return &RuleService{Store: store}
}

func validKind(kind models.RulesType) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown rules type %q: %w", kind, common.ErrInvalidInput)
	}
	return nil
}

// GetRule returns the effective rule of a collection.
func (s *RuleService) GetRule(ctx context.Context, kind models.RulesType, collection string) (models.Rule, error) {
	if err := validKind(kind); err != nil {
		return models.Rule{}, err
	}
	var rule models.Rule
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		rule, err = s.rule(ctx, db, kind, collection)
		return err
	})
	return rule, err
}

// ListRules returns the stored rules of kind. Admin only.
func (s *RuleService) ListRules(ctx context.Context, principal string, kind models.RulesType) ([]*models.Rule, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	var out []*models.Rule
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		var err error
		out, err = s.Repos.Rules(db).List(ctx, kind)
		return err
	})
	return out, err
}

// SetRule creates or replaces the rule of a collection. Admin only.
func (s *RuleService) SetRule(ctx context.Context, principal string, kind models.RulesType, collection string, in models.SetRule) (*models.Rule, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	if collection == "" {
		return nil, fmt.Errorf("empty collection: %w", common.ErrInvalidInput)
	}

	var out *models.Rule
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Rules(db)
		current, err := notFoundAsNil(repo.Get(ctx, kind, collection))
		if err != nil {
			return err
		}

		var prev uint64
		next := models.Rule{Kind: kind, Collection: collection}
		now := s.now()
		if current != nil {
			prev = current.Version
			if !current.MutablePermissions && (in.Read != current.Read || in.Write != current.Write) {
				return fmt.Errorf("permissions of %q are immutable: %w", collection, common.ErrInvalidInput)
			}
			next.CreatedAt = current.CreatedAt
			next.UpdatedAt = timex.Later(current.UpdatedAt, now)
		} else {
			next.CreatedAt = now
			next.UpdatedAt = now
		}
		if err := checkVersion(in.Version, prev); err != nil {
			return err
		}

		next.Read = in.Read
		next.Write = in.Write
		next.MaxSize = in.MaxSize
		next.MaxChangesPerUser = in.MaxChangesPerUser
		next.MutablePermissions = in.MutablePermissions == nil || *in.MutablePermissions
		next.Version = prev + 1

		if err := repo.Upsert(ctx, &next, prev); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info(ctx, "Rule set", "kind", string(kind), "collection", collection, "version", out.Version)
	return out, nil
}

// DelRule removes a stored rule; the collection falls back to the default.
func (s *RuleService) DelRule(ctx context.Context, principal string, kind models.RulesType, collection string, version *uint64) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Rules(db)
		current, err := repo.Get(ctx, kind, collection)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("rule %s/%s: %w", kind, collection, common.ErrorNotFound)
			}
			return err
		}
		if err := checkVersion(version, current.Version); err != nil {
			return err
		}
		return repo.Delete(ctx, kind, collection, current.Version)
	})
}
