package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/timex"
)

// DocService is the document store.
type DocService struct {
	*Store
	hooks *Hooks
}

// NewDocService returns a DocService. hooks may be nil.
func NewDocService(store *Store, hooks *Hooks) *DocService {
	return &DocService{Store: store, hooks: hooks}
}

// DocRef addresses one document.
type DocRef struct {
	Collection string
	Key        string
}

// SetDocItem is one entry of SetMany.
type SetDocItem struct {
	Collection string
	Key        string
	Doc        models.SetDoc
}

// DelDocItem is one entry of DeleteMany.
type DelDocItem struct {
	Collection string
	Key        string
	Doc        models.DelDoc
}

func validRef(collection, key string) error {
	if collection == "" || key == "" {
		return fmt.Errorf("collection and key are required: %w", common.ErrInvalidInput)
	}
	return nil
}

// Set creates or updates a document.
func (s *DocService) Set(ctx context.Context, principal, collection, key string, in models.SetDoc) (*models.DocContext, error) {
	if err := validRef(collection, key); err != nil {
		return nil, err
	}

	var out *models.DocContext
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesDB, collection)
		if err != nil {
			return err
		}
		repo := s.Repos.Docs(db)
		existing, err := notFoundAsNil(repo.Get(ctx, collection, key))
		if err != nil {
			return err
		}

		subject := authz.DocSubject(existing)
		op := authz.WriteOp(subject)
		if err := authz.Check(caller, rule, op, subject); err != nil {
			return err
		}

		var prev uint64
		if existing != nil {
			prev = existing.Version
		}
		if err := checkVersion(in.Version, prev); err != nil {
			return err
		}
		if op == authz.OpCreate && rule.MaxChangesPerUser != nil {
			owned, err := repo.CountByOwner(ctx, collection, caller.Principal)
			if err != nil {
				return err
			}
			if err := authz.CheckMaxChanges(caller, rule, op, owned); err != nil {
				return err
			}
		}
		if err := authz.CheckSize(rule, uint64(len(in.Data))); err != nil {
			return err
		}

		now := s.now()
		next := &models.Doc{
			Collection:  collection,
			Key:         key,
			Owner:       authz.OwnerFor(caller, subject),
			Data:        slices.Clone(in.Data),
			Description: in.Description,
			Delegates:   slices.Clone(in.Delegates),
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     prev + 1,
		}
		if existing != nil {
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = timex.Later(existing.UpdatedAt, now)
			// Only the owner or a controller may change who else has access.
			if !caller.Controller && caller.Principal != existing.Owner {
				next.Delegates = existing.Delegates
			}
		}

		if err := repo.Upsert(ctx, next, prev); err != nil {
			return err
		}
		out = &models.DocContext{Collection: collection, Key: key, Before: existing, After: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hooks.Dispatch(ctx, Event{Kind: EventDocSet, Caller: principal, Doc: out})
	return out, nil
}

// Get returns a document, or nil when it does not exist. A denied read is an
// error, distinct from absence.
func (s *DocService) Get(ctx context.Context, principal, collection, key string) (*models.Doc, error) {
	var out *models.Doc
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		out, err = s.get(ctx, db, principal, collection, key)
		return err
	})
	return out, err
}

func (s *DocService) get(ctx context.Context, db dbx.DBTX, principal, collection, key string) (*models.Doc, error) {
	caller, err := s.caller(ctx, db, principal)
	if err != nil {
		return nil, err
	}
	rule, err := s.rule(ctx, db, models.RulesDB, collection)
	if err != nil {
		return nil, err
	}
	doc, err := notFoundAsNil(s.Repos.Docs(db).Get(ctx, collection, key))
	if err != nil {
		return nil, err
	}
	if err := authz.Check(caller, rule, authz.OpRead, authz.DocSubject(doc)); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and returns it, or nil when it never existed.
func (s *DocService) Delete(ctx context.Context, principal, collection, key string, in models.DelDoc) (*models.Doc, error) {
	var out *models.Doc
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesDB, collection)
		if err != nil {
			return err
		}
		repo := s.Repos.Docs(db)
		existing, err := notFoundAsNil(repo.Get(ctx, collection, key))
		if err != nil {
			return err
		}
		if err := authz.Check(caller, rule, authz.OpDelete, authz.DocSubject(existing)); err != nil {
			return err
		}
		var current uint64
		if existing != nil {
			current = existing.Version
		}
		if err := checkVersion(in.Version, current); err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if err := repo.Delete(ctx, collection, key, existing.Version); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil || out == nil {
		return nil, err
	}

	s.hooks.Dispatch(ctx, Event{Kind: EventDocDeleted, Caller: principal,
		Doc: &models.DocContext{Collection: collection, Key: key, Before: out}})
	return out, nil
}

// readable loads the documents of a collection the caller may read.
func (s *DocService) readable(ctx context.Context, db dbx.DBTX, principal, collection string) ([]*models.Doc, error) {
	caller, err := s.caller(ctx, db, principal)
	if err != nil {
		return nil, err
	}
	rule, err := s.rule(ctx, db, models.RulesDB, collection)
	if err != nil {
		return nil, err
	}
	all, err := s.Repos.Docs(db).ListByCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, d := range all {
		if authz.CanRead(caller, rule, authz.DocSubject(d)) {
			out = append(out, d)
		}
	}
	return out, nil
}

// List returns one page of the readable documents matching params.
func (s *DocService) List(ctx context.Context, principal, collection string, params models.ListParams) (models.ListResults[*models.Doc], error) {
	var res models.ListResults[*models.Doc]
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		docs, err := s.readable(ctx, db, principal, collection)
		if err != nil {
			return err
		}
		res, err = paginate(docs, params)
		return err
	})
	return res, err
}

// Count returns how many readable documents match params, ignoring pagination.
func (s *DocService) Count(ctx context.Context, principal, collection string, params models.ListParams) (int, error) {
	params.Paginate = nil
	res, err := s.List(ctx, principal, collection, params)
	if err != nil {
		return 0, err
	}
	return res.MatchesLength, nil
}

// GetMany reads several documents; the result is aligned with refs. The
// first error aborts the call.
func (s *DocService) GetMany(ctx context.Context, principal string, refs []DocRef) ([]*models.Doc, error) {
	out := make([]*models.Doc, 0, len(refs))
	for i, r := range refs {
		d, err := s.Get(ctx, principal, r.Collection, r.Key)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// SetMany writes documents one unit of work at a time. The first failure
// aborts the remaining items; items already written stay written.
func (s *DocService) SetMany(ctx context.Context, principal string, items []SetDocItem) ([]*models.DocContext, error) {
	out := make([]*models.DocContext, 0, len(items))
	for i, it := range items {
		c, err := s.Set(ctx, principal, it.Collection, it.Key, it.Doc)
		if err != nil {
			return out, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// DeleteMany deletes documents with the same policy as SetMany.
func (s *DocService) DeleteMany(ctx context.Context, principal string, items []DelDocItem) error {
	for i, it := range items {
		if _, err := s.Delete(ctx, principal, it.Collection, it.Key, it.Doc); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// DeleteAll empties a collection. Admin only.
func (s *DocService) DeleteAll(ctx context.Context, principal, collection string) (int, error) {
	var removed []*models.Doc
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Docs(db)
		all, err := repo.ListByCollection(ctx, collection)
		if err != nil {
			return err
		}
		for _, d := range all {
			if err := repo.Delete(ctx, collection, d.Key, d.Version); err != nil {
				return err
			}
		}
		removed = all
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, d := range removed {
		s.hooks.Dispatch(ctx, Event{Kind: EventDocDeleted, Caller: principal,
			Doc: &models.DocContext{Collection: collection, Key: d.Key, Before: d}})
	}
	return len(removed), nil
}
