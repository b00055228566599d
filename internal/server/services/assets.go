package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/satellite/internal/chunkx"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/server/uploads"
	"github.com/dmitrijs2005/satellite/internal/timex"
)

// AssetOptions tunes the upload pipeline.
type AssetOptions struct {
	// MaxChunkSize bounds generated encoding blocks.
	MaxChunkSize int
	// GenerateGzip derives a gzip encoding from every identity commit.
	GenerateGzip bool
}

// AssetService is the asset store and its upload pipeline.
type AssetService struct {
	*Store
	arena *uploads.Arena
	blobs blobstore.Store
	hooks *Hooks
	opts  AssetOptions
}

// NewAssetService returns an AssetService. hooks may be nil.
func NewAssetService(store *Store, arena *uploads.Arena, blobs blobstore.Store, hooks *Hooks, opts AssetOptions) *AssetService {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = common.DefaultMaxChunkSize
	}
	return &AssetService{Store: store, arena: arena, blobs: blobs, hooks: hooks, opts: opts}
}

// AssetRef addresses one asset.
type AssetRef struct {
	Collection string
	FullPath   string
}

// DelAssetItem is one entry of DeleteMany.
type DelAssetItem struct {
	Collection string
	FullPath   string
	Asset      models.DelAsset
}

func normalizeInit(in models.InitAssetKey) (models.InitAssetKey, error) {
	if in.Collection == "" {
		return in, fmt.Errorf("empty collection: %w", common.ErrInvalidInput)
	}
	if !strings.HasPrefix(in.FullPath, "/") {
		return in, fmt.Errorf("full path %q must start with /: %w", in.FullPath, common.ErrInvalidInput)
	}
	if in.EncodingType == "" {
		in.EncodingType = models.EncodingIdentity
	}
	if !models.ValidEncoding(in.EncodingType) {
		return in, fmt.Errorf("unknown encoding %q: %w", in.EncodingType, common.ErrInvalidInput)
	}
	if in.Name == "" {
		in.Name = path.Base(in.FullPath)
	}
	return in, nil
}

// authorizeWrite runs the create/update checks for the asset at
// (collection, fullPath) and returns the caller, rule and stored asset.
func (s *AssetService) authorizeWrite(ctx context.Context, db dbx.DBTX, principal, collection, fullPath string) (authz.Caller, models.Rule, *models.Asset, error) {
	caller, err := s.caller(ctx, db, principal)
	if err != nil {
		return caller, models.Rule{}, nil, err
	}
	rule, err := s.rule(ctx, db, models.RulesStorage, collection)
	if err != nil {
		return caller, rule, nil, err
	}
	repo := s.Repos.Assets(db)
	existing, err := notFoundAsNil(repo.Get(ctx, collection, fullPath))
	if err != nil {
		return caller, rule, nil, err
	}
	subject := authz.AssetSubject(existing)
	op := authz.WriteOp(subject)
	if err := authz.Check(caller, rule, op, subject); err != nil {
		return caller, rule, nil, err
	}
	if op == authz.OpCreate && rule.MaxChangesPerUser != nil {
		owned, err := repo.CountByOwner(ctx, collection, caller.Principal)
		if err != nil {
			return caller, rule, nil, err
		}
		if err := authz.CheckMaxChanges(caller, rule, op, owned); err != nil {
			return caller, rule, nil, err
		}
	}
	return caller, rule, existing, nil
}

// InitUpload opens an upload batch for an asset.
func (s *AssetService) InitUpload(ctx context.Context, principal string, in models.InitAssetKey) (*uploads.Batch, error) {
	in, err := normalizeInit(in)
	if err != nil {
		return nil, err
	}
	var batch *uploads.Batch
	err = s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, _, _, err := s.authorizeWrite(ctx, db, principal, in.Collection, in.FullPath)
		if err != nil {
			return err
		}
		batch = s.arena.Create(in, caller.Principal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Debug(ctx, "Upload started", "batch", batch.ID, "collection", in.Collection, "path", in.FullPath)
	return batch, nil
}

// UploadChunk stages one block of a batch.
func (s *AssetService) UploadChunk(ctx context.Context, principal string, in models.UploadChunk) (string, error) {
	var caller authz.Caller
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		caller, err = s.caller(ctx, db, principal)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.arena.Append(caller.Principal, caller.Controller, in)
}

// CommitUpload turns a batch into an encoding of its asset.
func (s *AssetService) CommitUpload(ctx context.Context, principal string, in models.CommitBatch) (*models.Asset, error) {
	var (
		out        *models.AssetContext
		written    []string
		superseded []string
	)
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		batch, chunks, err := s.arena.Collect(in.BatchID, in.ChunkIDs)
		if err != nil {
			return err
		}
		key := batch.Key

		caller, rule, existing, err := s.authorizeWrite(ctx, db, principal, key.Collection, key.FullPath)
		if err != nil {
			return err
		}
		if batch.Owner != caller.Principal && !caller.Controller {
			return fmt.Errorf("batch %s: %w", batch.ID, common.ErrPermissionDenied)
		}

		var total uint64
		for _, c := range chunks {
			total += uint64(len(c.Content))
		}
		if err := authz.CheckSize(rule, total); err != nil {
			s.arena.Discard(batch.ID)
			return err
		}

		now := s.now()
		body := make([]byte, 0, total)
		enc := models.AssetEncoding{ModifiedAt: now, TotalLength: total}
		for i, c := range chunks {
			k := blobstore.ChunkKey(batch.ID, i)
			if err := s.blobs.Put(ctx, k, c.Content); err != nil {
				return fmt.Errorf("store chunk %d: %w", i, err)
			}
			written = append(written, k)
			enc.ContentChunks = append(enc.ContentChunks, k)
			enc.ChunkLengths = append(enc.ChunkLengths, uint64(len(c.Content)))
			body = append(body, c.Content...)
		}
		enc.Sha256 = sha256.Sum256(body)

		encodings := map[string]models.AssetEncoding{}
		if existing != nil {
			encodings = maps.Clone(existing.Encodings)
		}
		replace := func(t string, e models.AssetEncoding) {
			if old, ok := encodings[t]; ok {
				superseded = append(superseded, old.ContentChunks...)
			}
			encodings[t] = e
		}
		replace(key.EncodingType, enc)

		if s.opts.GenerateGzip && key.EncodingType == models.EncodingIdentity {
			gz, keys, err := s.gzipEncoding(ctx, batch.ID, body, now)
			written = append(written, keys...)
			if err != nil {
				return err
			}
			replace(models.EncodingGzip, gz)
		}

		next := &models.Asset{
			Key: models.AssetKey{
				Collection:  key.Collection,
				FullPath:    key.FullPath,
				Name:        key.Name,
				Owner:       authz.OwnerFor(caller, authz.AssetSubject(existing)),
				Token:       key.Token,
				Description: key.Description,
			},
			Headers:   slices.Clone(in.Headers),
			Encodings: encodings,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		}
		var prev uint64
		if existing != nil {
			prev = existing.Version
			next.Delegates = existing.Delegates
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = timex.Later(existing.UpdatedAt, now)
			next.Version = prev + 1
		}
		if err := s.Repos.Assets(db).Upsert(ctx, next, prev); err != nil {
			return err
		}
		out = &models.AssetContext{Collection: key.Collection, FullPath: key.FullPath, Before: existing, After: next}
		return nil
	})
	if err != nil {
		s.deleteBlobs(ctx, written)
		return nil, err
	}

	s.arena.Discard(in.BatchID)
	s.deleteBlobs(ctx, superseded)
	s.Logger.Info(ctx, "Asset committed", "collection", out.Collection, "path", out.FullPath, "version", out.After.Version)
	s.hooks.Dispatch(ctx, Event{Kind: EventAssetCommitted, Caller: principal, Asset: out})
	return out.After, nil
}

// gzipEncoding stores the gzip form of body and returns its encoding along
// with every blob key it wrote.
func (s *AssetService) gzipEncoding(ctx context.Context, batchID string, body []byte, now time.Time) (models.AssetEncoding, []string, error) {
	enc := models.AssetEncoding{ModifiedAt: now}
	gz, err := chunkx.Gzip(body)
	if err != nil {
		return enc, nil, fmt.Errorf("gzip: %w", err)
	}
	blocks, err := chunkx.SplitBytes(gz, s.opts.MaxChunkSize)
	if err != nil {
		return enc, nil, err
	}
	var keys []string
	for i, b := range blocks {
		k := blobstore.EncodedChunkKey(batchID, models.EncodingGzip, i)
		if err := s.blobs.Put(ctx, k, b); err != nil {
			return enc, keys, fmt.Errorf("store gzip chunk %d: %w", i, err)
		}
		keys = append(keys, k)
		enc.ContentChunks = append(enc.ContentChunks, k)
		enc.ChunkLengths = append(enc.ChunkLengths, uint64(len(b)))
	}
	enc.TotalLength = uint64(len(gz))
	enc.Sha256 = sha256.Sum256(gz)
	return enc, keys, nil
}

// deleteBlobs removes blobs best-effort.
func (s *AssetService) deleteBlobs(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.blobs.Delete(context.WithoutCancel(ctx), k); err != nil {
			s.Logger.Warn(ctx, "Failed to delete blob", "key", k, "error", err.Error())
		}
	}
}

// Get returns an asset, or nil when it does not exist.
func (s *AssetService) Get(ctx context.Context, principal, collection, fullPath string) (*models.Asset, error) {
	var out *models.Asset
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesStorage, collection)
		if err != nil {
			return err
		}
		a, err := notFoundAsNil(s.Repos.Assets(db).Get(ctx, collection, fullPath))
		if err != nil {
			return err
		}
		if err := authz.Check(caller, rule, authz.OpRead, authz.AssetSubject(a)); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// Readable returns the asset when it exists and the caller may read it, and
// nil otherwise. Delivery uses it so that unreadable assets look absent.
func (s *AssetService) Readable(ctx context.Context, principal, collection, fullPath string) (*models.Asset, error) {
	var out *models.Asset
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesStorage, collection)
		if err != nil {
			return err
		}
		a, err := notFoundAsNil(s.Repos.Assets(db).Get(ctx, collection, fullPath))
		if err != nil || a == nil {
			return err
		}
		if authz.CanRead(caller, rule, authz.AssetSubject(a)) {
			out = a
		}
		return nil
	})
	return out, err
}

// Blob returns the bytes stored under a chunk key.
func (s *AssetService) Blob(ctx context.Context, key string) ([]byte, error) {
	return s.blobs.Get(ctx, key)
}

// GetMany reads several assets; the result is aligned with refs.
func (s *AssetService) GetMany(ctx context.Context, principal string, refs []AssetRef) ([]*models.Asset, error) {
	out := make([]*models.Asset, 0, len(refs))
	for i, r := range refs {
		a, err := s.Get(ctx, principal, r.Collection, r.FullPath)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// List returns one page of readable assets without chunk references.
func (s *AssetService) List(ctx context.Context, principal, collection string, params models.ListParams) (models.ListResults[*models.AssetNoContent], error) {
	var res models.ListResults[*models.AssetNoContent]
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesStorage, collection)
		if err != nil {
			return err
		}
		all, err := s.Repos.Assets(db).ListByCollection(ctx, collection)
		if err != nil {
			return err
		}
		readable := make([]*models.Asset, 0, len(all))
		for _, a := range all {
			if authz.CanRead(caller, rule, authz.AssetSubject(a)) {
				readable = append(readable, a)
			}
		}
		page, err := paginate(readable, params)
		if err != nil {
			return err
		}
		res = models.ListResults[*models.AssetNoContent]{
			Items:         make([]*models.AssetNoContent, 0, len(page.Items)),
			ItemsLength:   page.ItemsLength,
			MatchesLength: page.MatchesLength,
			ItemsPage:     page.ItemsPage,
			MatchesPages:  page.MatchesPages,
			NextCursor:    page.NextCursor,
		}
		for _, a := range page.Items {
			res.Items = append(res.Items, a.NoContent())
		}
		return nil
	})
	return res, err
}

// Count returns how many readable assets match params.
func (s *AssetService) Count(ctx context.Context, principal, collection string, params models.ListParams) (int, error) {
	params.Paginate = nil
	res, err := s.List(ctx, principal, collection, params)
	if err != nil {
		return 0, err
	}
	return res.MatchesLength, nil
}

// Delete removes an asset and its blobs. It returns nil when the asset
// never existed.
func (s *AssetService) Delete(ctx context.Context, principal, collection, fullPath string, in models.DelAsset) (*models.Asset, error) {
	var out *models.Asset
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		caller, err := s.caller(ctx, db, principal)
		if err != nil {
			return err
		}
		rule, err := s.rule(ctx, db, models.RulesStorage, collection)
		if err != nil {
			return err
		}
		repo := s.Repos.Assets(db)
		existing, err := notFoundAsNil(repo.Get(ctx, collection, fullPath))
		if err != nil {
			return err
		}
		if err := authz.Check(caller, rule, authz.OpDelete, authz.AssetSubject(existing)); err != nil {
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
		if err := repo.Delete(ctx, collection, fullPath, existing.Version); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil || out == nil {
		return nil, err
	}

	s.deleteBlobs(ctx, out.ChunkKeys())
	s.hooks.Dispatch(ctx, Event{Kind: EventAssetDeleted, Caller: principal,
		Asset: &models.AssetContext{Collection: collection, FullPath: fullPath, Before: out}})
	return out, nil
}

// DeleteMany deletes assets one unit of work at a time, stopping at the
// first failure.
func (s *AssetService) DeleteMany(ctx context.Context, principal string, items []DelAssetItem) error {
	for i, it := range items {
		if _, err := s.Delete(ctx, principal, it.Collection, it.FullPath, it.Asset); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// DeleteAll empties a collection. Admin only.
func (s *AssetService) DeleteAll(ctx context.Context, principal, collection string) (int, error) {
	var removed []*models.Asset
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Assets(db)
		all, err := repo.ListByCollection(ctx, collection)
		if err != nil {
			return err
		}
		for _, a := range all {
			if err := repo.Delete(ctx, collection, a.Key.FullPath, a.Version); err != nil {
				return err
			}
		}
		removed = all
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, a := range removed {
		s.deleteBlobs(ctx, a.ChunkKeys())
		s.hooks.Dispatch(ctx, Event{Kind: EventAssetDeleted, Caller: principal,
			Asset: &models.AssetContext{Collection: collection, FullPath: a.Key.FullPath, Before: a}})
	}
	return len(removed), nil
}
