package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/satellite/internal/codec"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/cryptox"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/filex"
	"github.com/dmitrijs2005/satellite/internal/server/blobstore"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// SnapshotSchemaVersion is the layout version written by Export.
const SnapshotSchemaVersion = 1

// Snapshot is the serialized state of a satellite.
type Snapshot struct {
	SchemaVersion uint
	Rules         []*models.Rule
	Controllers   []*models.Controller
	Docs          []*models.Doc
	Assets        []*models.Asset

	// Blobs holds the bytes of every chunk referenced by Assets.
	Blobs map[string][]byte

	Config        *models.StorageConfig
	CustomDomains []*models.CustomDomain
}

// SnapshotService dumps and restores the whole state.
type SnapshotService struct {
	*Store
	blobs blobstore.Store

	// passphrase, when set, encrypts exported files.
	passphrase []byte
}

// NewSnapshotService returns a SnapshotService over store and blobs.
func NewSnapshotService(store *Store, blobs blobstore.Store) *SnapshotService {
	return &SnapshotService{Store: store, blobs: blobs}
}

// SetPassphrase makes ExportFile encrypt snapshots and lets ImportFile
// open encrypted ones.
func (s *SnapshotService) SetPassphrase(p string) {
	s.passphrase = []byte(p)
}

// Take collects the current state.
func (s *SnapshotService) Take(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{SchemaVersion: SnapshotSchemaVersion, Blobs: map[string][]byte{}}
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		rules := s.Repos.Rules(db)
		for _, kind := range []models.RulesType{models.RulesDB, models.RulesStorage} {
			rs, err := rules.List(ctx, kind)
			if err != nil {
				return err
			}
			snap.Rules = append(snap.Rules, rs...)
		}

		var err error
		if snap.Controllers, err = s.Repos.Controllers(db).List(ctx); err != nil {
			return err
		}
		if snap.Docs, err = s.Repos.Docs(db).All(ctx); err != nil {
			return err
		}
		if snap.Assets, err = s.Repos.Assets(db).All(ctx); err != nil {
			return err
		}
		settings := s.Repos.Settings(db)
		if snap.Config, err = settings.GetConfig(ctx); err != nil {
			return err
		}
		if snap.CustomDomains, err = settings.ListCustomDomains(ctx); err != nil {
			return err
		}

		for _, a := range snap.Assets {
			for _, k := range a.ChunkKeys() {
				b, err := s.blobs.Get(ctx, k)
				if err != nil {
					return fmt.Errorf("blob %s: %w", k, err)
				}
				snap.Blobs[k] = b
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore writes snap over the current state. Records present in both are
// replaced; records absent from snap are kept.
func (s *SnapshotService) Restore(ctx context.Context, snap *Snapshot) error {
	if snap.SchemaVersion != SnapshotSchemaVersion {
		return fmt.Errorf("snapshot schema version %d, want %d: %w", snap.SchemaVersion, SnapshotSchemaVersion, common.ErrInvalidInput)
	}
	for k, b := range snap.Blobs {
		if err := s.blobs.Put(ctx, k, b); err != nil {
			return fmt.Errorf("blob %s: %w", k, err)
		}
	}
	return s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		rules := s.Repos.Rules(db)
		for _, r := range snap.Rules {
			cur, err := notFoundAsNil(rules.Get(ctx, r.Kind, r.Collection))
			if err != nil {
				return err
			}
			if err := rules.Upsert(ctx, r, versionOf(cur, func(r *models.Rule) uint64 { return r.Version })); err != nil {
				return fmt.Errorf("rule %s/%s: %w", r.Kind, r.Collection, err)
			}
		}

		controllers := s.Repos.Controllers(db)
		for _, c := range snap.Controllers {
			if err := controllers.Upsert(ctx, c); err != nil {
				return fmt.Errorf("controller %s: %w", c.ID, err)
			}
		}

		docs := s.Repos.Docs(db)
		for _, d := range snap.Docs {
			cur, err := notFoundAsNil(docs.Get(ctx, d.Collection, d.Key))
			if err != nil {
				return err
			}
			if err := docs.Upsert(ctx, d, versionOf(cur, func(d *models.Doc) uint64 { return d.Version })); err != nil {
				return fmt.Errorf("doc %s/%s: %w", d.Collection, d.Key, err)
			}
		}

		assets := s.Repos.Assets(db)
		for _, a := range snap.Assets {
			cur, err := notFoundAsNil(assets.Get(ctx, a.Key.Collection, a.Key.FullPath))
			if err != nil {
				return err
			}
			if err := assets.Upsert(ctx, a, versionOf(cur, func(a *models.Asset) uint64 { return a.Version })); err != nil {
				return fmt.Errorf("asset %s%s: %w", a.Key.Collection, a.Key.FullPath, err)
			}
		}

		settings := s.Repos.Settings(db)
		if snap.Config != nil {
			if err := settings.SetConfig(ctx, snap.Config); err != nil {
				return err
			}
		}
		for _, d := range snap.CustomDomains {
			if err := settings.SetCustomDomain(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func versionOf[T any](cur *T, version func(*T) uint64) uint64 {
	if cur == nil {
		return 0
	}
	return version(cur)
}

// Export writes the current state to w as CBOR.
func (s *SnapshotService) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.Take(ctx)
	if err != nil {
		return err
	}
	return codec.NewEncoder(w).Encode(snap)
}

// Import reads a CBOR snapshot from r and restores it.
func (s *SnapshotService) Import(ctx context.Context, r io.Reader) error {
	var snap Snapshot
	if err := codec.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %v: %w", err, common.ErrInvalidInput)
	}
	return s.Restore(ctx, &snap)
}

// ExportFile writes the snapshot to path atomically, sealed when a
// passphrase is set.
func (s *SnapshotService) ExportFile(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(s.passphrase) > 0 {
		sealed, err := cryptox.Seal(s.passphrase, data)
		if err != nil {
			return fmt.Errorf("seal snapshot: %w", err)
		}
		data = sealed
	}

	err := filex.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	s.Logger.Info(ctx, "Snapshot exported", "path", path, "encrypted", len(s.passphrase) > 0)
	return nil
}

// ImportFile restores the snapshot at path. A missing file is not an error.
// Sealed files need the passphrase.
func (s *SnapshotService) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Logger.Info(ctx, "No snapshot to import", "path", path)
			return nil
		}
		return err
	}
	if cryptox.IsSealed(data) {
		if len(s.passphrase) == 0 {
			return fmt.Errorf("import %s: snapshot is encrypted and no passphrase is set: %w", path, common.ErrInvalidInput)
		}
		if data, err = cryptox.Open(s.passphrase, data); err != nil {
			return fmt.Errorf("import %s: %v: %w", path, err, common.ErrInvalidInput)
		}
	}
	if err := s.Import(ctx, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	s.Logger.Info(ctx, "Snapshot imported", "path", path)
	return nil
}
