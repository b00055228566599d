package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/codec"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// PostgresRepository implements asset storage over a dbx.DBTX. Headers,
// encodings and delegates are stored as CBOR columns.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAsset = `SELECT collection, full_path, name, owner, token, description, headers, encodings,
	delegates, created_at, updated_at, version FROM assets`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (*models.Asset, error) {
	var (
		a                             models.Asset
		token                         sql.NullString
		headers, encodings, delegates []byte
		version                       int64
	)
	if err := s.Scan(&a.Key.Collection, &a.Key.FullPath, &a.Key.Name, &a.Key.Owner, &token, &a.Key.Description,
		&headers, &encodings, &delegates, &a.CreatedAt, &a.UpdatedAt, &version); err != nil {
		return nil, err
	}
	a.Key.Token = dbx.FromNullString(token)
	a.Version = uint64(version)
	for _, col := range []struct {
		raw []byte
		dst any
	}{{headers, &a.Headers}, {encodings, &a.Encodings}, {delegates, &a.Delegates}} {
		if len(col.raw) == 0 {
			continue
		}
		if err := codec.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode asset %s: %w", a.Key.FullPath, err)
		}
	}
	return &a, nil
}

func (r *PostgresRepository) queryAssets(ctx context.Context, query string, args ...any) ([]*models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	defer rows.Close()

	var result []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one asset.
func (r *PostgresRepository) Get(ctx context.Context, collection, fullPath string) (*models.Asset, error) {
	a, err := scanAsset(r.db.QueryRowContext(ctx, selectAsset+` WHERE collection = $1 AND full_path = $2`, collection, fullPath))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func encode(v any, empty bool) ([]byte, error) {
	if empty {
		return nil, nil
	}
	b, err := codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode asset column: %w", err)
	}
	return b, nil
}

// Upsert creates (prevVersion 0) or replaces the asset when the stored
// version still equals prevVersion.
func (r *PostgresRepository) Upsert(ctx context.Context, a *models.Asset, prevVersion uint64) error {
	headers, err := encode(a.Headers, len(a.Headers) == 0)
	if err != nil {
		return err
	}
	encodings, err := encode(a.Encodings, false)
	if err != nil {
		return err
	}
	delegates, err := encode(a.Delegates, len(a.Delegates) == 0)
	if err != nil {
		return err
	}

	var res sql.Result
	if prevVersion == 0 {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO assets (collection, full_path, name, owner, token, description, headers, encodings,
				delegates, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (collection, full_path) DO NOTHING`,
			a.Key.Collection, a.Key.FullPath, a.Key.Name, a.Key.Owner, dbx.NullString(a.Key.Token), a.Key.Description,
			headers, encodings, delegates, a.CreatedAt, a.UpdatedAt, int64(a.Version))
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE assets SET name = $3, token = $4, description = $5, headers = $6, encodings = $7,
				delegates = $8, updated_at = $9, version = $10
			WHERE collection = $1 AND full_path = $2 AND version = $11`,
			a.Key.Collection, a.Key.FullPath, a.Key.Name, dbx.NullString(a.Key.Token), a.Key.Description,
			headers, encodings, delegates, a.UpdatedAt, int64(a.Version), int64(prevVersion))
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// Delete removes the asset when its version still equals version.
func (r *PostgresRepository) Delete(ctx context.Context, collection, fullPath string, version uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE collection = $1 AND full_path = $2 AND version = $3`,
		collection, fullPath, int64(version))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// ListByCollection returns all assets of a collection ordered by full path.
func (r *PostgresRepository) ListByCollection(ctx context.Context, collection string) ([]*models.Asset, error) {
	return r.queryAssets(ctx, selectAsset+` WHERE collection = $1 ORDER BY full_path`, collection)
}

// CountByOwner counts the assets owner holds in a collection.
func (r *PostgresRepository) CountByOwner(ctx context.Context, collection, owner string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM assets WHERE collection = $1 AND owner = $2`,
		collection, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// All returns every asset.
func (r *PostgresRepository) All(ctx context.Context) ([]*models.Asset, error) {
	return r.queryAssets(ctx, selectAsset+` ORDER BY collection, full_path`)
}
