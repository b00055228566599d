package docs

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

// PostgresRepository implements document storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectDoc = `SELECT collection, key, owner, data, description, delegates, created_at, updated_at, version FROM docs`

type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(s scanner) (*models.Doc, error) {
	var (
		d         models.Doc
		delegates []byte
		version   int64
	)
	if err := s.Scan(&d.Collection, &d.Key, &d.Owner, &d.Data, &d.Description, &delegates,
		&d.CreatedAt, &d.UpdatedAt, &version); err != nil {
		return nil, err
	}
	if len(delegates) > 0 {
		if err := codec.Unmarshal(delegates, &d.Delegates); err != nil {
			return nil, fmt.Errorf("decode delegates: %w", err)
		}
	}
	d.Version = uint64(version)
	return &d, nil
}

func (r *PostgresRepository) queryDocs(ctx context.Context, query string, args ...any) ([]*models.Doc, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select docs: %w", err)
	}
	defer rows.Close()

	var result []*models.Doc
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one document.
func (r *PostgresRepository) Get(ctx context.Context, collection, key string) (*models.Doc, error) {
	d, err := scanDoc(r.db.QueryRowContext(ctx, selectDoc+` WHERE collection = $1 AND key = $2`, collection, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Upsert creates the document when prevVersion is 0, or updates it when the
// stored version still equals prevVersion. A lost race yields ErrVersionConflict.
func (r *PostgresRepository) Upsert(ctx context.Context, doc *models.Doc, prevVersion uint64) error {
	delegates, err := encodeDelegates(doc.Delegates)
	if err != nil {
		return err
	}

	var res sql.Result
	if prevVersion == 0 {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO docs (collection, key, owner, data, description, delegates, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (collection, key) DO NOTHING`,
			doc.Collection, doc.Key, doc.Owner, doc.Data, doc.Description, delegates,
			doc.CreatedAt, doc.UpdatedAt, int64(doc.Version))
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE docs SET data = $3, description = $4, delegates = $5, updated_at = $6, version = $7
			WHERE collection = $1 AND key = $2 AND version = $8`,
			doc.Collection, doc.Key, doc.Data, doc.Description, delegates,
			doc.UpdatedAt, int64(doc.Version), int64(prevVersion))
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// Delete removes the document when its version still equals version.
func (r *PostgresRepository) Delete(ctx context.Context, collection, key string, version uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM docs WHERE collection = $1 AND key = $2 AND version = $3`,
		collection, key, int64(version))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// ListByCollection returns all documents of a collection ordered by key.
func (r *PostgresRepository) ListByCollection(ctx context.Context, collection string) ([]*models.Doc, error) {
	return r.queryDocs(ctx, selectDoc+` WHERE collection = $1 ORDER BY key`, collection)
}

// CountByOwner counts the documents owner holds in a collection.
func (r *PostgresRepository) CountByOwner(ctx context.Context, collection, owner string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM docs WHERE collection = $1 AND owner = $2`,
		collection, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// All returns every document.
func (r *PostgresRepository) All(ctx context.Context) ([]*models.Doc, error) {
	return r.queryDocs(ctx, selectDoc+` ORDER BY collection, key`)
}

func encodeDelegates(d []string) ([]byte, error) {
	if len(d) == 0 {
		return nil, nil
	}
	b, err := codec.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode delegates: %w", err)
	}
	return b, nil
}
