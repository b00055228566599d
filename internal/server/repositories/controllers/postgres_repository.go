package controllers

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

// PostgresRepository implements the roster over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectController = `SELECT id, scope, metadata, created_at, updated_at, expires_at FROM controllers`

type scanner interface {
	Scan(dest ...any) error
}

func scanController(s scanner) (*models.Controller, error) {
	var (
		c        models.Controller
		scope    int64
		metadata []byte
		expires  sql.NullTime
	)
	if err := s.Scan(&c.ID, &scope, &metadata, &c.CreatedAt, &c.UpdatedAt, &expires); err != nil {
		return nil, err
	}
	c.Scope = models.ControllerScope(scope)
	c.ExpiresAt = dbx.FromNullTime(expires)
	if len(metadata) > 0 {
		if err := codec.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode controller metadata: %w", err)
		}
	}
	return &c, nil
}

// Get returns one controller.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Controller, error) {
	c, err := scanController(r.db.QueryRowContext(ctx, selectController+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// List returns the whole roster ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Controller, error) {
	rows, err := r.db.QueryContext(ctx, selectController+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select controllers: %w", err)
	}
	defer rows.Close()

	var result []*models.Controller
	for rows.Next() {
		c, err := scanController(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert adds or replaces a controller. created_at is kept on update.
func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Controller) error {
	var metadata []byte
	if len(c.Metadata) > 0 {
		b, err := codec.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encode controller metadata: %w", err)
		}
		metadata = b
	}

	query := `
		INSERT INTO controllers (id, scope, metadata, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			scope = EXCLUDED.scope,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at;
	`
	res, err := r.db.ExecContext(ctx, query, c.ID, int64(c.Scope), metadata, c.CreatedAt, c.UpdatedAt, dbx.NullTime(c.ExpiresAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// Delete removes a controller; unknown ids are ignored.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM controllers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
