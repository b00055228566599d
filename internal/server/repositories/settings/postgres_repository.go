package settings

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

// PostgresRepository implements settings storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetConfig loads the CBOR encoded storage config.
func (r *PostgresRepository) GetConfig(ctx context.Context) (*models.StorageConfig, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT config FROM settings WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.StorageConfig{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	cfg := &models.StorageConfig{}
	if err := codec.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode storage config: %w", err)
	}
	return cfg, nil
}

// SetConfig replaces the storage config.
func (r *PostgresRepository) SetConfig(ctx context.Context, cfg *models.StorageConfig) error {
	raw, err := codec.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode storage config: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, config) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config`, raw)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// GetCustomDomain returns the mapping of one domain.
func (r *PostgresRepository) GetCustomDomain(ctx context.Context, domain string) (*models.CustomDomain, error) {
	d := &models.CustomDomain{}
	err := r.db.QueryRowContext(ctx,
		`SELECT domain, collection, created_at, updated_at FROM custom_domains WHERE domain = $1`, domain).
		Scan(&d.Domain, &d.Collection, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// ListCustomDomains returns all mappings ordered by domain.
func (r *PostgresRepository) ListCustomDomains(ctx context.Context) ([]*models.CustomDomain, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT domain, collection, created_at, updated_at FROM custom_domains ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to select custom domains: %w", err)
	}
	defer rows.Close()

	var result []*models.CustomDomain
	for rows.Next() {
		d := &models.CustomDomain{}
		if err := rows.Scan(&d.Domain, &d.Collection, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetCustomDomain adds or re-targets a domain. created_at is kept on update.
func (r *PostgresRepository) SetCustomDomain(ctx context.Context, d *models.CustomDomain) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_domains (domain, collection, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (domain)
		DO UPDATE SET collection = EXCLUDED.collection, updated_at = EXCLUDED.updated_at`,
		d.Domain, d.Collection, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// DeleteCustomDomain removes a domain; ErrorNotFound if it was not mapped.
func (r *PostgresRepository) DeleteCustomDomain(ctx context.Context, domain string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_domains WHERE domain = $1`, domain)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
