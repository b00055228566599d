package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// PostgresRepository implements rule storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectRule = `SELECT kind, collection, read_permission, write_permission, max_size,
	mutable_permissions, max_changes_per_user, created_at, updated_at, version FROM rules`

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(s scanner) (*models.Rule, error) {
	var (
		r           models.Rule
		kind        string
		maxSize     sql.NullInt64
		maxChanges  sql.NullInt64
		read, write int64
		version     int64
	)
	if err := s.Scan(&kind, &r.Collection, &read, &write, &maxSize,
		&r.MutablePermissions, &maxChanges, &r.CreatedAt, &r.UpdatedAt, &version); err != nil {
		return nil, err
	}
	r.Kind = models.RulesType(kind)
	r.Read = models.Permission(read)
	r.Write = models.Permission(write)
	r.MaxSize = dbx.FromNullInt64[uint64](maxSize)
	r.MaxChangesPerUser = dbx.FromNullInt64[uint32](maxChanges)
	r.Version = uint64(version)
	return &r, nil
}

// Get returns the stored rule of a collection.
func (r *PostgresRepository) Get(ctx context.Context, kind models.RulesType, collection string) (*models.Rule, error) {
	row := r.db.QueryRowContext(ctx, selectRule+` WHERE kind = $1 AND collection = $2`, string(kind), collection)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rule, nil
}

// List returns every stored rule of kind ordered by collection.
func (r *PostgresRepository) List(ctx context.Context, kind models.RulesType) ([]*models.Rule, error) {
	rows, err := r.db.QueryContext(ctx, selectRule+` WHERE kind = $1 ORDER BY collection`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to select rules: %w", err)
	}
	defer rows.Close()

	var result []*models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert inserts a new rule (prevVersion 0) or updates the stored one when
// its version still equals prevVersion. Otherwise ErrVersionConflict.
func (r *PostgresRepository) Upsert(ctx context.Context, rule *models.Rule, prevVersion uint64) error {
	var (
		res sql.Result
		err error
	)
	if prevVersion == 0 {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO rules (kind, collection, read_permission, write_permission, max_size,
				mutable_permissions, max_changes_per_user, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (kind, collection) DO NOTHING`,
			string(rule.Kind), rule.Collection, int64(rule.Read), int64(rule.Write), dbx.NullInt64(rule.MaxSize),
			rule.MutablePermissions, dbx.NullInt64(rule.MaxChangesPerUser), rule.CreatedAt, rule.UpdatedAt, int64(rule.Version))
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE rules SET read_permission = $3, write_permission = $4, max_size = $5,
				mutable_permissions = $6, max_changes_per_user = $7, updated_at = $8, version = $9
			WHERE kind = $1 AND collection = $2 AND version = $10`,
			string(rule.Kind), rule.Collection, int64(rule.Read), int64(rule.Write), dbx.NullInt64(rule.MaxSize),
			rule.MutablePermissions, dbx.NullInt64(rule.MaxChangesPerUser), rule.UpdatedAt, int64(rule.Version), int64(prevVersion))
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}

// Delete removes the rule if its version still equals version.
func (r *PostgresRepository) Delete(ctx context.Context, kind models.RulesType, collection string, version uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE kind = $1 AND collection = $2 AND version = $3`,
		string(kind), collection, int64(version))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.OneRowAffected(res)
}
