package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// Transactor runs a unit of work. Every store operation of the satellite
// (authorization check, read-modify-write, version bump) goes through
// exactly one WithTx call, which is what makes it atomic.
//
// Implementations must not be re-entered from inside fn.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// PostgreSQL SQLSTATE codes that mean "retry": the transaction lost a race.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// SQLTransactor runs units of work in serializable database transactions.
type SQLTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLTransactor returns a Transactor using serializable isolation.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db, opts: &sql.TxOptions{Isolation: sql.LevelSerializable}}
}

// WithTx implements Transactor. Serialization failures are reported as
// common.ErrVersionConflict so callers treat them like a stale version.
func (t *SQLTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	err := WithTx(ctx, t.db, t.opts, fn)
	if isRetryable(err) {
		return fmt.Errorf("%w: %v", common.ErrVersionConflict, err)
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

// MutexTransactor serializes units of work with a process-wide lock. It is
// used with the in-memory repositories, which ignore the DBTX handle.
type MutexTransactor struct {
	mu sync.Mutex
}

// NewMutexTransactor returns a ready MutexTransactor.
func NewMutexTransactor() *MutexTransactor {
	return &MutexTransactor{}
}

// WithTx implements Transactor; fn receives a nil DBTX.
func (t *MutexTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, nil)
}
