// Package dbx holds the transaction plumbing under the satellite store.
// Repositories take a DBTX, and services reach them only through a
// Transactor, so a document write and its collection version bump share one
// transaction on PostgreSQL and one lock in memory.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what the postgres repositories query through. *sql.Tx satisfies
// it inside a unit of work; the memory repositories ignore it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in one database transaction. fn's error or panic rolls it
// back; otherwise it commits. SQLTransactor wraps it, and services go
// through the Transactor rather than calling it directly:
//
//	err := store.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
//	    c, err := store.Repos.Controllers(db).Get(ctx, principal)
//	    if err != nil {
//	        return err
//	    }
//	    return store.Repos.Controllers(db).Delete(ctx, c.ID)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
