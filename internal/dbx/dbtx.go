// Package dbx holds the small database plumbing shared by the repositories:
// the DBTX interface that lets a repository run against either the pool or a
// transaction, and WithTx for operations whose writes must land together.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the common surface of *sql.DB and *sql.Tx that repositories depend
// on. Repository constructors take a DBTX, so a service hands them the pool
// for standalone calls and the transaction handle inside WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db: commit when fn returns nil,
// rollback when it returns an error or panics. Panics are rethrown after the
// rollback.
//
// The typical caller pairs a revoke with the insert of its replacement:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := m.RefreshTokens(tx).Revoke(ctx, id); err != nil {
//	        return err
//	    }
//	    return m.RefreshTokens(tx).Create(ctx, username, hash, expiresAt)
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
