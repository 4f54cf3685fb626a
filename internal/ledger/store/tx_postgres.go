package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "wishlist/pkg/domain-errors"
	txcontext "wishlist/pkg/platform/tx"
)

const (
	defaultTxTimeout   = 5 * time.Second
	defaultLockTimeout = 2 * time.Second
)

// PostgresItemTx runs a ledger mutation in one database transaction. The row
// lock comes from LockItem's FOR UPDATE; lock_timeout bounds how long it waits.
type PostgresItemTx struct {
	db          *sql.DB
	lockTimeout time.Duration
	timeout     time.Duration
}

func NewPostgresItemTx(db *sql.DB, lockTimeout, timeout time.Duration) *PostgresItemTx {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &PostgresItemTx{db: db, lockTimeout: lockTimeout, timeout: timeout}
}

func (t *PostgresItemTx) RunInItemTx(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// SET does not accept bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}
