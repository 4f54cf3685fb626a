package service

import (
	"context"
	"errors"
	"time"

	"wishlist/internal/ledger/lock"
	"wishlist/internal/ledger/store"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/sentinel"
)

// ItemTx runs fn as one all-or-nothing unit of work holding the exclusive lock
// on itemID. Store calls made with the ctx passed to fn take part in it.
type ItemTx interface {
	RunInItemTx(ctx context.Context, itemID int64, fn func(ctx context.Context) error) error
}

const (
	defaultTxTimeout = 5 * time.Second
	defaultLockWait  = 2 * time.Second
)

// keyedItemTx serializes per item with an in-process keyed mutex and stages
// writes in an in-memory Txn.
type keyedItemTx struct {
	locks    *lock.Keyed
	store    *store.InMemoryStore
	lockWait time.Duration
	timeout  time.Duration
}

// NewInMemoryItemTx builds the unit-of-work runner for the in-memory store.
func NewInMemoryItemTx(mem *store.InMemoryStore, locks *lock.Keyed, lockWait, timeout time.Duration) ItemTx {
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &keyedItemTx{locks: locks, store: mem, lockWait: lockWait, timeout: timeout}
}

func (t *keyedItemTx) RunInItemTx(ctx context.Context, itemID int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	lockCtx, cancelWait := context.WithTimeout(ctx, t.lockWait)
	release, err := t.locks.Acquire(lockCtx, itemID)
	cancelWait()
	if err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return sentinel.ErrLockTimeout
		}
		return err
	}
	defer release()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	txn := t.store.Begin()
	if err := fn(store.WithTxn(ctx, txn)); err != nil {
		return err
	}
	return txn.Commit(ctx)
}
