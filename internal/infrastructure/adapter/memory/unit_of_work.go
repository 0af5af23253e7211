package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory-tx"

// unit is one open unit of work
type unit struct {
	view     *view
	readOnly bool
	done     bool
}

// UnitOfWork implements persistence.UnitOfWork over a Store
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work factory for store
func NewUnitOfWork(store *Store) persistence.UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin takes the store write lock until Commit or Rollback
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.HasTransaction(ctx) {
		return ctx, fmt.Errorf("unit of work already open in context")
	}
	u.store.mu.Lock()
	return context.WithValue(ctx, txKey, &unit{view: u.store.newView(true, false)}), nil
}

// BeginReadOnly takes the store read lock until Commit or Rollback
func (u *UnitOfWork) BeginReadOnly(ctx context.Context) (context.Context, error) {
	if u.HasTransaction(ctx) {
		return ctx, fmt.Errorf("unit of work already open in context")
	}
	u.store.mu.RLock()
	return context.WithValue(ctx, txKey, &unit{view: u.store.newView(false, true), readOnly: true}), nil
}

// HasTransaction reports whether ctx carries an open unit of work
func (u *UnitOfWork) HasTransaction(ctx context.Context) bool {
	tx := unitFrom(ctx)
	return tx != nil && !tx.done
}

// Commit applies buffered writes and releases the lock
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx := unitFrom(ctx)
	if tx == nil || tx.done {
		return fmt.Errorf("no transaction found in context")
	}
	if !tx.readOnly {
		u.store.logger.Debug("Committing in-memory unit of work", nil)
		tx.view.commit()
	}
	u.release(tx)
	return nil
}

// Rollback drops buffered writes and releases the lock. Ending an ended unit is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx := unitFrom(ctx)
	if tx == nil {
		return fmt.Errorf("no transaction found in context")
	}
	if tx.done {
		return nil
	}
	if !tx.readOnly {
		u.store.logger.Debug("Rolling back in-memory unit of work", nil)
	}
	u.release(tx)
	return nil
}

func (u *UnitOfWork) release(tx *unit) {
	tx.done = true
	if tx.readOnly {
		u.store.mu.RUnlock()
		return
	}
	u.store.mu.Unlock()
}

// GetLedgerRepository returns a ledger repository in the current unit of work
func (u *UnitOfWork) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return &LedgerRepository{store: u.store, tx: activeUnit(ctx)}
}

// GetAccountRepository returns an account repository in the current unit of work
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &AccountRepository{store: u.store, tx: activeUnit(ctx)}
}

// GetWithdrawalRepository returns a withdrawal repository in the current unit of work
func (u *UnitOfWork) GetWithdrawalRepository(ctx context.Context) persistence.WithdrawalRepository {
	return &WithdrawalRepository{store: u.store, tx: activeUnit(ctx)}
}

// GetContentRepository returns a content repository in the current unit of work
func (u *UnitOfWork) GetContentRepository(ctx context.Context) persistence.ContentRepository {
	return &ContentRepository{store: u.store, tx: activeUnit(ctx)}
}

// GetNotificationRepository returns a notification repository in the current unit of work
func (u *UnitOfWork) GetNotificationRepository(ctx context.Context) persistence.NotificationRepository {
	return &NotificationRepository{store: u.store, tx: activeUnit(ctx)}
}

func unitFrom(ctx context.Context) *unit {
	tx, _ := ctx.Value(txKey).(*unit)
	return tx
}

// activeUnit returns the open unit in ctx, or nil for autocommit access
func activeUnit(ctx context.Context) *unit {
	tx := unitFrom(ctx)
	if tx == nil || tx.done {
		return nil
	}
	return tx
}
