package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a read-write transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// BeginReadOnly starts a transaction that sees one consistent snapshot
	BeginReadOnly(ctx context.Context) (context.Context, error)

	// HasTransaction reports whether ctx already carries a transaction
	HasTransaction(ctx context.Context) bool

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetLedgerRepository returns a ledger repository bound to the current transaction
	GetLedgerRepository(ctx context.Context) LedgerRepository

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetWithdrawalRepository returns a withdrawal repository bound to the current transaction
	GetWithdrawalRepository(ctx context.Context) WithdrawalRepository

	// GetContentRepository returns a content repository bound to the current transaction
	GetContentRepository(ctx context.Context) ContentRepository

	// GetNotificationRepository returns a notification repository bound to the current transaction
	GetNotificationRepository(ctx context.Context) NotificationRepository
}
