package persistence

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// LedgerRepository stores balance transactions
type LedgerRepository interface {
	// Create appends a new entry and assigns its Seq
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If an entry with the same ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, tx *entity.BalanceTransaction) error

	// Update rewrites status, balances and completion time of a pending entry
	//
	// Possible errors:
	// - NotFoundError: If the entry doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, tx *entity.BalanceTransaction) error

	// GetByID retrieves an entry by its idempotency key
	//
	// Possible errors:
	// - NotFoundError: If the entry doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id string) (*entity.BalanceTransaction, error)

	// List returns up to limit entries of a user matching filter, newest first,
	// strictly after the cursor (nil starts at the newest)
	List(ctx context.Context, userID uint64, filter entity.TransactionFilter,
		after *entity.TransactionCursor, limit int) ([]*entity.BalanceTransaction, error)
}
