package persistence

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// AccountRepository stores the per-user running totals
type AccountRepository interface {
	// GetByUserID reads an account without locking it
	//
	// Possible errors:
	// - NotFoundError: If no entry was ever applied for the user
	// - ErrDatabaseConnection: If database connection fails
	GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error)

	// Lock returns the account, creating an empty one when missing, and holds a
	// row lock on it until the surrounding unit of work ends
	Lock(ctx context.Context, userID uint64) (*entity.Account, error)

	// Save persists the running total
	Save(ctx context.Context, account *entity.Account) error
}
