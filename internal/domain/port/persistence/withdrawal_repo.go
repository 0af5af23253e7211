package persistence

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// WithdrawalRepository stores withdrawal requests. Requests are never deleted.
type WithdrawalRepository interface {
	// Create saves a new request
	Create(ctx context.Context, request *entity.WithdrawalRequest) error

	// Update saves the mutable fields of a request
	//
	// Possible errors:
	// - NotFoundError: If the request doesn't exist
	Update(ctx context.Context, request *entity.WithdrawalRequest) error

	// GetByID retrieves a request
	//
	// Possible errors:
	// - NotFoundError: If the request doesn't exist
	GetByID(ctx context.Context, id string) (*entity.WithdrawalRequest, error)

	// List returns up to limit requests of a user, newest first, strictly after the cursor.
	// An empty statuses slice matches every status.
	List(ctx context.Context, userID uint64, statuses []entity.WithdrawalStatus,
		after *entity.WithdrawalCursor, limit int) ([]*entity.WithdrawalRequest, error)

	// SumAmount totals the amounts of a user's requests in the given statuses
	SumAmount(ctx context.Context, userID uint64, statuses []entity.WithdrawalStatus) (entity.Money, error)

	// CountByStatus counts a user's requests per status
	CountByStatus(ctx context.Context, userID uint64) (map[entity.WithdrawalStatus]int, error)
}
