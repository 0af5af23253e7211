package usecase

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// BalanceUseCase provides read-only projections over the ledger
type BalanceUseCase interface {
	CurrentBalance(ctx context.Context, userID uint64) (entity.Money, error)
	AvailableBalance(ctx context.Context, userID uint64) (entity.Money, error)

	// Summary returns current and available balance from one snapshot
	Summary(ctx context.Context, userID uint64) (*entity.BalanceSummary, error)

	// Stats aggregates revenue, fees and withdrawals. Never cached.
	Stats(ctx context.Context, userID uint64) (*entity.BalanceStats, error)
}
