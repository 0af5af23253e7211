package usecase

import (
	"context"
	"iter"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// LedgerUseCase is the append-only record of balance-affecting events
type LedgerUseCase interface {
	// Record appends an entry, or returns the stored one when the ID was already recorded
	Record(ctx context.Context, req entity.NewTransaction) (*entity.BalanceTransaction, error)

	// Settle completes a pending entry against the current balance
	Settle(ctx context.Context, id string) (*entity.BalanceTransaction, error)

	// Void closes a pending entry as failed or cancelled
	Void(ctx context.Context, id string, status entity.TransactionStatus) (*entity.BalanceTransaction, error)

	// Get returns one entry
	Get(ctx context.Context, id string) (*entity.BalanceTransaction, error)

	// GetBalance returns the sum of completed entries of a user
	GetBalance(ctx context.Context, userID uint64) (entity.Money, error)

	// ListTransactions lazily yields a user's entries, newest first.
	// Each range over the result starts from the newest entry again.
	ListTransactions(ctx context.Context, userID uint64, filter entity.TransactionFilter) (iter.Seq2[*entity.BalanceTransaction, error], error)
}
