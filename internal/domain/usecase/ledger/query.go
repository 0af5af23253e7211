package ledger

import (
	"context"
	"iter"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// Get returns one ledger entry
func (s *Service) Get(ctx context.Context, id string) (*entity.BalanceTransaction, error) {
	if id == "" {
		return nil, errs.NewValidationError("transactionId", "must not be empty")
	}
	return s.uow.GetLedgerRepository(ctx).GetByID(ctx, id)
}

// GetBalance returns the running total of a user; unknown users have a zero balance
func (s *Service) GetBalance(ctx context.Context, userID uint64) (entity.Money, error) {
	if userID == 0 {
		return 0, errs.NewValidationError("userId", "must be positive")
	}

	account, err := s.uow.GetAccountRepository(ctx).GetByUserID(ctx, userID)
	if errs.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// ListTransactions yields the entries of a user, newest first, one page at a time
func (s *Service) ListTransactions(
	ctx context.Context,
	userID uint64,
	filter entity.TransactionFilter,
) (iter.Seq2[*entity.BalanceTransaction, error], error) {
	if userID == 0 {
		return nil, errs.NewValidationError("userId", "must be positive")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return func(yield func(*entity.BalanceTransaction, error) bool) {
		var cursor *entity.TransactionCursor
		for {
			page, err := s.uow.GetLedgerRepository(ctx).List(ctx, userID, filter, cursor, s.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, tx := range page {
				if !yield(tx, nil) {
					return
				}
			}
			if len(page) < s.pageSize {
				return
			}
			cursor = entity.CursorOf(page[len(page)-1])
		}
	}, nil
}
