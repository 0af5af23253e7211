package withdrawal

import (
	"context"
	"fmt"
	"iter"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// Get returns one request
func (p *Processor) Get(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	if id == "" {
		return nil, errs.NewValidationError("withdrawalId", "must not be empty")
	}
	return p.uow.GetWithdrawalRepository(ctx).GetByID(ctx, id)
}

// List yields a user's requests, newest first. No statuses means all of them.
func (p *Processor) List(
	ctx context.Context,
	userID uint64,
	statuses []entity.WithdrawalStatus,
) (iter.Seq2[*entity.WithdrawalRequest, error], error) {
	if userID == 0 {
		return nil, errs.NewValidationError("userId", "must be positive")
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, errs.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
		}
	}

	return func(yield func(*entity.WithdrawalRequest, error) bool) {
		var cursor *entity.WithdrawalCursor
		for {
			page, err := p.uow.GetWithdrawalRepository(ctx).List(ctx, userID, statuses, cursor, listPageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, w := range page {
				if !yield(w, nil) {
					return
				}
			}
			if len(page) < listPageSize {
				return
			}
			cursor = entity.WithdrawalCursorOf(page[len(page)-1])
		}
	}, nil
}
