package serial

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
)

// InUnitOfWork runs fn inside a read-write unit of work, joining the one ctx already carries.
// The unit is committed when fn succeeds and rolled back otherwise.
func InUnitOfWork[T any](ctx context.Context, uow persistence.UnitOfWork, fn func(ctx context.Context) (T, error)) (T, error) {
	return within(ctx, uow, uow.Begin, fn)
}

// InReadOnlyUnitOfWork runs fn against one consistent snapshot
func InReadOnlyUnitOfWork[T any](ctx context.Context, uow persistence.UnitOfWork, fn func(ctx context.Context) (T, error)) (T, error) {
	return within(ctx, uow, uow.BeginReadOnly, fn)
}

func within[T any](
	ctx context.Context,
	uow persistence.UnitOfWork,
	begin func(context.Context) (context.Context, error),
	fn func(ctx context.Context) (T, error),
) (result T, err error) {
	if uow.HasTransaction(ctx) {
		return fn(ctx)
	}

	txCtx, err := begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback(txCtx)
		}
	}()

	result, err = fn(txCtx)
	if err != nil {
		return result, err
	}

	if err = uow.Commit(txCtx); err != nil {
		return result, fmt.Errorf("failed to commit unit of work: %w", err)
	}
	committed = true
	return result, nil
}
