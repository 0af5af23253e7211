package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// Settle completes a pending entry. The balances are computed against the
// running total at settlement time.
func (s *Service) Settle(ctx context.Context, id string) (*entity.BalanceTransaction, error) {
	return s.onOwnerQueue(ctx, id, func(ctx context.Context, tx *entity.BalanceTransaction, account *entity.Account) error {
		ledgerRepo := s.uow.GetLedgerRepository(ctx)
		if err := s.checkInvariant(ctx, ledgerRepo, account, tx.ID); err != nil {
			return err
		}
		if err := tx.Settle(account.Balance, s.timeProvider); err != nil {
			return err
		}
		if err := ledgerRepo.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to settle ledger entry: %w", err)
		}

		account.Apply(tx, s.timeProvider)
		if err := s.uow.GetAccountRepository(ctx).Save(ctx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		s.logger.Info("Ledger entry settled", map[string]any{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
			"balance_after":  tx.BalanceAfter.String(),
		})
		return nil
	})
}

// Void closes a pending entry as failed or cancelled. The balance is untouched.
func (s *Service) Void(ctx context.Context, id string, status entity.TransactionStatus) (*entity.BalanceTransaction, error) {
	return s.onOwnerQueue(ctx, id, func(ctx context.Context, tx *entity.BalanceTransaction, _ *entity.Account) error {
		if err := tx.Void(status); err != nil {
			return err
		}
		if err := s.uow.GetLedgerRepository(ctx).Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to void ledger entry: %w", err)
		}

		s.logger.Info("Ledger entry voided", map[string]any{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
			"status":         tx.Status,
		})
		return nil
	})
}

// onOwnerQueue loads entry id and runs fn on its owner's queue with the account locked
func (s *Service) onOwnerQueue(
	ctx context.Context,
	id string,
	fn func(ctx context.Context, tx *entity.BalanceTransaction, account *entity.Account) error,
) (*entity.BalanceTransaction, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return serial.Run(ctx, s.queues, entry.UserID, func(ctx context.Context) (*entity.BalanceTransaction, error) {
		return serial.InUnitOfWork(ctx, s.uow, func(ctx context.Context) (*entity.BalanceTransaction, error) {
			account, err := s.uow.GetAccountRepository(ctx).Lock(ctx, entry.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to lock account: %w", err)
			}

			// Re-read under the lock: the entry may have changed while queued
			tx, err := s.uow.GetLedgerRepository(ctx).GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := fn(ctx, tx, account); err != nil {
				return nil, err
			}
			return tx, nil
		})
	})
}
