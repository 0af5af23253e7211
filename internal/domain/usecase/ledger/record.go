package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// Record appends an entry to the ledger of req.UserID.
// Recording an ID that already exists returns the stored entry unchanged;
// an ID taken by another user's entry is a DuplicateTransactionError.
func (s *Service) Record(ctx context.Context, req entity.NewTransaction) (*entity.BalanceTransaction, error) {
	if req.ID == "" {
		req.ID = s.idGenerator.NewID()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := serial.Run(ctx, s.queues, req.UserID, func(ctx context.Context) (*entity.BalanceTransaction, error) {
		return serial.InUnitOfWork(ctx, s.uow, func(ctx context.Context) (*entity.BalanceTransaction, error) {
			return s.appendEntry(ctx, req)
		})
	})

	// Another process inserted the same ID first; our unit is rolled back, theirs stands
	if errs.IsDuplicateTransactionError(err) && !s.uow.HasTransaction(ctx) {
		stored, getErr := s.Get(ctx, req.ID)
		if getErr != nil {
			return nil, getErr
		}
		if stored.UserID != req.UserID {
			return nil, err
		}
		s.logger.Warn("Concurrent duplicate ledger entry resolved to stored entry", map[string]any{
			"transaction_id": req.ID,
			"user_id":        req.UserID,
		})
		return stored, nil
	}
	return tx, err
}

func (s *Service) appendEntry(ctx context.Context, req entity.NewTransaction) (*entity.BalanceTransaction, error) {
	ledgerRepo := s.uow.GetLedgerRepository(ctx)
	accountRepo := s.uow.GetAccountRepository(ctx)

	account, err := accountRepo.Lock(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	existing, err := ledgerRepo.GetByID(ctx, req.ID)
	if err == nil && existing.UserID != req.UserID {
		s.logger.Warn("Ledger entry id belongs to another user", map[string]any{
			"transaction_id": req.ID,
			"user_id":        req.UserID,
		})
		return nil, errs.NewDuplicateTransactionError(req.ID, req.UserID)
	}
	if err == nil {
		s.logger.Info("Ledger entry already recorded", map[string]any{
			"transaction_id": req.ID,
			"user_id":        existing.UserID,
		})
		return existing, nil
	}
	if !errs.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}

	if err := s.checkInvariant(ctx, ledgerRepo, account, req.ID); err != nil {
		return nil, err
	}

	tx, err := entity.NewBalanceTransaction(req, account.Balance, s.timeProvider)
	if err != nil {
		if errs.IsInsufficientBalanceError(err) {
			s.logger.Warn("Ledger entry rejected", errs.LogFields(err))
		}
		return nil, err
	}

	if err := ledgerRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if tx.IsCompleted() {
		account.Apply(tx, s.timeProvider)
		if err := accountRepo.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
	}

	s.logger.Info("Ledger entry recorded", map[string]any{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"type":           tx.Type,
		"status":         tx.Status,
		"amount":         tx.Amount.String(),
		"balance_after":  tx.BalanceAfter.String(),
	})
	return tx, nil
}

// checkInvariant compares the running total with the balance the ledger history ends at
func (s *Service) checkInvariant(ctx context.Context, ledgerRepo persistence.LedgerRepository, account *entity.Account, writing string) error {
	expected := "0.00"
	matches := account.Balance == 0

	if account.LastEntry != "" {
		last, err := ledgerRepo.GetByID(ctx, account.LastEntry)
		switch {
		case err == nil && last.IsCompleted():
			expected = last.BalanceAfter.String()
			matches = last.BalanceAfter == account.Balance
		case err == nil:
			expected = fmt.Sprintf("completed entry %s, found %s", last.ID, last.Status)
			matches = false
		case errs.IsNotFoundError(err):
			expected = fmt.Sprintf("entry %s", account.LastEntry)
			matches = false
		default:
			return fmt.Errorf("failed to read last ledger entry: %w", err)
		}
	}

	if matches {
		return nil
	}

	err := errs.NewInvariantViolationError(account.UserID, writing, expected, account.Balance.String())
	s.logger.Error("Ledger invariant violated", errs.LogFields(err))
	return err
}
