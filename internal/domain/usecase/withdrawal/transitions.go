package withdrawal

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// LedgerEntryID is the idempotency key of the debit recorded when request id completes
func LedgerEntryID(id string) string {
	return "withdrawal:" + id
}

// Approve moves a pending request to approved
func (p *Processor) Approve(ctx context.Context, id, adminNotes, processedBy string) (*entity.WithdrawalRequest, error) {
	return p.transition(ctx, id, entity.ActionApprove, func(_ context.Context, w *entity.WithdrawalRequest) error {
		return w.Approve(adminNotes, processedBy, p.timeProvider)
	})
}

// StartProcessing moves an approved request to processing
func (p *Processor) StartProcessing(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	return p.transition(ctx, id, entity.ActionProcess, func(_ context.Context, w *entity.WithdrawalRequest) error {
		return w.StartProcessing(p.timeProvider)
	})
}

// Complete debits the ledger and closes the request in one unit of work
func (p *Processor) Complete(ctx context.Context, id, externalTransactionID, receiptURL string) (*entity.WithdrawalRequest, error) {
	return p.transition(ctx, id, entity.ActionComplete, func(ctx context.Context, w *entity.WithdrawalRequest) error {
		if err := w.CheckComplete(); err != nil {
			return err
		}

		tx, err := p.ledger.Record(ctx, entity.NewTransaction{
			ID:                LedgerEntryID(w.ID),
			UserID:            w.UserID,
			Type:              entity.TypeWithdrawal,
			Amount:            w.Amount.Neg(),
			Description:       fmt.Sprintf("Withdrawal %s via %s", w.ID, w.PaymentMethod),
			RelatedEntityType: entity.RelatedWithdrawalRequest,
			RelatedEntityID:   w.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to debit ledger: %w", err)
		}

		return w.Complete(tx.ID, strings.TrimSpace(externalTransactionID), strings.TrimSpace(receiptURL), p.timeProvider)
	})
}

// Reject closes the request with a reason; the reason is checked before anything else
func (p *Processor) Reject(ctx context.Context, id, reason string) (*entity.WithdrawalRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errs.NewValidationError("reason", "must not be empty")
	}
	return p.transition(ctx, id, entity.ActionReject, func(_ context.Context, w *entity.WithdrawalRequest) error {
		return w.Reject(reason, p.timeProvider)
	})
}

// Cancel closes a pending or approved request
func (p *Processor) Cancel(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	return p.transition(ctx, id, entity.ActionCancel, func(_ context.Context, w *entity.WithdrawalRequest) error {
		return w.Cancel(p.timeProvider)
	})
}

// transition applies change to request id on its owner's queue and stores the result
func (p *Processor) transition(
	ctx context.Context,
	id, action string,
	change func(ctx context.Context, w *entity.WithdrawalRequest) error,
) (*entity.WithdrawalRequest, error) {
	current, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := serial.Run(ctx, p.queues, current.UserID, func(ctx context.Context) (*entity.WithdrawalRequest, error) {
		return serial.InUnitOfWork(ctx, p.uow, func(ctx context.Context) (*entity.WithdrawalRequest, error) {
			if _, err := p.uow.GetAccountRepository(ctx).Lock(ctx, current.UserID); err != nil {
				return nil, fmt.Errorf("failed to lock account: %w", err)
			}

			repo := p.uow.GetWithdrawalRepository(ctx)
			w, err := repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := change(ctx, w); err != nil {
				return nil, err
			}
			if err := repo.Update(ctx, w); err != nil {
				return nil, fmt.Errorf("failed to update withdrawal request: %w", err)
			}
			return w, nil
		})
	})
	if err != nil {
		fields := errs.LogFields(err)
		fields["withdrawal_id"] = id
		fields["action"] = action
		p.logger.Warn("Withdrawal transition failed", fields)
		return nil, err
	}

	p.logger.Info("Withdrawal request updated", map[string]any{
		"withdrawal_id":  updated.ID,
		"user_id":        updated.UserID,
		"status":         updated.Status,
		"transaction_id": updated.TransactionID,
	})
	p.notify(ctx, updated)
	return updated, nil
}
