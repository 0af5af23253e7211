package withdrawal

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// Create opens a pending request. Funds are reserved by the request itself:
// nothing is written to the ledger until completion.
func (p *Processor) Create(ctx context.Context, req usecase.CreateWithdrawalRequest) (*entity.WithdrawalRequest, error) {
	request, err := entity.NewWithdrawalRequest(p.idGenerator.NewID(), req.UserID, req.Amount,
		req.PaymentMethod, req.PaymentDetails, p.policy, p.timeProvider)
	if err != nil {
		return nil, err
	}

	created, err := serial.Run(ctx, p.queues, req.UserID, func(ctx context.Context) (*entity.WithdrawalRequest, error) {
		return serial.InUnitOfWork(ctx, p.uow, func(ctx context.Context) (*entity.WithdrawalRequest, error) {
			if _, err := p.uow.GetAccountRepository(ctx).Lock(ctx, req.UserID); err != nil {
				return nil, fmt.Errorf("failed to lock account: %w", err)
			}

			available, err := p.balances.AvailableBalance(ctx, req.UserID)
			if err != nil {
				return nil, err
			}
			if request.Amount > available {
				return nil, errs.NewInsufficientBalanceError(req.UserID, request.Amount.String(), available.String())
			}

			if err := p.uow.GetWithdrawalRepository(ctx).Create(ctx, request); err != nil {
				return nil, fmt.Errorf("failed to store withdrawal request: %w", err)
			}
			return request, nil
		})
	})
	if err != nil {
		p.logger.Warn("Withdrawal request refused", map[string]any{
			"user_id": req.UserID,
			"amount":  req.Amount.String(),
			"error":   err.Error(),
		})
		return nil, err
	}

	p.logger.Info("Withdrawal request created", map[string]any{
		"withdrawal_id":  created.ID,
		"user_id":        created.UserID,
		"amount":         created.Amount.String(),
		"payment_method": created.PaymentMethod,
	})
	p.notify(ctx, created)
	return created, nil
}
