package balance

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// Service answers balance questions. It never writes.
type Service struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.BalanceUseCase = (*Service)(nil)

// NewService creates a balance query service
func NewService(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		ledger:       ledger,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CurrentBalance is the sum of completed ledger amounts
func (s *Service) CurrentBalance(ctx context.Context, userID uint64) (entity.Money, error) {
	return serial.InReadOnlyUnitOfWork(ctx, s.uow, func(ctx context.Context) (entity.Money, error) {
		return s.ledger.GetBalance(ctx, userID)
	})
}

// AvailableBalance is the current balance minus outstanding withdrawal amounts
func (s *Service) AvailableBalance(ctx context.Context, userID uint64) (entity.Money, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return 0, err
	}
	return summary.Available, nil
}

// Summary reads current and available balance from one snapshot
func (s *Service) Summary(ctx context.Context, userID uint64) (*entity.BalanceSummary, error) {
	return serial.InReadOnlyUnitOfWork(ctx, s.uow, func(ctx context.Context) (*entity.BalanceSummary, error) {
		current, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}

		reserved, err := s.uow.GetWithdrawalRepository(ctx).SumAmount(ctx, userID, entity.OutstandingWithdrawalStatuses)
		if err != nil {
			return nil, fmt.Errorf("failed to sum outstanding withdrawals: %w", err)
		}

		available, err := current.Sub(reserved)
		if err != nil {
			return nil, err
		}

		return &entity.BalanceSummary{
			UserID:    userID,
			Current:   current,
			Available: available,
			Reserved:  reserved,
		}, nil
	})
}
