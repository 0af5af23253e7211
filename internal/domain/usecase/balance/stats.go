package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// Stats folds the completed ledger entries and the withdrawal requests of a user
func (s *Service) Stats(ctx context.Context, userID uint64) (*entity.BalanceStats, error) {
	return serial.InReadOnlyUnitOfWork(ctx, s.uow, func(ctx context.Context) (*entity.BalanceStats, error) {
		entries, err := s.ledger.ListTransactions(ctx, userID, entity.TransactionFilter{Status: entity.StatusCompleted})
		if err != nil {
			return nil, err
		}

		now := s.timeProvider.Now().UTC()
		currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		previousMonth := currentMonth.AddDate(0, -1, 0)
		nextMonth := currentMonth.AddDate(0, 1, 0)

		stats := &entity.BalanceStats{UserID: userID}
		var (
			revenueEntries   int64
			fees, withdrawn  entity.Money
			thisMonth, prior entity.Money
		)
		for tx, err := range entries {
			if err != nil {
				return nil, err
			}

			switch {
			case tx.Type.IsRevenue():
				if err := accumulate(&stats.TotalRevenue, tx.Amount); err != nil {
					return nil, err
				}
				revenueEntries++

				at := completionTime(tx)
				switch {
				case !at.Before(currentMonth) && at.Before(nextMonth):
					err = accumulate(&thisMonth, tx.Amount)
				case !at.Before(previousMonth) && at.Before(currentMonth):
					err = accumulate(&prior, tx.Amount)
				}
			case tx.Type == entity.TypeFee:
				err = accumulate(&fees, tx.Amount)
			case tx.Type == entity.TypeWithdrawal:
				err = accumulate(&withdrawn, tx.Amount)
			}
			if err != nil {
				return nil, err
			}
		}

		counts, err := s.uow.GetWithdrawalRepository(ctx).CountByStatus(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count withdrawals: %w", err)
		}
		for _, status := range entity.OutstandingWithdrawalStatuses {
			stats.PendingWithdrawals += counts[status]
		}
		stats.CompletedWithdrawals = counts[entity.WithdrawalCompleted]

		stats.TotalFees = fees.Abs()
		stats.TotalWithdrawn = withdrawn.Abs()
		if revenueEntries > 0 {
			stats.AverageOrderValue = entity.MoneyFromDecimal(
				stats.TotalRevenue.Decimal().Div(decimal.NewFromInt(revenueEntries)))
		}
		stats.MonthOverMonthGrowth = entity.GrowthPercent(thisMonth, prior)

		s.logger.Debug("Balance stats computed", map[string]any{
			"user_id":       userID,
			"total_revenue": stats.TotalRevenue.String(),
			"entries":       revenueEntries,
		})
		return stats, nil
	})
}

func accumulate(total *entity.Money, amount entity.Money) error {
	sum, err := total.Add(amount)
	if err != nil {
		return err
	}
	*total = sum
	return nil
}

func completionTime(tx *entity.BalanceTransaction) time.Time {
	if tx.CompletedAt != nil {
		return tx.CompletedAt.UTC()
	}
	return tx.CreatedAt.UTC()
}
