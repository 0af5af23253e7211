package migration

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
)

// DemoUserIDs are the accounts that receive an opening bonus in demo deployments
var DemoUserIDs = []uint64{1, 2, 3, 4, 5}

// DemoBonusEntryID is the ledger id of the opening bonus of a demo user
func DemoBonusEntryID(userID uint64) string {
	return fmt.Sprintf("seed-bonus:%d", userID)
}

// SeedDemoBalances credits every demo user with an opening bonus through the ledger.
// Entry ids are fixed, so running it again records nothing new.
func SeedDemoBalances(ctx context.Context, ledger usecase.LedgerUseCase, userIDs []uint64, amount entity.Money, logger coreport.Logger) error {
	logger.Info("Seeding demo balances", map[string]any{
		"users":  len(userIDs),
		"amount": amount.String(),
	})

	for _, userID := range userIDs {
		tx, err := ledger.Record(ctx, entity.NewTransaction{
			ID:          DemoBonusEntryID(userID),
			UserID:      userID,
			Type:        entity.TypeBonus,
			Amount:      amount,
			Description: "Welcome bonus",
		})
		if err != nil {
			logger.Error("Failed to seed demo balance", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
			return fmt.Errorf("seed user %d: %w", userID, err)
		}

		logger.Debug("Demo balance seeded", map[string]any{
			"user_id":       userID,
			"balance_after": tx.BalanceAfter.String(),
		})
	}
	return nil
}
