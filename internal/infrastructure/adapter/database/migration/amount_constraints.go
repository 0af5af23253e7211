package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// AddAmountConstraints adds CHECK constraints so the database rejects zero ledger amounts
// and non-positive withdrawals even when written around the application
type AddAmountConstraints struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAddAmountConstraints creates a new migration instance
func NewAddAmountConstraints(db *gorm.DB, logger coreport.Logger) *AddAmountConstraints {
	return &AddAmountConstraints{db: db, logger: logger}
}

var amountConstraints = []struct {
	table, name, check string
}{
	{"balance_transactions", "chk_balance_transactions_amount_nonzero", "amount <> 0"},
	{"withdrawal_requests", "chk_withdrawal_requests_amount_positive", "amount > 0"},
	{"accounts", "chk_accounts_entry_count", "entry_count >= 0"},
}

// Run executes the migration; constraints that already exist are skipped
func (m *AddAmountConstraints) Run(ctx context.Context) error {
	m.logger.Info("Adding amount check constraints", nil)

	db := m.db.WithContext(ctx)
	for _, c := range amountConstraints {
		exists, err := m.constraintExists(db, c.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")").Error; err != nil {
			m.logger.Error("Failed to add check constraint", map[string]any{
				"constraint": c.name,
				"error":      err.Error(),
			})
			return err
		}
	}
	return nil
}

func (m *AddAmountConstraints) constraintExists(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, name).Scan(&count).Error
	if err != nil {
		m.logger.Error("Failed to check constraint existence", map[string]any{"error": err.Error()})
		return false, err
	}
	return count > 0, nil
}
