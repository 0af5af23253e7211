package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// IndexManager manages PostgreSQL-specific indexes gorm tags cannot express
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{db: db, logger: logger}
}

var indexStatements = []struct {
	name, sql string
}{
	{
		// Reservation sums only touch outstanding requests
		"idx_withdrawals_outstanding",
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_outstanding
		ON withdrawal_requests (user_id)
		INCLUDE (amount)
		WHERE status IN ('pending', 'approved', 'processing')`,
	},
	{
		"idx_ledger_user_seq",
		`CREATE INDEX IF NOT EXISTS idx_ledger_user_seq
		ON balance_transactions (user_id, created_at DESC, seq DESC)`,
	},
	{
		"idx_ledger_pending",
		`CREATE INDEX IF NOT EXISTS idx_ledger_pending
		ON balance_transactions (user_id)
		WHERE status = 'pending'`,
	},
	{
		"idx_ledger_related_entity",
		`CREATE INDEX IF NOT EXISTS idx_ledger_related_entity
		ON balance_transactions (related_entity_type, related_entity_id)
		WHERE related_entity_id <> ''`,
	},
	{
		"idx_ledger_created_at_brin",
		`CREATE INDEX IF NOT EXISTS idx_ledger_created_at_brin
		ON balance_transactions USING BRIN (created_at)
		WITH (pages_per_range = 32)`,
	},
	{
		"idx_notifications_unread",
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread
		ON notifications (user_id, created_at DESC)
		WHERE NOT read`,
	},
}

// CreateIndexes creates every index that does not exist yet
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	m.logger.Info("Creating PostgreSQL indexes", nil)

	db := m.db.WithContext(ctx)
	for _, idx := range indexStatements {
		if err := db.Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	// Ledger rows are never updated after settlement; a high fillfactor is safe
	if err := db.Exec(`ALTER TABLE balance_transactions SET (fillfactor = 90)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for balance_transactions", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}
