package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/model"
)

const entityLedger = "balance_transaction"

// LedgerRepository implements persistence.LedgerRepository using GORM
type LedgerRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

var _ persistence.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, logger: logger}
}

// postgres keeps microseconds; truncating up front keeps returned entries equal to stored ones
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dbTime(*t)
	return &v
}

func ledgerToModel(tx *entity.BalanceTransaction) model.BalanceTransaction {
	return model.BalanceTransaction{
		Seq:               tx.Seq,
		ID:                tx.ID,
		UserID:            tx.UserID,
		Type:              string(tx.Type),
		Amount:            int64(tx.Amount),
		Description:       tx.Description,
		Status:            string(tx.Status),
		BalanceBefore:     int64(tx.BalanceBefore),
		BalanceAfter:      int64(tx.BalanceAfter),
		RelatedEntityType: tx.RelatedEntityType,
		RelatedEntityID:   tx.RelatedEntityID,
		CreatedAt:         dbTime(tx.CreatedAt),
		CompletedAt:       dbTimePtr(tx.CompletedAt),
	}
}

func ledgerToEntity(m *model.BalanceTransaction) *entity.BalanceTransaction {
	return &entity.BalanceTransaction{
		ID:                m.ID,
		Seq:               m.Seq,
		UserID:            m.UserID,
		Type:              entity.TransactionType(m.Type),
		Amount:            entity.Money(m.Amount),
		Description:       m.Description,
		Status:            entity.TransactionStatus(m.Status),
		BalanceBefore:     entity.Money(m.BalanceBefore),
		BalanceAfter:      entity.Money(m.BalanceAfter),
		RelatedEntityType: m.RelatedEntityType,
		RelatedEntityID:   m.RelatedEntityID,
		CreatedAt:         m.CreatedAt.UTC(),
		CompletedAt:       dbTimePtr(m.CompletedAt),
	}
}

// Create inserts a new entry and assigns its Seq
func (r *LedgerRepository) Create(ctx context.Context, tx *entity.BalanceTransaction) error {
	row := ledgerToModel(tx)
	row.Seq = 0

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate ledger entry detected", map[string]any{
				"transaction_id": tx.ID,
				"user_id":        tx.UserID,
			})
			return errs.NewDuplicateTransactionError(tx.ID, tx.UserID)
		}
		return mapError(r.logger, "creating", entityLedger, tx.ID, err)
	}

	tx.Seq = row.Seq
	tx.CreatedAt = row.CreatedAt
	tx.CompletedAt = row.CompletedAt
	return nil
}

// Update rewrites the settlement fields of an entry
func (r *LedgerRepository) Update(ctx context.Context, tx *entity.BalanceTransaction) error {
	row := ledgerToModel(tx)

	result := r.db.WithContext(ctx).Model(&model.BalanceTransaction{}).
		Where("id = ?", tx.ID).
		Updates(map[string]any{
			"status":         row.Status,
			"balance_before": row.BalanceBefore,
			"balance_after":  row.BalanceAfter,
			"completed_at":   row.CompletedAt,
		})
	if result.Error != nil {
		return mapError(r.logger, "updating", entityLedger, tx.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError(entityLedger, tx.ID)
	}

	tx.CompletedAt = row.CompletedAt
	return nil
}

// GetByID retrieves an entry by its idempotency key
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*entity.BalanceTransaction, error) {
	var row model.BalanceTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(r.logger, "reading", entityLedger, id, err)
	}
	return ledgerToEntity(&row), nil
}

// List returns one keyset page of a user's entries, newest first
func (r *LedgerRepository) List(
	ctx context.Context,
	userID uint64,
	filter entity.TransactionFilter,
	after *entity.TransactionCursor,
	limit int,
) ([]*entity.BalanceTransaction, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", dbTime(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("created_at < ?", dbTime(*filter.DateTo))
	}
	if after != nil {
		at := dbTime(after.CreatedAt)
		query = query.Where("(created_at < ? OR (created_at = ? AND seq < ?))", at, at, after.Seq)
	}

	var rows []model.BalanceTransaction
	err := query.Order("created_at DESC").Order("seq DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, mapError(r.logger, "listing", entityLedger, formatUserID(userID), err)
	}

	page := make([]*entity.BalanceTransaction, len(rows))
	for i := range rows {
		page[i] = ledgerToEntity(&rows[i])
	}
	return page, nil
}
