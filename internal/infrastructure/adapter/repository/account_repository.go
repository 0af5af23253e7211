package repository

import (
	"context"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/model"
)

const entityAccount = "account"

// AccountRepository implements persistence.AccountRepository using GORM.
// Lock relies on SELECT ... FOR UPDATE and only holds inside a transaction.
type AccountRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ persistence.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{db: db, timeProvider: timeProvider, logger: logger}
}

func formatUserID(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

func accountToEntity(m *model.Account) *entity.Account {
	return &entity.Account{
		UserID:     m.UserID,
		Balance:    entity.Money(m.Balance),
		EntryCount: m.EntryCount,
		LastEntry:  m.LastEntry,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

// GetByUserID reads an account without locking it
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error) {
	var row model.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, mapError(r.logger, "reading", entityAccount, formatUserID(userID), err)
	}
	return accountToEntity(&row), nil
}

// Lock creates the account row when missing and locks it until the transaction ends
func (r *AccountRepository) Lock(ctx context.Context, userID uint64) (*entity.Account, error) {
	now := dbTime(r.timeProvider.Now())
	seed := model.Account{UserID: userID, CreatedAt: now, UpdatedAt: now}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, mapError(r.logger, "creating", entityAccount, formatUserID(userID), err)
	}

	var row model.Account
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		return nil, mapError(r.logger, "locking", entityAccount, formatUserID(userID), err)
	}

	r.logger.Debug("Account row locked", map[string]any{"user_id": userID})
	return accountToEntity(&row), nil
}

// Save persists the running total
func (r *AccountRepository) Save(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ?", account.UserID).
		Updates(map[string]any{
			"balance":     int64(account.Balance),
			"entry_count": account.EntryCount,
			"last_entry":  account.LastEntry,
			"updated_at":  dbTime(account.UpdatedAt),
		})
	if result.Error != nil {
		return mapError(r.logger, "saving", entityAccount, formatUserID(account.UserID), result.Error)
	}
	if result.RowsAffected == 0 {
		return mapError(r.logger, "saving", entityAccount, formatUserID(account.UserID), gorm.ErrRecordNotFound)
	}
	return nil
}
