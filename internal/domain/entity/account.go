package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// Account is the per-user running total kept beside the ledger
type Account struct {
	UserID     uint64    // Owning user
	Balance    Money     // Sum of completed ledger amounts
	EntryCount uint64    // Count of completed entries applied
	LastEntry  string    // ID of the last completed entry applied
	CreatedAt  time.Time // When the first entry was applied
	UpdatedAt  time.Time // When the total last changed
}

// NewAccount creates an empty account for userID
func NewAccount(userID uint64, timeProvider coreport.TimeProvider) (*Account, error) {
	if userID == 0 {
		return nil, errs.NewValidationError("userId", "must be positive")
	}

	now := timeProvider.Now()
	return &Account{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply moves the running total by a completed entry
func (a *Account) Apply(tx *BalanceTransaction, timeProvider coreport.TimeProvider) {
	a.Balance = tx.BalanceAfter
	a.EntryCount++
	a.LastEntry = tx.ID
	a.UpdatedAt = timeProvider.Now()
}
