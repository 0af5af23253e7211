package memory

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// AccountRepository implements persistence.AccountRepository in memory
type AccountRepository struct {
	store *Store
	tx    *unit
}

func copyAccount(a *entity.Account) *entity.Account {
	c := *a
	return &c
}

// GetByUserID reads an account
func (r *AccountRepository) GetByUserID(_ context.Context, userID uint64) (*entity.Account, error) {
	var found *entity.Account
	err := r.store.access(r.tx, false, func(v *view) error {
		a, ok := v.accounts.get(userID)
		if !ok {
			return errs.NewNotFoundError("account", formatUserID(userID))
		}
		found = copyAccount(a)
		return nil
	})
	return found, err
}

// Lock returns the account, creating it when missing. The store lock held by
// the unit of work already excludes other writers.
func (r *AccountRepository) Lock(_ context.Context, userID uint64) (*entity.Account, error) {
	var locked *entity.Account
	err := r.store.access(r.tx, true, func(v *view) error {
		if a, ok := v.accounts.get(userID); ok {
			locked = copyAccount(a)
			return nil
		}
		a, err := entity.NewAccount(userID, r.store.timeProvider)
		if err != nil {
			return err
		}
		v.accounts.put(userID, a)
		locked = copyAccount(a)
		return nil
	})
	return locked, err
}

// Save stores the running total
func (r *AccountRepository) Save(_ context.Context, account *entity.Account) error {
	return r.store.access(r.tx, true, func(v *view) error {
		v.accounts.put(account.UserID, copyAccount(account))
		return nil
	})
}
