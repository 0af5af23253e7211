package memory

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// LedgerRepository implements persistence.LedgerRepository in memory
type LedgerRepository struct {
	store *Store
	tx    *unit
}

func copyTransaction(tx *entity.BalanceTransaction) *entity.BalanceTransaction {
	c := *tx
	return &c
}

// Create appends an entry and assigns the next sequence number
func (r *LedgerRepository) Create(_ context.Context, tx *entity.BalanceTransaction) error {
	return r.store.access(r.tx, true, func(v *view) error {
		if _, exists := v.ledger.get(tx.ID); exists {
			return errs.NewDuplicateTransactionError(tx.ID, tx.UserID)
		}
		r.store.nextSeq++
		tx.Seq = r.store.nextSeq
		v.ledger.put(tx.ID, copyTransaction(tx))
		return nil
	})
}

// Update replaces a stored entry
func (r *LedgerRepository) Update(_ context.Context, tx *entity.BalanceTransaction) error {
	return r.store.access(r.tx, true, func(v *view) error {
		if _, exists := v.ledger.get(tx.ID); !exists {
			return errs.NewNotFoundError("balance_transaction", tx.ID)
		}
		v.ledger.put(tx.ID, copyTransaction(tx))
		return nil
	})
}

// GetByID retrieves an entry
func (r *LedgerRepository) GetByID(_ context.Context, id string) (*entity.BalanceTransaction, error) {
	var found *entity.BalanceTransaction
	err := r.store.access(r.tx, false, func(v *view) error {
		tx, ok := v.ledger.get(id)
		if !ok {
			return errs.NewNotFoundError("balance_transaction", id)
		}
		found = copyTransaction(tx)
		return nil
	})
	return found, err
}

// List returns one page of a user's entries, newest first
func (r *LedgerRepository) List(_ context.Context, userID uint64, filter entity.TransactionFilter,
	after *entity.TransactionCursor, limit int) ([]*entity.BalanceTransaction, error) {
	var page []*entity.BalanceTransaction
	err := r.store.access(r.tx, false, func(v *view) error {
		v.ledger.each(func(tx *entity.BalanceTransaction) {
			if tx.UserID == userID && filter.Matches(tx) && after.After(tx) {
				page = append(page, copyTransaction(tx))
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(page, func(i, j int) bool {
		if page[i].CreatedAt.Equal(page[j].CreatedAt) {
			return page[i].Seq > page[j].Seq
		}
		return page[i].CreatedAt.After(page[j].CreatedAt)
	})
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}
