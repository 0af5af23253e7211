package memory

import (
	"context"
	"slices"
	"sort"
	"strconv"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// WithdrawalRepository implements persistence.WithdrawalRepository in memory
type WithdrawalRepository struct {
	store *Store
	tx    *unit
}

func formatUserID(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

// Create saves a new request
func (r *WithdrawalRepository) Create(_ context.Context, request *entity.WithdrawalRequest) error {
	return r.store.access(r.tx, true, func(v *view) error {
		if _, exists := v.withdrawals.get(request.ID); exists {
			return errs.ErrDuplicateTransaction
		}
		v.withdrawals.put(request.ID, request.Clone())
		return nil
	})
}

// Update replaces a stored request
func (r *WithdrawalRepository) Update(_ context.Context, request *entity.WithdrawalRequest) error {
	return r.store.access(r.tx, true, func(v *view) error {
		if _, exists := v.withdrawals.get(request.ID); !exists {
			return errs.NewNotFoundError("withdrawal_request", request.ID)
		}
		v.withdrawals.put(request.ID, request.Clone())
		return nil
	})
}

// GetByID retrieves a request
func (r *WithdrawalRepository) GetByID(_ context.Context, id string) (*entity.WithdrawalRequest, error) {
	var found *entity.WithdrawalRequest
	err := r.store.access(r.tx, false, func(v *view) error {
		w, ok := v.withdrawals.get(id)
		if !ok {
			return errs.NewNotFoundError("withdrawal_request", id)
		}
		found = w.Clone()
		return nil
	})
	return found, err
}

// List returns one page of a user's requests, newest first
func (r *WithdrawalRepository) List(_ context.Context, userID uint64, statuses []entity.WithdrawalStatus,
	after *entity.WithdrawalCursor, limit int) ([]*entity.WithdrawalRequest, error) {
	var page []*entity.WithdrawalRequest
	err := r.store.access(r.tx, false, func(v *view) error {
		v.withdrawals.each(func(w *entity.WithdrawalRequest) {
			if w.UserID != userID || !after.After(w) {
				return
			}
			if len(statuses) > 0 && !slices.Contains(statuses, w.Status) {
				return
			}
			page = append(page, w.Clone())
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(page, func(i, j int) bool {
		if page[i].CreatedAt.Equal(page[j].CreatedAt) {
			return page[i].ID > page[j].ID
		}
		return page[i].CreatedAt.After(page[j].CreatedAt)
	})
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}

// SumAmount totals a user's requests in the given statuses
func (r *WithdrawalRepository) SumAmount(_ context.Context, userID uint64, statuses []entity.WithdrawalStatus) (entity.Money, error) {
	var total entity.Money
	err := r.store.access(r.tx, false, func(v *view) error {
		var sumErr error
		v.withdrawals.each(func(w *entity.WithdrawalRequest) {
			if sumErr == nil && w.UserID == userID && slices.Contains(statuses, w.Status) {
				total, sumErr = total.Add(w.Amount)
			}
		})
		return sumErr
	})
	return total, err
}

// CountByStatus counts a user's requests per status
func (r *WithdrawalRepository) CountByStatus(_ context.Context, userID uint64) (map[entity.WithdrawalStatus]int, error) {
	counts := make(map[entity.WithdrawalStatus]int)
	err := r.store.access(r.tx, false, func(v *view) error {
		v.withdrawals.each(func(w *entity.WithdrawalRequest) {
			if w.UserID == userID {
				counts[w.Status]++
			}
		})
		return nil
	})
	return counts, err
}
