package memory

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// NotificationRepository implements persistence.NotificationRepository in memory
type NotificationRepository struct {
	store *Store
	tx    *unit
}

// Create stores a notification
func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	return r.store.access(r.tx, true, func(v *view) error {
		c := *n
		v.notifications.put(n.ID, &c)
		return nil
	})
}

// ListByUser returns a user's newest notifications
func (r *NotificationRepository) ListByUser(_ context.Context, userID uint64, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	var list []*entity.Notification
	err := r.store.access(r.tx, false, func(v *view) error {
		v.notifications.each(func(n *entity.Notification) {
			if n.UserID == userID && (!unreadOnly || !n.Read) {
				c := *n
				list = append(list, &c)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// MarkRead flags a notification of the user as read
func (r *NotificationRepository) MarkRead(_ context.Context, userID uint64, id string) error {
	return r.store.access(r.tx, true, func(v *view) error {
		n, ok := v.notifications.get(id)
		if !ok || n.UserID != userID {
			return errs.NewNotFoundError("notification", id)
		}
		c := *n
		c.Read = true
		v.notifications.put(id, &c)
		return nil
	})
}
