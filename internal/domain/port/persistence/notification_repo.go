package persistence

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// NotificationRepository is the per-user notification inbox
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error

	// ListByUser returns the newest notifications of a user, at most limit
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]*entity.Notification, error)

	// MarkRead flags a notification as read
	//
	// Possible errors:
	// - NotFoundError: If the notification doesn't exist for the user
	MarkRead(ctx context.Context, userID uint64, id string) error
}
