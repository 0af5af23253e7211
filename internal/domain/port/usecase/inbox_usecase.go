package usecase

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// InboxUseCase reads the stored notifications of a user
type InboxUseCase interface {
	List(ctx context.Context, userID uint64, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, userID uint64, id string) error
}
