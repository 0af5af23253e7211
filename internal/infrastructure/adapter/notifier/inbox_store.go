package notifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
)

// InboxStore keeps notifications in the user's inbox so they can be listed and marked read
type InboxStore struct {
	uow persistence.UnitOfWork
}

var _ notification.Dispatcher = (*InboxStore)(nil)

// NewInboxStore creates an inbox sink over the given storage
func NewInboxStore(uow persistence.UnitOfWork) *InboxStore {
	return &InboxStore{uow: uow}
}

// Dispatch stores n as unread, assigning an id when it has none
func (s *InboxStore) Dispatch(ctx context.Context, n *entity.Notification) error {
	stored := *n
	stored.Read = false
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := s.uow.GetNotificationRepository(ctx).Create(ctx, &stored); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}
