package inbox

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
)

// DefaultLimit caps how many notifications one listing returns
const DefaultLimit = 50

// Service reads and acknowledges stored notifications
type Service struct {
	uow persistence.UnitOfWork
}

var _ usecase.InboxUseCase = (*Service)(nil)

// NewService creates an inbox service
func NewService(uow persistence.UnitOfWork) *Service {
	return &Service{uow: uow}
}

// List returns the newest notifications of a user
func (s *Service) List(ctx context.Context, userID uint64, unreadOnly bool) ([]*entity.Notification, error) {
	if userID == 0 {
		return nil, errs.NewValidationError("userId", "must be positive")
	}
	return s.uow.GetNotificationRepository(ctx).ListByUser(ctx, userID, unreadOnly, DefaultLimit)
}

// MarkRead acknowledges one notification
func (s *Service) MarkRead(ctx context.Context, userID uint64, id string) error {
	if userID == 0 {
		return errs.NewValidationError("userId", "must be positive")
	}
	if strings.TrimSpace(id) == "" {
		return errs.NewValidationError("notificationId", "must not be empty")
	}
	return s.uow.GetNotificationRepository(ctx).MarkRead(ctx, userID, id)
}
