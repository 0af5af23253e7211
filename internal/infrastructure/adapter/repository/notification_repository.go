package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/model"
)

const entityNotification = "notification"

// NotificationRepository implements persistence.NotificationRepository using GORM
type NotificationRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

var _ persistence.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new NotificationRepository instance
func NewNotificationRepository(db *gorm.DB, logger coreport.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	row := model.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: dbTime(n.CreatedAt),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapError(r.logger, "creating", entityNotification, n.ID, err)
	}
	return nil
}

// ListByUser returns the newest notifications of a user
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, mapError(r.logger, "listing", entityNotification, formatUserID(userID), err)
	}

	list := make([]*entity.Notification, len(rows))
	for i, row := range rows {
		list[i] = &entity.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Type:      row.Type,
			Title:     row.Title,
			Message:   row.Message,
			Read:      row.Read,
			CreatedAt: row.CreatedAt.UTC(),
		}
	}
	return list, nil
}

// MarkRead flags a notification of the user as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uint64, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return mapError(r.logger, "updating", entityNotification, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError(entityNotification, id)
	}
	return nil
}
