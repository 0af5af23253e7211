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

const entityContent = "content_item"

// ContentRepository implements persistence.ContentRepository using GORM.
// Placeholder items never reach this table.
type ContentRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

var _ persistence.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository creates a new ContentRepository instance
func NewContentRepository(db *gorm.DB, logger coreport.Logger) *ContentRepository {
	return &ContentRepository{db: db, logger: logger}
}

func contentToModel(item *entity.ContentItem) model.ContentItem {
	return model.ContentItem{
		ID:              item.ID,
		OwnerID:         item.OwnerID,
		Kind:            string(item.Kind),
		Title:           item.Title,
		Status:          string(item.Status),
		ModerationNote:  item.ModerationNote,
		RejectionReason: item.RejectionReason,
		CreatedAt:       dbTime(item.CreatedAt),
		UpdatedAt:       dbTime(item.UpdatedAt),
		ModeratedAt:     dbTimePtr(item.ModeratedAt),
	}
}

func contentToEntity(m *model.ContentItem) *entity.ContentItem {
	return &entity.ContentItem{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		Kind:            entity.ContentKind(m.Kind),
		Title:           m.Title,
		Status:          entity.ModerationStatus(m.Status),
		ModerationNote:  m.ModerationNote,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
		ModeratedAt:     dbTimePtr(m.ModeratedAt),
	}
}

// Create stores a new item
func (r *ContentRepository) Create(ctx context.Context, item *entity.ContentItem) error {
	if item.Placeholder {
		return errs.NewValidationError("contentItem", "placeholder items cannot be stored")
	}
	row := contentToModel(item)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapError(r.logger, "creating", entityContent, item.ID, err)
	}
	return nil
}

// Update saves status, notes and moderation time
func (r *ContentRepository) Update(ctx context.Context, item *entity.ContentItem) error {
	row := contentToModel(item)

	result := r.db.WithContext(ctx).Model(&model.ContentItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":           row.Status,
			"moderation_note":  row.ModerationNote,
			"rejection_reason": row.RejectionReason,
			"moderated_at":     row.ModeratedAt,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return mapError(r.logger, "updating", entityContent, item.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError(entityContent, item.ID)
	}
	return nil
}

// GetByID retrieves an item
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*entity.ContentItem, error) {
	var row model.ContentItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(r.logger, "reading", entityContent, id, err)
	}
	return contentToEntity(&row), nil
}
