package persistence

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// ContentRepository stores content items awaiting or past moderation
type ContentRepository interface {
	Create(ctx context.Context, item *entity.ContentItem) error

	// Update saves status, notes and moderation time
	Update(ctx context.Context, item *entity.ContentItem) error

	// GetByID retrieves an item
	//
	// Possible errors:
	// - NotFoundError: If the item doesn't exist
	GetByID(ctx context.Context, id string) (*entity.ContentItem, error)
}
