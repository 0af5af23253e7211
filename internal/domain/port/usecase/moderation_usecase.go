package usecase

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// ModerationUseCase applies the balance side effects of moderation decisions
type ModerationUseCase interface {
	// Register stores a new pending content item
	Register(ctx context.Context, ownerID uint64, kind entity.ContentKind, title string) (*entity.ContentItem, error)

	// Approve charges the moderation fee and approves the item in one unit of work
	Approve(ctx context.Context, itemID, note string) (*entity.ContentItem, error)

	// Reject marks the item rejected without any ledger effect
	Reject(ctx context.Context, itemID, reason string) (*entity.ContentItem, error)
}
