package memory

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
)

// ContentRepository implements persistence.ContentRepository in memory
type ContentRepository struct {
	store *Store
	tx    *unit
}

func copyItem(item *entity.ContentItem) *entity.ContentItem {
	c := *item
	return &c
}

// Create saves a new item
func (r *ContentRepository) Create(_ context.Context, item *entity.ContentItem) error {
	return r.store.access(r.tx, true, func(v *view) error {
		v.content.put(item.ID, copyItem(item))
		return nil
	})
}

// Update replaces a stored item
func (r *ContentRepository) Update(_ context.Context, item *entity.ContentItem) error {
	return r.store.access(r.tx, true, func(v *view) error {
		if _, exists := v.content.get(item.ID); !exists {
			return errs.NewNotFoundError("content_item", item.ID)
		}
		v.content.put(item.ID, copyItem(item))
		return nil
	})
}

// GetByID retrieves an item
func (r *ContentRepository) GetByID(_ context.Context, id string) (*entity.ContentItem, error) {
	var found *entity.ContentItem
	err := r.store.access(r.tx, false, func(v *view) error {
		item, ok := v.content.get(id)
		if !ok {
			return errs.NewNotFoundError("content_item", id)
		}
		found = copyItem(item)
		return nil
	})
	return found, err
}
