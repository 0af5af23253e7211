package dto

import (
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// RegisterContentRequest submits a track or video for moderation
type RegisterContentRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=track video"`
	Title string `json:"title" binding:"required"`
}

// ApproveContentRequest carries an optional moderator note
type ApproveContentRequest struct {
	Note string `json:"note"`
}

// ContentResponse represents a content item
type ContentResponse struct {
	ID              string     `json:"id"`
	OwnerID         uint64     `json:"ownerId"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	ModerationNote  string     `json:"moderationNote,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ModeratedAt     *time.Time `json:"moderatedAt,omitempty"`
}

// NewContentResponse converts a content item
func NewContentResponse(item *entity.ContentItem) ContentResponse {
	return ContentResponse{
		ID:              item.ID,
		OwnerID:         item.OwnerID,
		Kind:            string(item.Kind),
		Title:           item.Title,
		Status:          string(item.Status),
		ModerationNote:  item.ModerationNote,
		RejectionReason: item.RejectionReason,
		CreatedAt:       item.CreatedAt,
		ModeratedAt:     item.ModeratedAt,
	}
}
