package entity

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// ContentKind is the type of uploaded content
type ContentKind string

// Content kinds
const (
	KindTrack ContentKind = "track"
	KindVideo ContentKind = "video"
)

// ModerationStatus is the review state of a content item
type ModerationStatus string

// Moderation statuses
const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// ContentItem is a track or video submitted for moderation
type ContentItem struct {
	ID              string
	OwnerID         uint64
	Kind            ContentKind
	Title           string
	Status          ModerationStatus
	ModerationNote  string
	RejectionReason string
	Placeholder     bool // Demo data shown in listings, never persisted for real
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ModeratedAt     *time.Time
}

// NewContentItem creates a pending item for moderation
func NewContentItem(id string, ownerID uint64, kind ContentKind, title string, timeProvider coreport.TimeProvider) (*ContentItem, error) {
	if ownerID == 0 {
		return nil, errs.NewValidationError("ownerId", "must be positive")
	}
	if kind != KindTrack && kind != KindVideo {
		return nil, errs.NewValidationError("kind", "must be track or video")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.NewValidationError("title", "must not be empty")
	}

	now := timeProvider.Now()
	return &ContentItem{
		ID:        id,
		OwnerID:   ownerID,
		Kind:      kind,
		Title:     title,
		Status:    ModerationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PersistedItem is a content item known to exist in storage.
// Obtain one with AsPersisted.
type PersistedItem struct {
	item *ContentItem
}

// AsPersisted wraps item, refusing nil and placeholder items
func AsPersisted(item *ContentItem, id string) (PersistedItem, error) {
	if item == nil || item.Placeholder || item.ID == "" {
		return PersistedItem{}, errs.NewNotFoundError("content_item", id)
	}
	return PersistedItem{item: item}, nil
}

// Item returns the wrapped content item
func (p PersistedItem) Item() *ContentItem {
	return p.item
}

func (p PersistedItem) decide(to ModerationStatus, action string, now time.Time) error {
	item := p.item
	if item.Status != ModerationPending {
		return errs.NewStateTransitionError("content_item", item.ID, string(item.Status), action)
	}
	item.Status = to
	item.UpdatedAt = now
	item.ModeratedAt = &now
	return nil
}

// Approve marks a pending item approved
func (p PersistedItem) Approve(note string, timeProvider coreport.TimeProvider) error {
	if err := p.decide(ModerationApproved, ActionApprove, timeProvider.Now()); err != nil {
		return err
	}
	p.item.ModerationNote = strings.TrimSpace(note)
	return nil
}

// Reject marks a pending item rejected with a reason
func (p PersistedItem) Reject(reason string, timeProvider coreport.TimeProvider) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValidationError("reason", "must not be empty")
	}
	if err := p.decide(ModerationRejected, ActionReject, timeProvider.Now()); err != nil {
		return err
	}
	p.item.RejectionReason = reason
	return nil
}
