package model

import (
	"time"
)

// ContentItem is a track or video submitted for moderation
type ContentItem struct {
	ID              string    `gorm:"primaryKey;size:255"`
	OwnerID         uint64    `gorm:"not null;index"`
	Kind            string    `gorm:"not null;size:16"`
	Title           string    `gorm:"not null;size:512"`
	Status          string    `gorm:"not null;size:16"`
	ModerationNote  string    `gorm:"type:text"`
	RejectionReason string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
	ModeratedAt     *time.Time
}

// TableName specifies the table name for ContentItem
func (ContentItem) TableName() string {
	return "content_items"
}
