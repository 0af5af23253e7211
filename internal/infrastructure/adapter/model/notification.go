package model

import (
	"time"
)

// Notification is one inbox entry
type Notification struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint64    `gorm:"not null;index:idx_notifications_user_created,priority:1"`
	Type      string    `gorm:"not null;size:64"`
	Title     string    `gorm:"not null;size:255"`
	Message   string    `gorm:"type:text;not null"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index:idx_notifications_user_created,priority:2,sort:desc"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
