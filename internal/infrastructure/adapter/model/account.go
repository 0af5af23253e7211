package model

import (
	"time"
)

// Account holds the running balance of a user. The row doubles as the per-user write lock.
type Account struct {
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false"`
	Balance    int64     `gorm:"not null;default:0"`
	EntryCount uint64    `gorm:"not null;default:0"`
	LastEntry  string    `gorm:"size:255"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
