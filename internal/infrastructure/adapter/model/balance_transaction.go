package model

import (
	"time"
)

// BalanceTransaction is one row of the append-only ledger. Amounts are kopecks.
type BalanceTransaction struct {
	Seq               uint64     `gorm:"primaryKey;autoIncrement"`
	ID                string     `gorm:"column:id;uniqueIndex;not null;size:255"`
	UserID            uint64     `gorm:"not null;index:idx_ledger_user_created,priority:1"`
	Type              string     `gorm:"not null;size:32"`
	Amount            int64      `gorm:"not null"`
	Description       string     `gorm:"type:text;not null"`
	Status            string     `gorm:"not null;size:32"`
	BalanceBefore     int64      `gorm:"not null"`
	BalanceAfter      int64      `gorm:"not null"`
	RelatedEntityType string     `gorm:"size:64"`
	RelatedEntityID   string     `gorm:"size:255"`
	CreatedAt         time.Time  `gorm:"not null;index:idx_ledger_user_created,priority:2,sort:desc"`
	CompletedAt       *time.Time
}

// TableName specifies the table name for BalanceTransaction
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
