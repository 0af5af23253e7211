package model

import (
	"time"
)

// WithdrawalRequest is a payout request. PaymentDetails is stored as jsonb.
type WithdrawalRequest struct {
	ID                    string            `gorm:"primaryKey;size:255"`
	UserID                uint64            `gorm:"not null;index:idx_withdrawals_user_status,priority:1"`
	Amount                int64             `gorm:"not null"`
	PaymentMethod         string            `gorm:"not null;size:32"`
	PaymentDetails        map[string]string `gorm:"type:jsonb;serializer:json;not null"`
	Status                string            `gorm:"not null;size:32;index:idx_withdrawals_user_status,priority:2"`
	AdminNotes            string            `gorm:"type:text"`
	RejectionReason       string            `gorm:"type:text"`
	ProcessedBy           string            `gorm:"size:255"`
	ProcessedDate         *time.Time
	CompletedDate         *time.Time
	TransactionID         string    `gorm:"size:255"`
	ExternalTransactionID string    `gorm:"size:255"`
	PaymentReceiptURL     string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null;index"`
	UpdatedAt             time.Time `gorm:"not null"`
}

// TableName specifies the table name for WithdrawalRequest
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
