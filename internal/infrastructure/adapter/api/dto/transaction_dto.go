package dto

import (
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// TransactionRequest represents the API request for recording a ledger entry
type TransactionRequest struct {
	TransactionID     string `json:"transactionId"`
	Type              string `json:"type" binding:"required"`
	Amount            string `json:"amount" binding:"required"`
	Description       string `json:"description" binding:"required"`
	RelatedEntityType string `json:"relatedEntityType"`
	RelatedEntityID   string `json:"relatedEntityId"`
	Pending           bool   `json:"pending"`
}

// VoidRequest closes a pending ledger entry
type VoidRequest struct {
	Status string `json:"status" binding:"required,oneof=failed cancelled"`
}

// TransactionResponse represents a ledger entry
type TransactionResponse struct {
	TransactionID     string     `json:"transactionId"`
	UserID            uint64     `json:"userId"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	Amount            string     `json:"amount"`
	BalanceBefore     string     `json:"balanceBefore"`
	BalanceAfter      string     `json:"balanceAfter"`
	Description       string     `json:"description"`
	RelatedEntityType string     `json:"relatedEntityType,omitempty"`
	RelatedEntityID   string     `json:"relatedEntityId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// TransactionCSVHeader lists the export columns
var TransactionCSVHeader = []string{
	"id", "userId", "type", "status", "amount", "balanceBefore", "balanceAfter",
	"description", "relatedEntityType", "relatedEntityId", "createdAt", "completedAt",
}

// NewTransactionResponse converts a ledger entry
func NewTransactionResponse(tx *entity.BalanceTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     tx.ID,
		UserID:            tx.UserID,
		Type:              string(tx.Type),
		Status:            string(tx.Status),
		Amount:            tx.Amount.String(),
		BalanceBefore:     tx.BalanceBefore.String(),
		BalanceAfter:      tx.BalanceAfter.String(),
		Description:       tx.Description,
		RelatedEntityType: tx.RelatedEntityType,
		RelatedEntityID:   tx.RelatedEntityID,
		CreatedAt:         tx.CreatedAt,
		CompletedAt:       tx.CompletedAt,
	}
}

// TransactionCSVRow formats a ledger entry as an export row
func TransactionCSVRow(tx *entity.BalanceTransaction) []string {
	return []string{
		tx.ID,
		formatUint(tx.UserID),
		string(tx.Type),
		string(tx.Status),
		tx.Amount.String(),
		tx.BalanceBefore.String(),
		tx.BalanceAfter.String(),
		tx.Description,
		tx.RelatedEntityType,
		tx.RelatedEntityID,
		formatTime(&tx.CreatedAt),
		formatTime(tx.CompletedAt),
	}
}
