package dto

import (
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// CreateWithdrawalRequest represents the API request for a new payout
type CreateWithdrawalRequest struct {
	Amount         string            `json:"amount" binding:"required"`
	PaymentMethod  string            `json:"paymentMethod" binding:"required"`
	PaymentDetails map[string]string `json:"paymentDetails"`
}

// ApproveWithdrawalRequest carries the reviewer's notes
type ApproveWithdrawalRequest struct {
	AdminNotes  string `json:"adminNotes"`
	ProcessedBy string `json:"processedBy"`
}

// CompleteWithdrawalRequest carries the payout provider's references
type CompleteWithdrawalRequest struct {
	ExternalTransactionID string `json:"externalTransactionId"`
	PaymentReceiptURL     string `json:"paymentReceiptUrl"`
}

// RejectRequest carries a rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// WithdrawalResponse represents a withdrawal request with its display fee
type WithdrawalResponse struct {
	ID                    string            `json:"id"`
	UserID                uint64            `json:"userId"`
	Amount                string            `json:"amount"`
	Fee                   string            `json:"fee"`
	NetAmount             string            `json:"netAmount"`
	PaymentMethod         string            `json:"paymentMethod"`
	PaymentDetails        map[string]string `json:"paymentDetails"`
	Status                string            `json:"status"`
	AdminNotes            string            `json:"adminNotes,omitempty"`
	RejectionReason       string            `json:"rejectionReason,omitempty"`
	ProcessedBy           string            `json:"processedBy,omitempty"`
	ProcessedDate         *time.Time        `json:"processedDate,omitempty"`
	CompletedDate         *time.Time        `json:"completedDate,omitempty"`
	TransactionID         string            `json:"transactionId,omitempty"`
	ExternalTransactionID string            `json:"externalTransactionId,omitempty"`
	PaymentReceiptURL     string            `json:"paymentReceiptUrl,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// QuoteResponse is the fee breakdown of an amount
type QuoteResponse struct {
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	NetAmount string `json:"netAmount"`
}

// WithdrawalCSVHeader lists the export columns
var WithdrawalCSVHeader = []string{
	"id", "userId", "status", "paymentMethod", "amount", "fee", "net",
	"transactionId", "createdAt", "completedDate",
}

// NewQuoteResponse converts a fee quote
func NewQuoteResponse(q entity.FeeQuote) QuoteResponse {
	return QuoteResponse{
		Amount:    q.Amount.String(),
		Fee:       q.Fee.String(),
		NetAmount: q.Net.String(),
	}
}

// NewWithdrawalResponse converts a request, adding the fee quoted for its amount
func NewWithdrawalResponse(w *entity.WithdrawalRequest, quote entity.FeeQuote) WithdrawalResponse {
	return WithdrawalResponse{
		ID:                    w.ID,
		UserID:                w.UserID,
		Amount:                w.Amount.String(),
		Fee:                   quote.Fee.String(),
		NetAmount:             quote.Net.String(),
		PaymentMethod:         string(w.PaymentMethod),
		PaymentDetails:        w.PaymentDetails,
		Status:                string(w.Status),
		AdminNotes:            w.AdminNotes,
		RejectionReason:       w.RejectionReason,
		ProcessedBy:           w.ProcessedBy,
		ProcessedDate:         w.ProcessedDate,
		CompletedDate:         w.CompletedDate,
		TransactionID:         w.TransactionID,
		ExternalTransactionID: w.ExternalTransactionID,
		PaymentReceiptURL:     w.PaymentReceiptURL,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
	}
}

// WithdrawalCSVRow formats a request as an export row
func WithdrawalCSVRow(w *entity.WithdrawalRequest, quote entity.FeeQuote) []string {
	return []string{
		w.ID,
		formatUint(w.UserID),
		string(w.Status),
		string(w.PaymentMethod),
		w.Amount.String(),
		quote.Fee.String(),
		quote.Net.String(),
		w.TransactionID,
		formatTime(&w.CreatedAt),
		formatTime(w.CompletedDate),
	}
}
