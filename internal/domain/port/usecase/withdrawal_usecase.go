package usecase

import (
	"context"
	"iter"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// CreateWithdrawalRequest is the input of a new payout request
type CreateWithdrawalRequest struct {
	UserID         uint64
	Amount         entity.Money
	PaymentMethod  entity.PaymentMethod
	PaymentDetails entity.PaymentDetails
}

// WithdrawalUseCase owns the withdrawal request lifecycle
type WithdrawalUseCase interface {
	Create(ctx context.Context, req CreateWithdrawalRequest) (*entity.WithdrawalRequest, error)

	// Quote computes the display fee for an amount
	Quote(amount entity.Money) entity.FeeQuote

	Approve(ctx context.Context, id, adminNotes, processedBy string) (*entity.WithdrawalRequest, error)
	StartProcessing(ctx context.Context, id string) (*entity.WithdrawalRequest, error)

	// Complete debits the ledger once and links the entry to the request
	Complete(ctx context.Context, id, externalTransactionID, receiptURL string) (*entity.WithdrawalRequest, error)

	Reject(ctx context.Context, id, reason string) (*entity.WithdrawalRequest, error)
	Cancel(ctx context.Context, id string) (*entity.WithdrawalRequest, error)

	Get(ctx context.Context, id string) (*entity.WithdrawalRequest, error)

	// List lazily yields a user's requests, newest first
	List(ctx context.Context, userID uint64, statuses []entity.WithdrawalStatus) (iter.Seq2[*entity.WithdrawalRequest, error], error)
}
