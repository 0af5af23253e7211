package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// WithdrawalStatus is a state of the withdrawal request lifecycle
type WithdrawalStatus string

// Withdrawal statuses
const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalApproved   WithdrawalStatus = "approved"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalRejected   WithdrawalStatus = "rejected"
	WithdrawalCancelled  WithdrawalStatus = "cancelled"
)

// Withdrawal actions, as named in state transition errors
const (
	ActionApprove  = "approve"
	ActionProcess  = "process"
	ActionComplete = "complete"
	ActionReject   = "reject"
	ActionCancel   = "cancel"
)

const withdrawalEntity = "withdrawal_request"

// transitions lists, per status, the statuses it may move to
var transitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:    {WithdrawalApproved, WithdrawalRejected, WithdrawalCancelled},
	WithdrawalApproved:   {WithdrawalProcessing, WithdrawalRejected, WithdrawalCancelled},
	WithdrawalProcessing: {WithdrawalCompleted, WithdrawalRejected},
}

// IsValid reports whether s is a known status
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalPending, WithdrawalApproved, WithdrawalProcessing,
		WithdrawalCompleted, WithdrawalRejected, WithdrawalCancelled:
		return true
	}
	return false
}

// IsOutstanding reports whether funds are still reserved for a request in this status
func (s WithdrawalStatus) IsOutstanding() bool {
	return s == WithdrawalPending || s == WithdrawalApproved || s == WithdrawalProcessing
}

// IsTerminal reports whether no further transition is possible
func (s WithdrawalStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to WithdrawalStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OutstandingWithdrawalStatuses are the statuses whose amounts reduce the available balance
var OutstandingWithdrawalStatuses = []WithdrawalStatus{WithdrawalPending, WithdrawalApproved, WithdrawalProcessing}

// PaymentMethod is a payout channel
type PaymentMethod string

// Payment methods
const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodYooMoney     PaymentMethod = "yoomoney"
	MethodCard         PaymentMethod = "card"
	MethodQiwi         PaymentMethod = "qiwi"
	MethodWebMoney     PaymentMethod = "webmoney"
)

var requiredDetails = map[PaymentMethod][]string{
	MethodBankTransfer: {"accountNumber", "bik", "recipientName"},
	MethodYooMoney:     {"walletNumber"},
	MethodCard:         {"cardNumber", "cardHolder"},
	MethodQiwi:         {"phoneNumber"},
	MethodWebMoney:     {"purse"},
}

// IsValid reports whether m is a supported method
func (m PaymentMethod) IsValid() bool {
	_, ok := requiredDetails[m]
	return ok
}

// RequiredDetails returns the payment detail keys m needs
func (m PaymentMethod) RequiredDetails() []string {
	return requiredDetails[m]
}

// PaymentDetails holds method-specific payout fields
type PaymentDetails map[string]string

// Validate checks details against the needs of method
func (d PaymentDetails) Validate(method PaymentMethod) error {
	if !method.IsValid() {
		return errs.NewValidationError("paymentMethod", fmt.Sprintf("unsupported method %q", method))
	}
	for _, key := range method.RequiredDetails() {
		if strings.TrimSpace(d[key]) == "" {
			return errs.NewValidationError("paymentDetails."+key, "is required")
		}
	}
	if method == MethodCard {
		number := strings.ReplaceAll(d["cardNumber"], " ", "")
		if len(number) < 12 || len(number) > 19 || !CheckNumberByLuhn(number) {
			return errs.NewValidationError("paymentDetails.cardNumber", "is not a valid card number")
		}
	}
	return nil
}

// CheckNumberByLuhn validates a digit string with the Luhn checksum
func CheckNumberByLuhn(number string) bool {
	var d int
	if len(number)%2 == 1 {
		d = 1
	}
	var sum int
	for i, c := range number {
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if i%2 == d {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
	}
	return sum%10 == 0
}

// WithdrawalRequest tracks one payout intent. Requests are never deleted.
type WithdrawalRequest struct {
	ID                    string
	UserID                uint64
	Amount                Money // Always positive
	PaymentMethod         PaymentMethod
	PaymentDetails        PaymentDetails
	Status                WithdrawalStatus
	AdminNotes            string
	RejectionReason       string
	ProcessedBy           string
	ProcessedDate         *time.Time
	CompletedDate         *time.Time
	TransactionID         string // Ledger entry created on completion
	ExternalTransactionID string
	PaymentReceiptURL     string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewWithdrawalRequest builds a pending request after validating amount and payment details
func NewWithdrawalRequest(id string, userID uint64, amount Money, method PaymentMethod, details PaymentDetails,
	policy FeePolicy, timeProvider coreport.TimeProvider) (*WithdrawalRequest, error) {
	if userID == 0 {
		return nil, errs.NewValidationError("userId", "must be positive")
	}
	if amount < policy.MinimumWithdrawal {
		return nil, errs.NewValidationError("amount", "must be at least "+policy.MinimumWithdrawal.String())
	}
	if err := details.Validate(method); err != nil {
		return nil, err
	}

	copied := make(PaymentDetails, len(details))
	for k, v := range details {
		copied[k] = strings.TrimSpace(v)
	}

	now := timeProvider.Now()
	return &WithdrawalRequest{
		ID:             id,
		UserID:         userID,
		Amount:         amount,
		PaymentMethod:  method,
		PaymentDetails: copied,
		Status:         WithdrawalPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (w *WithdrawalRequest) moveTo(to WithdrawalStatus, action string, now time.Time) error {
	if !CanTransition(w.Status, to) {
		return errs.NewStateTransitionError(withdrawalEntity, w.ID, string(w.Status), action)
	}
	w.Status = to
	w.UpdatedAt = now
	return nil
}

// Approve moves a pending request to approved
func (w *WithdrawalRequest) Approve(adminNotes, processedBy string, timeProvider coreport.TimeProvider) error {
	now := timeProvider.Now()
	if err := w.moveTo(WithdrawalApproved, ActionApprove, now); err != nil {
		return err
	}
	w.AdminNotes = adminNotes
	w.ProcessedBy = processedBy
	w.ProcessedDate = &now
	return nil
}

// StartProcessing moves an approved request to processing
func (w *WithdrawalRequest) StartProcessing(timeProvider coreport.TimeProvider) error {
	return w.moveTo(WithdrawalProcessing, ActionProcess, timeProvider.Now())
}

// CheckComplete reports whether Complete would be accepted, without changing the request
func (w *WithdrawalRequest) CheckComplete() error {
	if !CanTransition(w.Status, WithdrawalCompleted) {
		return errs.NewStateTransitionError(withdrawalEntity, w.ID, string(w.Status), ActionComplete)
	}
	return nil
}

// Complete moves a processing request to completed and links its ledger entry
func (w *WithdrawalRequest) Complete(transactionID, externalTransactionID, receiptURL string, timeProvider coreport.TimeProvider) error {
	now := timeProvider.Now()
	if err := w.moveTo(WithdrawalCompleted, ActionComplete, now); err != nil {
		return err
	}
	w.TransactionID = transactionID
	w.ExternalTransactionID = externalTransactionID
	w.PaymentReceiptURL = receiptURL
	w.CompletedDate = &now
	return nil
}

// Reject closes the request with a reason. The reason is checked first.
func (w *WithdrawalRequest) Reject(reason string, timeProvider coreport.TimeProvider) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValidationError("reason", "must not be empty")
	}
	if err := w.moveTo(WithdrawalRejected, ActionReject, timeProvider.Now()); err != nil {
		return err
	}
	w.RejectionReason = reason
	return nil
}

// Cancel closes a pending or approved request
func (w *WithdrawalRequest) Cancel(timeProvider coreport.TimeProvider) error {
	return w.moveTo(WithdrawalCancelled, ActionCancel, timeProvider.Now())
}

// Clone returns a deep copy
func (w *WithdrawalRequest) Clone() *WithdrawalRequest {
	c := *w
	c.PaymentDetails = make(PaymentDetails, len(w.PaymentDetails))
	for k, v := range w.PaymentDetails {
		c.PaymentDetails[k] = v
	}
	return &c
}

// WithdrawalCursor is a keyset position in a newest-first listing of requests
type WithdrawalCursor struct {
	CreatedAt time.Time
	ID        string
}

// WithdrawalCursorOf returns the cursor positioned at w
func WithdrawalCursorOf(w *WithdrawalRequest) *WithdrawalCursor {
	return &WithdrawalCursor{CreatedAt: w.CreatedAt, ID: w.ID}
}

// After reports whether w sorts strictly after the cursor in newest-first order
func (c *WithdrawalCursor) After(w *WithdrawalRequest) bool {
	if c == nil {
		return true
	}
	if w.CreatedAt.Equal(c.CreatedAt) {
		return w.ID < c.ID
	}
	return w.CreatedAt.Before(c.CreatedAt)
}
