package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// TransactionType classifies a balance-affecting event
type TransactionType string

// Transaction types
const (
	TypeDonation   TransactionType = "donation"
	TypeRoyalty    TransactionType = "royalty"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeFee        TransactionType = "fee"
	TypeRefund     TransactionType = "refund"
	TypeBonus      TransactionType = "bonus"
	TypeAdjustment TransactionType = "adjustment"
)

// TransactionStatus defines possible status values for a ledger entry
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Related entity kinds referenced from ledger entries
const (
	RelatedWithdrawalRequest = "withdrawal_request"
	RelatedContentItem       = "content_item"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeDonation, TypeRoyalty, TypeWithdrawal, TypeFee, TypeRefund, TypeBonus, TypeAdjustment:
		return true
	}
	return false
}

// AllowsNegativeBalance reports whether an entry of this type may drive the balance below zero
func (t TransactionType) AllowsNegativeBalance() bool {
	return t == TypeAdjustment
}

// IsRevenue reports whether the type counts as earned income
func (t TransactionType) IsRevenue() bool {
	return t == TypeDonation || t == TypeRoyalty || t == TypeBonus
}

// IsValid reports whether s is a known transaction status
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// BalanceTransaction is one append-only ledger entry
type BalanceTransaction struct {
	ID                string            // Idempotency key
	Seq               uint64            // Store-assigned insertion order
	UserID            uint64            // Owning account
	Type              TransactionType   // Kind of event
	Amount            Money             // Signed: positive credit, negative debit
	Description       string            // Human readable description
	Status            TransactionStatus // Lifecycle status
	BalanceBefore     Money             // Running balance before this entry
	BalanceAfter      Money             // Running balance after this entry
	RelatedEntityType string            // e.g. withdrawal_request, content_item
	RelatedEntityID   string            // ID of the related entity
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// NewTransaction is the input of a ledger write
type NewTransaction struct {
	ID                string
	UserID            uint64
	Type              TransactionType
	Amount            Money
	Description       string
	RelatedEntityType string
	RelatedEntityID   string
	// Pending marks the entry as in-flight: it is stored but does not move the balance
	Pending bool
}

// Validate checks the fields every ledger write needs
func (n NewTransaction) Validate() error {
	if n.UserID == 0 {
		return errs.NewValidationError("userId", "must be positive")
	}
	if strings.TrimSpace(n.ID) == "" {
		return errs.NewValidationError("id", "must not be empty")
	}
	if !n.Type.IsValid() {
		return errs.NewValidationError("transactionType", fmt.Sprintf("unknown type %q", n.Type))
	}
	if n.Amount.IsZero() {
		return errs.NewValidationError("amount", "must not be zero")
	}
	if !n.Amount.InRange() {
		return errs.NewValidationError("amount", "magnitude exceeds "+MaxAmount.String())
	}
	if strings.TrimSpace(n.Description) == "" {
		return errs.NewValidationError("description", "must not be empty")
	}
	return nil
}

// NewBalanceTransaction builds the entry for req on top of the running balance.
// It fails with an insufficient balance error when a non-adjustment entry would leave
// the balance negative.
func NewBalanceTransaction(req NewTransaction, balanceBefore Money, timeProvider tport.TimeProvider) (*BalanceTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	tx := &BalanceTransaction{
		ID:                req.ID,
		UserID:            req.UserID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
		Status:            StatusCompleted,
		CreatedAt:         now,
	}
	if err := tx.snapshot(balanceBefore); err != nil {
		return nil, err
	}

	if req.Pending {
		tx.Status = StatusPending
	} else {
		tx.CompletedAt = &now
	}
	return tx, nil
}

// snapshot sets the before/after balances, enforcing the non-negative rule
func (t *BalanceTransaction) snapshot(balanceBefore Money) error {
	after, err := balanceBefore.Add(t.Amount)
	if err != nil {
		return err
	}
	if after < 0 && !t.Type.AllowsNegativeBalance() {
		return errs.NewInsufficientBalanceError(t.UserID, t.Amount.Abs().String(), balanceBefore.String())
	}
	t.BalanceBefore = balanceBefore
	t.BalanceAfter = after
	return nil
}

// Settle completes a pending entry against the current running balance
func (t *BalanceTransaction) Settle(balanceBefore Money, timeProvider tport.TimeProvider) error {
	if t.Status != StatusPending {
		return errs.NewStateTransitionError("balance_transaction", t.ID, string(t.Status), "settle")
	}
	if err := t.snapshot(balanceBefore); err != nil {
		return err
	}
	now := timeProvider.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	return nil
}

// Void closes a pending entry as failed or cancelled without touching the balance
func (t *BalanceTransaction) Void(status TransactionStatus) error {
	if status != StatusFailed && status != StatusCancelled {
		return errs.NewValidationError("status", "must be failed or cancelled")
	}
	if t.Status != StatusPending {
		return errs.NewStateTransitionError("balance_transaction", t.ID, string(t.Status), "void")
	}
	t.Status = status
	return nil
}

// IsCompleted reports whether the entry counts toward the balance
func (t *BalanceTransaction) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsConsistent checks balanceAfter = balanceBefore + amount
func (t *BalanceTransaction) IsConsistent() bool {
	return t.BalanceAfter == t.BalanceBefore+t.Amount
}

// TransactionFilter narrows a ledger listing. Zero values mean "any".
type TransactionFilter struct {
	Type     TransactionType
	Status   TransactionStatus
	DateFrom *time.Time // inclusive
	DateTo   *time.Time // exclusive
}

// Validate checks the filter values
func (f TransactionFilter) Validate() error {
	if f.Type != "" && !f.Type.IsValid() {
		return errs.NewValidationError("type", fmt.Sprintf("unknown type %q", f.Type))
	}
	if f.Status != "" && !f.Status.IsValid() {
		return errs.NewValidationError("status", fmt.Sprintf("unknown status %q", f.Status))
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return errs.NewValidationError("dateFrom", "must not be after dateTo")
	}
	return nil
}

// Matches reports whether tx passes the filter
func (f TransactionFilter) Matches(tx *BalanceTransaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && tx.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && !tx.CreatedAt.Before(*f.DateTo) {
		return false
	}
	return true
}

// TransactionCursor is a keyset position in a newest-first listing
type TransactionCursor struct {
	CreatedAt time.Time
	Seq       uint64
}

// CursorOf returns the cursor positioned at tx
func CursorOf(tx *BalanceTransaction) *TransactionCursor {
	return &TransactionCursor{CreatedAt: tx.CreatedAt, Seq: tx.Seq}
}

// After reports whether tx sorts strictly after the cursor in newest-first order
func (c *TransactionCursor) After(tx *BalanceTransaction) bool {
	if c == nil {
		return true
	}
	if tx.CreatedAt.Equal(c.CreatedAt) {
		return tx.Seq < c.Seq
	}
	return tx.CreatedAt.Before(c.CreatedAt)
}
