package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientBalance  = 4001
	CodeValidation           = 4002
	CodeDuplicateTransaction = 4004
	CodeNotFound             = 4040
	CodeStateTransition      = 4090
	CodeRateLimited          = 4290

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeInvariantViolation = 5001
	CodeShuttingDown       = 5030
)

// Base error types
var (
	// ErrValidation is returned when an input is malformed or violates a business rule
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned when a debit exceeds the funds it may draw on
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidStateTransition is returned when a status change is not allowed from the current status
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotFound is returned when a referenced entity does not exist or is not persisted
	ErrNotFound = errors.New("resource not found")

	// ErrInvariantViolation is returned when stored ledger history contradicts a newly computed balance
	ErrInvariantViolation = errors.New("ledger invariant violation")

	// ErrDuplicateTransaction is returned by stores when a ledger entry with the same ID already exists
	ErrDuplicateTransaction = errors.New("transaction with this ID already exists")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrShuttingDown is returned when work is submitted after shutdown has begun
	ErrShuttingDown = errors.New("service is shutting down")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidStateTransition):
		return CodeStateTransition
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrInvariantViolation):
		return CodeInvariantViolation
	case errors.Is(err, ErrShuttingDown):
		return CodeShuttingDown
	default:
		return CodeInternalServer
	}
}

// ValidationError describes malformed input. The message is safe to show to callers.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Is checks if the target error is an ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation",
		"field":      e.Field,
		"reason":     e.Reason,
		"error_code": CodeValidation,
	}
}

// NewValidationError creates a new validation error for the given field
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID    uint64
	Requested string
	Available string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %d: required %s, available %s",
		e.UserID, e.Requested, e.Available)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"user_id":    e.UserID,
		"requested":  e.Requested,
		"available":  e.Available,
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID uint64, requested, available string) error {
	return &InsufficientBalanceError{
		UserID:    userID,
		Requested: requested,
		Available: available,
	}
}

// StateTransitionError is returned when an action is not permitted from the current status
type StateTransitionError struct {
	Entity string
	ID     string
	From   string
	Action string
}

// Error implements the error interface
func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in status %s", e.Action, e.Entity, e.ID, e.From)
}

// Is checks if the target error is an ErrInvalidStateTransition
func (e *StateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// LogFields returns a map of fields for structured logging
func (e *StateTransitionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "state_transition",
		"entity":     e.Entity,
		"entity_id":  e.ID,
		"from":       e.From,
		"action":     e.Action,
		"error_code": CodeStateTransition,
	}
}

// NewStateTransitionError creates a new state transition error
func NewStateTransitionError(entity, id, from, action string) error {
	return &StateTransitionError{Entity: entity, ID: id, From: from, Action: action}
}

// NotFoundError is returned when an entity does not exist or is only a placeholder
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is checks if the target error is an ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// LogFields returns a map of fields for structured logging
func (e *NotFoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "not_found",
		"entity":     e.Entity,
		"entity_id":  e.ID,
		"error_code": CodeNotFound,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvariantViolationError signals that stored history and the running balance disagree.
// It is fatal: the write is rejected and nothing is committed.
type InvariantViolationError struct {
	UserID        uint64
	TransactionID string
	Expected      string
	Actual        string
}

// Error implements the error interface
func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("ledger invariant violated for user %d while writing %s: history says %s, running balance is %s",
		e.UserID, e.TransactionID, e.Expected, e.Actual)
}

// Is checks if the target error is an ErrInvariantViolation
func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// LogFields returns a map of fields for structured logging
func (e *InvariantViolationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "invariant_violation",
		"user_id":        e.UserID,
		"transaction_id": e.TransactionID,
		"expected":       e.Expected,
		"actual":         e.Actual,
		"error_code":     CodeInvariantViolation,
	}
}

// NewInvariantViolationError creates a new invariant violation error
func NewInvariantViolationError(userID uint64, transactionID, expected, actual string) error {
	return &InvariantViolationError{
		UserID:        userID,
		TransactionID: transactionID,
		Expected:      expected,
		Actual:        actual,
	}
}

// DuplicateTransactionError provides detailed information about duplicate transaction attempts
type DuplicateTransactionError struct {
	TransactionID string
	UserID        uint64
}

// Error implements the error interface
func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction detected: transactionID=%s for user %d",
		e.TransactionID, e.UserID)
}

// Is checks if the target error is an ErrDuplicateTransaction
func (e *DuplicateTransactionError) Is(target error) bool {
	return target == ErrDuplicateTransaction
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateTransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "duplicate_transaction",
		"transaction_id": e.TransactionID,
		"user_id":        e.UserID,
		"error_code":     CodeDuplicateTransaction,
	}
}

// NewDuplicateTransactionError creates a new detailed duplicate transaction error
func NewDuplicateTransactionError(transactionID string, userID uint64) error {
	return &DuplicateTransactionError{
		TransactionID: transactionID,
		UserID:        userID,
	}
}

// LogFields extracts structured fields from err when it carries them
func LogFields(err error) map[string]any {
	var lf interface{ LogFields() map[string]any }
	if errors.As(err, &lf) {
		return lf.LogFields()
	}
	return map[string]any{"error": err.Error()}
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsStateTransitionError checks if the error is a rejected state transition
func IsStateTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidStateTransition)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvariantViolationError checks if the error is a ledger invariant violation
func IsInvariantViolationError(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsDuplicateTransactionError checks if the error is a duplicate transaction error
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}
