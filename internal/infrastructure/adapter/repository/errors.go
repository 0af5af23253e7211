package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	LockError         ErrorType = "lock"
	ConstraintError   ErrorType = "constraint"
	ConnectionError   ErrorType = "connection"
	CanceledError     ErrorType = "canceled"
)

// Postgres SQLSTATE codes
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// Classify returns the type of err, or "" when it carries no postgres error code we know
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CanceledError
	}
	// gorm's translated errors replace the pgconn error when TranslateError is on
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return DuplicateKeyError
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return ConstraintError
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
			return ConnectionError
		}
		return ""
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return DuplicateKeyError
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return LockError
	case codeCheckViolation, codeForeignKeyViolation, codeNotNullViolation:
		return ConstraintError
	}
	// Class 08: connection exception
	if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
		return ConnectionError
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a unique violation
func IsDuplicateKeyError(err error) bool {
	return Classify(err) == DuplicateKeyError
}

// IsTransient reports whether retrying the whole unit of work may succeed
func IsTransient(err error) bool {
	switch Classify(err) {
	case LockError, ConnectionError:
		return true
	default:
		return false
	}
}

// mapError converts a gorm error into a domain error for entity/id
func mapError(logger coreport.Logger, operation, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFoundError(entity, id)
	}

	kind := Classify(err)
	if kind == CanceledError {
		return fmt.Errorf("%s %s: %w", operation, entity, err)
	}

	logger.Error(fmt.Sprintf("Database error when %s %s", operation, entity), map[string]any{
		"entity_id":  id,
		"error":      err.Error(),
		"error_kind": string(kind),
	})
	return fmt.Errorf("%w: %s %s: %w", errs.ErrDatabaseConnection, operation, entity, err)
}
