package domain

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrValidation    = errors.New("validation failed")
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrValidation)

	// Lookup and authorization errors
	ErrNotFound         = errors.New("not found")
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrMovementNotFound = fmt.Errorf("movement %w", ErrNotFound)
	ErrNotOwned         = errors.New("resource belongs to another owner")

	// Account errors
	ErrDuplicateName   = errors.New("an account with this name already exists")
	ErrHasHistory      = errors.New("account has movement history and can only be deactivated")
	ErrAccountInactive = fmt.Errorf("%w: account is inactive", ErrValidation)

	// Ledger errors
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccount         = errors.New("source and destination accounts cannot be the same")
	ErrEditWindowExpired   = errors.New("movement is too old to be edited")
	ErrDeleteWindowExpired = errors.New("movement is too old to be deleted")
	ErrAlreadyDeleted      = fmt.Errorf("%w: movement is already deleted", ErrValidation)

	// Persistence errors
	ErrStorageFailure = errors.New("storage failure")
)

// StorageError wraps a persistence error so callers can detect it with
// errors.Is(err, ErrStorageFailure) while keeping the driver error reachable.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// IsBusinessError reports whether err is one of the ledger's typed rule
// violations rather than an infrastructure failure.
func IsBusinessError(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrHasHistory),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrEditWindowExpired),
		errors.Is(err, ErrDeleteWindowExpired):
		return true
	}
	return false
}
