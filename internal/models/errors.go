package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure reported by the data layer wraps exactly one of
// these, so callers can classify with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrAuth        = errors.New("authentication failed")
	ErrPersistence = errors.New("persistence failure")
	ErrFormat      = errors.New("invalid format")
)

// Validation failures.
var (
	ErrMissingCode       = fmt.Errorf("%w: group code is required", ErrValidation)
	ErrInvalidCodeFormat = fmt.Errorf("%w: group code must be exactly %d characters", ErrValidation, CodeLength)
	ErrCodeExpired       = fmt.Errorf("%w: group code has expired, ask the primary user for a new one", ErrValidation)
	ErrCodeRejected      = fmt.Errorf("%w: group code found but could not be used", ErrValidation)
	ErrNegativeReading   = fmt.Errorf("%w: current reading is lower than previous reading", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrNoActiveRate      = fmt.Errorf("%w: no active rate for today", ErrValidation)
)

// Conflicts.
var (
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrDuplicatePhone    = fmt.Errorf("%w: phone number already exists", ErrConflict)
	ErrCodeExhausted     = fmt.Errorf("%w: could not allocate a unique group code", ErrConflict)
	ErrCodeUsed          = fmt.Errorf("%w: group code has already been used, ask the primary user for a new one", ErrConflict)
	ErrCodeTaken         = fmt.Errorf("%w: group code already exists", ErrConflict)
)

// Lookup misses.
var (
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrCodeNotFound        = fmt.Errorf("%w: group code does not exist", ErrNotFound)
	ErrConsumptionNotFound = fmt.Errorf("%w: consumption record", ErrNotFound)
	ErrBillNotFound        = fmt.Errorf("%w: bill", ErrNotFound)
	ErrPaymentNotFound     = fmt.Errorf("%w: payment", ErrNotFound)
)

// Authentication failures. Unknown usernames and wrong passwords share
// ErrInvalidCredentials.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuth)
	ErrAccountDeactivated = fmt.Errorf("%w: account is deactivated", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired session token", ErrAuth)
	ErrForbidden          = fmt.Errorf("%w: operation requires the group's primary user", ErrAuth)
)

// ErrInvalidFormat is returned when an import envelope is malformed.
var ErrInvalidFormat = fmt.Errorf("%w: export envelope is malformed", ErrFormat)
