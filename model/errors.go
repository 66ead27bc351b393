package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the machine-readable classification of a domain error. The
// frontend surfaces the message verbatim; the kind drives the HTTP status.
type ErrorKind string

const (
	ErrNotFound              ErrorKind = "NOT_FOUND"
	ErrConflict              ErrorKind = "CONFLICT"
	ErrInvariantViolation    ErrorKind = "INVARIANT_VIOLATION"
	ErrOutOfStock            ErrorKind = "OUT_OF_STOCK"
	ErrStateViolation        ErrorKind = "STATE_VIOLATION"
	ErrRenewalLimitExceeded  ErrorKind = "RENEWAL_LIMIT_EXCEEDED"
	ErrRenewalNotAllowed     ErrorKind = "RENEWAL_NOT_ALLOWED"
	ErrAlreadyOverdue        ErrorKind = "ALREADY_OVERDUE"
	ErrAlreadyReserved       ErrorKind = "ALREADY_RESERVED"
	ErrBookAvailable         ErrorKind = "BOOK_AVAILABLE"
	ErrUserAtLoanLimit       ErrorKind = "USER_AT_LOAN_LIMIT"
	ErrUserAtReservationLimit ErrorKind = "USER_AT_RESERVATION_LIMIT"
	ErrInvalidCapacity       ErrorKind = "INVALID_CAPACITY"
	ErrPermissionDenied      ErrorKind = "PERMISSION_DENIED"
	ErrValidation            ErrorKind = "VALIDATION_ERROR"
)

// DomainError is a recoverable business-rule failure. It never crashes the
// process; handlers map it to a status code and the envelope message.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err when it wraps a DomainError, empty otherwise.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}
