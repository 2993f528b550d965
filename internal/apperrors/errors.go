package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrNotYourTurn is returned when the party that made the latest deal action tries to act again.
var ErrNotYourTurn = errors.New("not your turn")

// ErrTerminalState is returned for any transition attempted on an accepted or rejected deal.
var ErrTerminalState = errors.New("deal is in a terminal state")

// ErrConflict indicates the resource changed since the caller last read it.
var ErrConflict = errors.New("resource was modified concurrently")

// ErrKYCRequired is returned when an unverified user attempts a payment.
var ErrKYCRequired = errors.New("identity verification required")

// ErrPayment indicates the payment processor declined or failed an operation.
var ErrPayment = errors.New("payment failed")

// ErrPaymentInProgress is returned when a new funding round is opened before the previous one was released.
var ErrPaymentInProgress = errors.New("previous payment has not been released")

// ErrReconciliation marks a charge that succeeded at the processor but could not be recorded.
var ErrReconciliation = errors.New("payment captured but not recorded")

// ErrInternal is a generic infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is / errors.As. An AppError
// without a cause unwraps to ErrInternal so callers can still classify it.
func (e *AppError) Unwrap() error {
	if e.Err == nil {
		return ErrInternal
	}
	return e.Err
}
