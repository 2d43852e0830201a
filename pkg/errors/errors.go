package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every BusinessError unwraps to exactly one of these.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrArithmeticInvariant = errors.New("arithmetic invariant violated")
	ErrDatabase            = errors.New("database error")
	ErrCache               = errors.New("cache error")
)

// Domain errors
var (
	ErrLoanNotFound    = fmt.Errorf("loan %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrRouteNotFound   = fmt.Errorf("route %w", ErrNotFound)
	ErrDuplicateWeek   = fmt.Errorf("week already recorded: %w", ErrConflict)
	ErrLoanHasPayments = fmt.Errorf("loan has payments recorded: %w", ErrConflict)
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
	// Details is returned to the caller alongside the message, e.g. the
	// record that caused a conflict.
	Details interface{}
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodeClientNotFound      = "CLIENT_NOT_FOUND"
	ErrCodeRouteNotFound       = "ROUTE_NOT_FOUND"
	ErrCodeDuplicateWeek       = "DUPLICATE_WEEK"
	ErrCodeLoanHasPayments     = "LOAN_HAS_PAYMENTS"
	ErrCodeArithmeticInvariant = "ARITHMETIC_INVARIANT"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapClientNotFound(clientID string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client with ID %s not found", clientID),
		ErrClientNotFound,
	)
}

func WrapRouteNotFound(routeID string) *BusinessError {
	return NewBusinessError(
		ErrCodeRouteNotFound,
		fmt.Sprintf("Route with ID %s not found", routeID),
		ErrRouteNotFound,
	)
}

// WrapDuplicateWeek reports a second record for a week that already has one.
// The existing record travels in Details.
func WrapDuplicateWeek(loanID string, week int, existing interface{}) *BusinessError {
	e := NewBusinessError(
		ErrCodeDuplicateWeek,
		fmt.Sprintf("Loan %s already has a record for week %d", loanID, week),
		ErrDuplicateWeek,
	)
	e.Details = existing
	return e
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanHasPayments,
		fmt.Sprintf("Loan with ID %s has payments recorded and is not paid off", loanID),
		ErrLoanHasPayments,
	)
}

func WrapArithmeticInvariant(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeArithmeticInvariant,
		message,
		ErrArithmeticInvariant,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		fmt.Errorf("%w: %v", ErrDatabase, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		fmt.Errorf("%w: %v", ErrCache, err),
	)
}

// Is reports whether err is a BusinessError of the given kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
