// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, commands and configuration
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Technical indicator calculation errors
//   - Strategy errors (400-499): Strategy configuration and version errors
//   - Trading errors (500-599): Command dispatch and venue errors
//   - Market data errors (700-799): Indicator feed fetching, staleness and parsing errors
//   - Callback errors (800-899): Callback execution failures
//   - Ledger errors (900-999): Persistence, optimistic locking and invariant errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeAccountNotFound, "account %s not found", id)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodePersistenceFailed, "failed to write trade", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeFeedStale) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// As finds the first error in err's chain that matches target. It lets callers
// importing this package reach foreign error types such as exchange API errors.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// hasCodeInChain reports whether any *Error in the chain carries one of the codes.
func hasCodeInChain(err error, codes ...ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		for _, code := range codes {
			if e.Code == code {
				return true
			}
		}

		err = e.Cause
	}

	return false
}

// IsTransientFeedError reports whether the cycle should be skipped because the
// indicator feed could not produce a usable snapshot.
func IsTransientFeedError(err error) bool {
	return hasCodeInChain(err,
		ErrCodeMarketDataFetchFailed,
		ErrCodeMarketDataParseFailed,
		ErrCodeFeedStale,
		ErrCodeInsufficientData,
	)
}

// IsVenueDispatchError reports whether a command was not acknowledged by the venue.
func IsVenueDispatchError(err error) bool {
	return hasCodeInChain(err,
		ErrCodeVenueDispatchFailed,
		ErrCodeVenueTimeout,
		ErrCodeCommandRejected,
		ErrCodeVenueNotConnected,
		ErrCodeChannelClosed,
	)
}

// IsPersistenceError reports whether a ledger write or read failed.
func IsPersistenceError(err error) bool {
	return hasCodeInChain(err, ErrCodePersistenceFailed, ErrCodeVersionConflict, ErrCodeQueryFailed)
}

// IsInvariantViolation reports whether the ledger was found in a state that must never occur.
func IsInvariantViolation(err error) bool {
	return hasCodeInChain(err, ErrCodeInvariantViolation)
}

// InsufficientDataError represents an error when there is not enough data
// for a calculation (e.g., indicator calculations requiring a minimum period).
type InsufficientDataError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Symbol   string // Optional: symbol context
	Message  string // Human-readable message
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
