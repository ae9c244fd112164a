// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, configuration and price series
//   - Data/Resource errors (200-299): Data not found, query failures, snapshot storage
//   - Indicator errors (300-399): Moving average calculation errors
//   - Market data errors (700-799): Market data fetching and parsing errors
//
// Two domain errors carry structured context instead of a code:
//   - InsufficientDataError: the series is shorter than the requested window
//   - DataUnavailableError: a data provider could not deliver a price series
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check for a shortfall
//	var insufficient *errors.InsufficientDataError
//	if errors.As(err, &insufficient) { ... }
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

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// InsufficientDataError and DataUnavailableError map to their category codes.
// Returns ErrCodeUnknown for any other error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}

	if IsDataUnavailableError(err) {
		return ErrCodeDataSourceUnavailable
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned when a price series holds fewer
// observations than the moving average window requires.
type InsufficientDataError struct {
	Required  int    // Window length requested
	Available int    // Observations in the series
	Symbol    string // Optional: symbol context
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, available int, symbol string) *InsufficientDataError {
	return &InsufficientDataError{
		Required:  required,
		Available: available,
		Symbol:    symbol,
	}
}

// Shortfall is the number of missing observations.
func (e *InsufficientDataError) Shortfall() int {
	if e.Available >= e.Required {
		return 0
	}

	return e.Required - e.Available
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("insufficient data for %s: required %d, available %d", e.Symbol, e.Required, e.Available)
	}

	return fmt.Sprintf("insufficient data: required %d, available %d", e.Required, e.Available)
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// DataUnavailableError is returned by data providers when a price series
// cannot be fetched: network failures, unknown tickers and empty responses.
type DataUnavailableError struct {
	Ticker   string
	Provider string
	Cause    error
}

// NewDataUnavailableError creates a new DataUnavailableError.
func NewDataUnavailableError(ticker, provider string, cause error) *DataUnavailableError {
	return &DataUnavailableError{
		Ticker:   ticker,
		Provider: provider,
		Cause:    cause,
	}
}

// Error implements the error interface.
func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("data unavailable for %s", e.Ticker)
	if e.Provider != "" {
		msg += fmt.Sprintf(" from %s", e.Provider)
	}

	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}

	return msg
}

// Unwrap returns the underlying error cause.
func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}

// IsDataUnavailableError checks if an error is a DataUnavailableError.
func IsDataUnavailableError(err error) bool {
	var unavailableErr *DataUnavailableError

	return errors.As(err, &unavailableErr)
}
