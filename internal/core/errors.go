// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so a wrapped error still matches its predefined base.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Journal errors
	ErrTradeNotFound = &Error{Code: "TRADE_NOT_FOUND", Message: "trade not found"}
	ErrInvalidTrade  = &Error{Code: "INVALID_TRADE", Message: "invalid trade"}
	ErrInvalidFilter = &Error{Code: "INVALID_FILTER", Message: "invalid trade filter"}
	ErrNoData        = &Error{Code: "NO_DATA", Message: "no data available"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}
	ErrInvalidPath   = &Error{Code: "INVALID_PATH", Message: "invalid archive path"}

	// Market data errors
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "market data provider failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}
)
