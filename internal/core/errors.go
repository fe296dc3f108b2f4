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

// Is implements errors.Is matching by code.
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
	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrBadBarData       = &Error{Code: "BAD_BAR_DATA", Message: "bar data failed numeric coercion"}
	ErrSchemaUnresolved = &Error{Code: "SCHEMA_UNRESOLVED", Message: "required columns not found in headers"}

	// Benchmark errors
	ErrBenchmarkMissing = &Error{Code: "BENCHMARK_MISSING", Message: "benchmark series unavailable"}

	// Ledger errors
	ErrLedgerRead  = &Error{Code: "LEDGER_READ", Message: "history ledger read failed"}
	ErrLedgerWrite = &Error{Code: "LEDGER_WRITE", Message: "history ledger write failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
