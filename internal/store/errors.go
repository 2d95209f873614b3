package store

import (
	"errors"
	"fmt"
)

// Code classifies a store failure so callers can react precisely
// instead of pattern-matching error strings.
type Code string

const (
	CodeDBError          Code = "DB_ERROR"
	CodeDuplicateName    Code = "DUPLICATE_NAME"
	CodeHasReferences    Code = "HAS_REFERENCES"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidTimeRange Code = "INVALID_TIME_RANGE"
	CodeDurationTooLong  Code = "DURATION_TOO_LONG"
	CodeSingleSelect     Code = "SINGLE_SELECT"
	CodeExportError      Code = "EXPORT_ERROR"
)

// Error is the typed failure every store operation returns. Message is
// for display; Code is for program logic; the wrapped cause (if any) is
// diagnostic only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// dbError wraps an underlying persistence failure as a generic DB_ERROR.
func dbError(op string, err error) *Error {
	return &Error{Code: CodeDBError, Message: op + " failed", cause: err}
}

// ErrCode extracts the Code from err. Untyped non-nil errors report
// DB_ERROR; nil reports the empty code.
func ErrCode(err error) Code {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeDBError
}
