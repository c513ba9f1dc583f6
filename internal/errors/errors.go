// Package errors provides the domain errors raised by the console core.
//
// Validation errors (TodayOnly, QuotaExceeded, DuplicateTip, IndexOutOfRange)
// are returned by the operation that would otherwise break an invariant; the
// operation has made no change when one is returned. Check them with errors.Is
// against the sentinels, or switch on Code after errors.As.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error code.
type Code string

const (
	CodeTodayOnly       Code = "TODAY_ONLY"
	CodeQuotaExceeded   Code = "QUOTA_EXCEEDED"
	CodeDuplicateTip    Code = "DUPLICATE_TIP"
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"
	CodeIntegrity       Code = "INTEGRITY"
	CodeValidation      Code = "VALIDATION"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeQuotaExceeded, CodeDuplicateTip, CodeConflict:
		return http.StatusConflict
	case CodeTodayOnly, CodeIndexOutOfRange, CodeIntegrity:
		return http.StatusUnprocessableEntity
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

var (
	ErrTodayOnly       = &Error{Code: CodeTodayOnly, Message: "only today's tips can change their free flag"}
	ErrQuotaExceeded   = &Error{Code: CodeQuotaExceeded, Message: "daily free tip quota reached"}
	ErrDuplicateTip    = &Error{Code: CodeDuplicateTip, Message: "tip already in package"}
	ErrIndexOutOfRange = &Error{Code: CodeIndexOutOfRange, Message: "index out of range"}
	ErrIntegrity       = &Error{Code: CodeIntegrity, Message: "record is missing a required field"}
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict        = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

func TodayOnlyf(format string, args ...any) *Error {
	return &Error{Code: CodeTodayOnly, Message: fmt.Sprintf(format, args...)}
}

func QuotaExceededf(format string, args ...any) *Error {
	return &Error{Code: CodeQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

func DuplicateTipf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateTip, Message: fmt.Sprintf(format, args...)}
}

// IndexOutOfRange reports index against a list of length n.
func IndexOutOfRange(index, n int) *Error {
	return &Error{
		Code:    CodeIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range [0,%d)", index, n),
		Details: map[string]int{"index": index, "length": n},
	}
}

func Integrityf(format string, args ...any) *Error {
	return &Error{Code: CodeIntegrity, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
