// Package domainerrors defines the error taxonomy shared by services and
// transports. Services create errors with a Code; transports translate the
// code into an HTTP status without inspecting error strings.
//
// Stores do not use this package directly: they return pkg/platform/sentinel
// errors and services translate them into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for callers. Codes are stable identifiers; the
// message is free-form and safe to surface to API clients.
type Code string

const (
	CodeValidation         Code = "validation"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal"

	// Business-rule rejections. Expected outcomes, not defects; they carry
	// enough context in Details for callers to react.
	CodeNoCopiesAvailable Code = "no_copies_available"
	CodeLoanLimitExceeded Code = "loan_limit_exceeded"
	CodeAlreadyReturned   Code = "already_returned"
)

// Error is a coded domain error. Details is optional structured context
// (current counts, limits) serialized into error responses.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying structured context.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transports fail safe.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the HTTP status contract: absent entities are
// 404, uniqueness violations 409, auth failures 401/403, every other expected
// rejection 400, and anything unexplained 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeInvalidInput, CodeBadRequest,
		CodeNoCopiesAvailable, CodeLoanLimitExceeded, CodeAlreadyReturned,
		CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
