package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes surfaced to clients alongside the HTTP status.
const (
	CodeValidation      = "validation_error"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeUpstreamAuth    = "upstream_auth_error"
	CodeUpstreamParse   = "upstream_parse_error"
	CodeRejected        = "rejected"
	CodeInternal        = "internal_error"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
	// Private causes are logged but never sent to clients.
	Private bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string, err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, message, err)
}

func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, message, nil)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message, nil)
}

// UpstreamAuth reports that the AI provider rejected our credentials. It reuses 403
// so clients can tell it apart from their own expired session (401).
func UpstreamAuth(err error) *Error {
	e := New(http.StatusForbidden, CodeUpstreamAuth, "AI provider rejected the configured credentials", err)
	e.Private = true
	return e
}

func UpstreamParse(err error) *Error {
	return New(http.StatusUnprocessableEntity, CodeUpstreamParse, "could not understand the AI response", err)
}

// Rejected is an explicit refusal by the generator (e.g. the named plant is not real).
func Rejected(reason string) *Error {
	return New(http.StatusBadRequest, CodeRejected, reason, nil)
}

func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, message, err)
}

// As extracts an *Error from err, or wraps anything else as an internal error.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error", err)
}
