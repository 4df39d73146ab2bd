// Package apperrors defines the error taxonomy shared by the order and artwork services.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers and maps it onto an HTTP status.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInvalidState    Kind = "INVALID_STATE"
	KindConflict        Kind = "CONFLICT"
	KindUpstream        Kind = "UPSTREAM_FAILURE"
	KindInternal        Kind = "INTERNAL"
)

// HTTPStatus maps the kind onto the status code the API responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Code is the machine-readable code returned to clients,
// Message the human-readable explanation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Unauthenticated reports a missing or unknown caller.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, "UNAUTHORIZED", message)
}

// Forbidden reports an authenticated caller without rights on the resource.
func Forbidden(message string) *Error {
	return New(KindForbidden, "FORBIDDEN", message)
}

// NotFound reports a missing resource under a resource-specific code.
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// InvalidInput reports a request that is malformed or missing data.
func InvalidInput(code, message string) *Error {
	return New(KindInvalidInput, code, message)
}

// InvalidState reports a request that is well formed but not allowed in the current state.
func InvalidState(code, message string) *Error {
	return New(KindInvalidState, code, message)
}

// Conflict reports a concurrent structural change or a uniqueness clash.
func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

// Upstream reports a failure of an external dependency such as file storage.
func Upstream(code, message string, err error) *Error {
	return Wrap(KindUpstream, code, message, err)
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, "INTERNAL_ERROR", message, err)
}

// As extracts the classified error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
