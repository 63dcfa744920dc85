package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error so the HTTP boundary can pick a status
// code without inspecting message text.
type Kind int

const (
	Internal Kind = iota
	Conflict
	Unauthorized
	Forbidden
	NotFound
	Validation
)

// Error carries a stable kind plus the human-readable message returned
// to API clients unchanged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps the underlying cause for logging while presenting message
// to the client.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Internal for untagged errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Status maps an error kind to its HTTP status. Conflict maps to 400
// rather than 409 to preserve the API's existing status contract for
// duplicate registrations.
func Status(err error) int {
	switch KindOf(err) {
	case Conflict, Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
