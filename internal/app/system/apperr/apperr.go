// internal/app/system/apperr/apperr.go
//
// Package apperr classifies failures so transport layers can map them to
// responses without inspecting store or driver errors.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	Forbidden
	Auth
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Auth:
		return "auth"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case Auth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a message safe to show to callers.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k Kind, msg string) error { return &Error{Kind: k, Msg: msg} }

func ValidationErr(msg string) error { return newErr(Validation, msg) }
func NotFoundErr(msg string) error   { return newErr(NotFound, msg) }
func ConflictErr(msg string) error   { return newErr(Conflict, msg) }
func ForbiddenErr(msg string) error  { return newErr(Forbidden, msg) }
func AuthErr(msg string) error       { return newErr(Auth, msg) }

// KindOf returns the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message returns the caller-facing message for err. Unclassified errors
// never leak their text.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "internal error"
}
