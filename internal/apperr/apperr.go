// Package apperr defines the error kinds every operation reports.
//
// Callers compare with errors.Is against the sentinel kinds; *Error carries
// the field and a client-safe message on top of a kind.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
)

type Error struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validation(field, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func Forbidden(reason string) error {
	return &Error{Kind: ErrForbidden, Message: reason}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(reason string) error {
	return &Error{Kind: ErrUnauthorized, Message: reason}
}

func Unavailable(reason string) error {
	return &Error{Kind: ErrUnavailable, Message: reason}
}

// KindOf returns the sentinel kind of err, or nil for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrInvalidGeometry, ErrValidation, ErrUnauthorized, ErrForbidden,
		ErrNotFound, ErrConflict, ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// FieldOf returns the offending field recorded on err, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	var f interface{ FieldName() string }
	if errors.As(err, &f) {
		return f.FieldName()
	}
	return ""
}
