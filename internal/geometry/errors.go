package geometry

import (
	"fmt"

	"landmarket/server/internal/apperr"
)

type Reason string

const (
	ReasonParse      Reason = "parse"
	ReasonBounds     Reason = "bounds"
	ReasonDegenerate Reason = "degenerate"
)

// Error reports which spatial field failed and why. It matches
// apperr.ErrInvalidGeometry under errors.Is.
type Error struct {
	Field  string
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s (%s): %v", e.Field, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == apperr.ErrInvalidGeometry }

func (e *Error) FieldName() string { return e.Field }

func parseError(field string, format string, args ...any) error {
	return &Error{Field: field, Reason: ReasonParse, Err: fmt.Errorf(format, args...)}
}

func boundsError(field string, format string, args ...any) error {
	return &Error{Field: field, Reason: ReasonBounds, Err: fmt.Errorf(format, args...)}
}

func degenerateError(field string, format string, args ...any) error {
	return &Error{Field: field, Reason: ReasonDegenerate, Err: fmt.Errorf(format, args...)}
}
