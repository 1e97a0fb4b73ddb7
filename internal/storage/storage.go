// Package storage holds what the event and booking stores share: the closed
// error taxonomy their adapters translate driver errors into, and the schema
// rules applied to documents before they are written.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotConfigured = errors.New("storage is not configured")
	ErrUnavailable   = errors.New("storage is unavailable")
)

type Kind int

const (
	KindOther Kind = iota
	KindFieldValidation
	KindUniquenessConflict
)

func (k Kind) String() string {
	switch k {
	case KindFieldValidation:
		return "field validation"
	case KindUniquenessConflict:
		return "uniqueness conflict"
	default:
		return "other"
	}
}

type FieldViolation struct {
	Field   string
	Message string
}

type Conflict struct {
	Field string
	Value string
}

// Error is the only error shape a store adapter hands back for a rejected
// write. Callers switch on Kind instead of inspecting driver errors.
type Error struct {
	Kind       Kind
	Violations []FieldViolation
	Conflicts  []Conflict
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindFieldValidation:
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, v.Field+": "+v.Message)
		}
		return "validation failed: " + strings.Join(parts, "; ")
	case KindUniquenessConflict:
		parts := make([]string, 0, len(e.Conflicts))
		for _, c := range e.Conflicts {
			parts = append(parts, fmt.Sprintf("%s=%q", c.Field, c.Value))
		}
		return "duplicate key: " + strings.Join(parts, ", ")
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "storage error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationFailed(violations ...FieldViolation) *Error {
	return &Error{Kind: KindFieldValidation, Violations: violations}
}

func UniquenessConflict(err error, conflicts ...Conflict) *Error {
	return &Error{Kind: KindUniquenessConflict, Conflicts: conflicts, Err: err}
}

// KindOf reports how a store error should be treated. Anything that is not
// a *Error is KindOther.
func KindOf(err error) Kind {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Kind
	}

	return KindOther
}
