package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies why an action was refused.
type Kind string

const (
	KindEmptyField        Kind = "EmptyField"
	KindDuplicateEntity   Kind = "DuplicateEntity"
	KindInvalidTransition Kind = "InvalidTransition"
	KindMissingSelection  Kind = "MissingSelection"
	KindInvalidValue      Kind = "InvalidValue"
	KindNotFound          Kind = "NotFound"
)

// Error is returned by every refused action. The snapshot passed to the
// action is left untouched.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return string(e.Kind)
}

// Is matches sentinel errors by kind, so errors.Is(err, ErrEmptyField)
// holds for every EmptyField error regardless of field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Field == "" && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrEmptyField        = &Error{Kind: KindEmptyField}
	ErrDuplicateEntity   = &Error{Kind: KindDuplicateEntity}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrMissingSelection  = &Error{Kind: KindMissingSelection}
	ErrInvalidValue      = &Error{Kind: KindInvalidValue}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

// KindOf returns the Kind carried by err, or "" if err is not a workflow error.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

func emptyField(field string) *Error {
	return &Error{Kind: KindEmptyField, Field: field, Message: field + " is required"}
}

func invalidValue(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidValue, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func projectNotFound(id int64) *Error {
	return &Error{Kind: KindNotFound, Field: "project", Message: fmt.Sprintf("project not found: %d", id)}
}
