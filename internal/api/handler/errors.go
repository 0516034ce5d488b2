package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/good-yellow-bee/testdesk/internal/state"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
)

// Error represents an API error response. Reason carries the workflow
// refusal kind when there is one.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodePersistFailed     = "PERSIST_FAILED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
)

// Standard errors
var (
	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}

	ErrInvalidBody = &Error{
		Code:    ErrCodeBadRequest,
		Message: "invalid request body",
		Status:  http.StatusBadRequest,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// FromWorkflow maps a refused action to its HTTP error.
func FromWorkflow(err *workflow.Error) *Error {
	e := &Error{Message: err.Error(), Reason: string(err.Kind)}
	switch err.Kind {
	case workflow.KindEmptyField, workflow.KindInvalidValue, workflow.KindMissingSelection:
		e.Code, e.Status = ErrCodeValidationFailed, http.StatusBadRequest
	case workflow.KindDuplicateEntity:
		e.Code, e.Status = ErrCodeConflict, http.StatusConflict
	case workflow.KindInvalidTransition:
		e.Code, e.Status = ErrCodeInvalidTransition, http.StatusConflict
	case workflow.KindNotFound:
		e.Code, e.Status = ErrCodeNotFound, http.StatusNotFound
	default:
		e.Code, e.Status = ErrCodeInternalError, http.StatusInternalServerError
	}
	return e
}

// fromValidator turns struct tag failures into one validation error.
func fromValidator(verrs validator.ValidationErrors) *Error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return NewValidationError(strings.Join(msgs, "; "))
}

// writeError writes the response for any error returned by the store.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		apiErr  *Error
		wfErr   *workflow.Error
		pErr    *state.PersistError
		valErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &apiErr):
		JSONError(w, apiErr)
	case errors.As(err, &wfErr):
		JSONError(w, FromWorkflow(wfErr))
	case errors.As(err, &valErrs):
		JSONError(w, fromValidator(valErrs))
	case errors.As(err, &pErr):
		log.Error().Err(err).Str("action", pErr.Action).Msg("persist failed")
		JSONError(w, &Error{
			Code:    ErrCodePersistFailed,
			Message: "change applied but could not be saved",
			Status:  http.StatusInternalServerError,
		})
	default:
		log.Error().Err(err).Msg("request failed")
		JSONError(w, ErrInternalServer)
	}
}
