// Package apierror provides standardized API error handling shared by every
// HTTP handler.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
)

// Code represents a machine-readable error code.
type Code string

// Standard error codes.
const (
	CodeBadRequest            Code = "BAD_REQUEST"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeConflict              Code = "CONFLICT"
	CodeIllegalTransition     Code = "ILLEGAL_TRANSITION"
	CodeInvalidActionForStage Code = "INVALID_ACTION_FOR_STAGE"
	CodeTimeout               Code = "TIMEOUT"
	CodeRateLimitExceeded     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError         Code = "INTERNAL_ERROR"
)

// Error represents a standardized API error.
type Error struct {
	// HTTP status code
	Status int `json:"-"`

	// Machine-readable error code
	Code Code `json:"code"`

	// Human-readable error message
	Message string `json:"message"`

	// Additional error details (optional)
	Details any `json:"details,omitempty"`

	// Internal error (not exposed to client)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Response represents the error response body.
type Response struct {
	Error     string `json:"error"`
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes the error as JSON to the response writer.
func (e *Error) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(Response{
		Error:   string(e.Code),
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// New creates a new API error.
func New(status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap wraps an existing error with API error context.
func Wrap(err error, status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

// WithDetails adds details to the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// FromDomain maps a domain error onto the HTTP taxonomy. Order matters: the
// workflow sentinels are checked before the generic validation sentinel they
// do not wrap, and storage failures deliberately carry no detail.
func FromDomain(err error) *Error {
	switch {
	case errors.Is(err, finding.ErrIllegalTransition):
		return Wrap(err, http.StatusUnprocessableEntity, CodeIllegalTransition, err.Error())
	case errors.Is(err, finding.ErrInvalidActionForStage):
		return Wrap(err, http.StatusUnprocessableEntity, CodeInvalidActionForStage, err.Error())
	case errors.Is(err, shared.ErrValidation):
		return Wrap(err, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		return Wrap(err, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	case errors.Is(err, shared.ErrForbidden):
		return Wrap(err, http.StatusForbidden, CodeForbidden, "insufficient permissions")
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, http.StatusNotFound, CodeNotFound, "resource not found")
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrTimeout):
		return Wrap(err, http.StatusGatewayTimeout, CodeTimeout, "request timed out")
	default:
		return Wrap(err, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}
