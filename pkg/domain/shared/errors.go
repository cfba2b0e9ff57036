// Package shared provides domain types and errors used across all domain packages.
package shared

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the domain error taxonomy. Every error returned by the
// service layer wraps exactly one of these so callers can classify failures
// with errors.Is without inspecting messages.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrTimeout      = errors.New("timeout")
	ErrInternal     = errors.New("internal error")
)

// IsNotFound reports whether err is a not-found error.
// Cross-tenant access is reported as not-found on purpose: callers must not
// be able to distinguish a foreign row from an absent one.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict reports whether err is a lost-update conflict. Conflicts are
// safe to retry with the same input after a re-read.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsTimeout reports whether err is a deadline failure. Like Conflict it is
// retryable by the caller.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ClassifyStorageErr maps low-level storage failures onto the taxonomy.
// Context cancellation and deadline expiry become ErrTimeout; everything
// else is an internal storage failure.
func ClassifyStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
