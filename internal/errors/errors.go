// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist. For link
	// lookups this deliberately covers never-existed, expired, and consumed
	// records alike so that callers cannot probe for link history.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIntegrity indicates an encrypted envelope failed authentication on
	// decrypt (tampered bytes or wrong key). Never retried.
	ErrIntegrity = errors.New("integrity failure")

	// ErrExhausted indicates short code generation ran out of collision
	// retries. Transient and store-occupancy dependent; the caller may retry
	// the whole operation.
	ErrExhausted = errors.New("code space exhausted")

	// ErrStoreUnavailable indicates the record store could not be reached or
	// timed out. Transient; distinct from ErrNotFound so callers can tell
	// "retry might succeed" from "retry is pointless".
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformedPayload indicates a decrypted payload could not be
	// deserialized. This is an internal invariant violation, not an expected
	// runtime path.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrRateLimitExceeded indicates the client has exceeded the allowed request rate.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message while preserving the
// error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
