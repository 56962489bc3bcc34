// Package errors provides error handling for wdlint.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints on CLI failures
//
// Usage:
//
//	// Wrap with context
//	if err := cache.Put(ctx, e); err != nil {
//	    return errors.Wrap(err, "failed to cache entity")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run 'wdlint am init' to create a config file")
//
//	// Check errors
//	if errors.Is(err, errors.ErrPrerequisiteFailed) {
//	    // the tags changed since the report was produced
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
	Join           = crdb.Join
)

// Sentinel errors shared across wdlint.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the input was malformed
	ErrInvalidRequest = New("invalid request")

	// ErrPrerequisiteFailed indicates a change transaction no longer matches the tags it targets
	ErrPrerequisiteFailed = New("prerequisite failed")

	// ErrRateLimited indicates the remote API asked us to slow down
	ErrRateLimited = New("rate limited")

	// ErrServiceUnavailable indicates the remote API failed on its side
	ErrServiceUnavailable = New("service unavailable")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsPrerequisiteFailed checks if an error is or wraps ErrPrerequisiteFailed
func IsPrerequisiteFailed(err error) bool {
	return err != nil && Is(err, ErrPrerequisiteFailed)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewPrerequisiteError creates a prerequisite-failed error with a formatted message
func NewPrerequisiteError(format string, args ...interface{}) error {
	return Wrap(ErrPrerequisiteFailed, Newf(format, args...).Error())
}
