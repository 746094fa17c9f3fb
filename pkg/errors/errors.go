// Package errors provides common domain error types for the minutes pipeline.
//
// This package defines sentinel errors for conditions like "directory invalid"
// or "oracle unavailable" that can be used across all packages. Using typed
// errors enables consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import merrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
//
//	// Return a domain error
//	return nil, fmt.Errorf("load %s: %w", path, merrors.ErrDirectoryInvalid)
//
//	// Check for domain errors
//	if merrors.IsDirectoryInvalid(err) {
//	    // abort before any stage runs
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for pipeline conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or a precondition violation.
	ErrValidation = errors.New("validation error")

	// ErrDirectoryInvalid indicates the people directory is missing or
	// unparseable. This is fatal: the pipeline must not start without it.
	ErrDirectoryInvalid = errors.New("people directory invalid")

	// ErrOracleUnavailable indicates the oracle could not be reached after
	// retries were exhausted. Recoverable at stage boundaries.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrMalformedAnswer indicates an oracle answer failed to parse.
	// Recoverable; affected records are skipped.
	ErrMalformedAnswer = errors.New("malformed oracle answer")

	// ErrInvalidState indicates the operation is not valid for the current
	// pipeline state (e.g., stages run out of order).
	ErrInvalidState = errors.New("invalid state")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDirectoryInvalid reports whether any error in err's chain is ErrDirectoryInvalid.
func IsDirectoryInvalid(err error) bool {
	return errors.Is(err, ErrDirectoryInvalid)
}

// IsOracleUnavailable reports whether any error in err's chain is ErrOracleUnavailable.
func IsOracleUnavailable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable)
}

// IsMalformedAnswer reports whether any error in err's chain is ErrMalformedAnswer.
func IsMalformedAnswer(err error) bool {
	return errors.Is(err, ErrMalformedAnswer)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
