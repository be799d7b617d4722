package errs

import "errors"

// Taxonomy of request-level failures. Services wrap these with context via
// fmt.Errorf("...: %w", ...); the transport layer maps them to status codes
// with errors.Is.
var (
	// ErrValidation covers bad input: empty cart, incomplete shipping
	// details, non-positive amounts. Terminal for the request.
	ErrValidation = errors.New("validation failed")

	// ErrAuthenticity is returned when a gateway signature does not match.
	// The order is persisted as failed for audit before this surfaces.
	ErrAuthenticity = errors.New("payment signature mismatch")

	// ErrConflict means an optimistic update lost the race more times than
	// the retry bound allows, or a state transition was illegal. Retryable.
	ErrConflict = errors.New("conflict")

	// ErrNotFound covers lookup misses, including cross-user access.
	ErrNotFound = errors.New("not found")

	// ErrDependency means storage or a collaborator was unavailable.
	// Retryable; after order creation it is demoted to a warning.
	ErrDependency = errors.New("dependency unavailable")
)
