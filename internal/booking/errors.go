package booking

import "errors"

// Workflow error taxonomy. Handlers map these onto HTTP statuses; the
// service never returns a raw storage error.
var (
	// ErrValidation marks malformed or missing input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization marks a caller not permitted to act on the target
	// entity, e.g. finalizing as a non-selected driver. Never retried.
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound marks a missing request, booking or profile.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a lost race: duplicate selection or duplicate
	// finalization. Callers must re-fetch state and decide.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks a booking status write outside the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPersistence marks an unreachable or failing store after the single
	// retry is exhausted.
	ErrPersistence = errors.New("persistence failure")
)
