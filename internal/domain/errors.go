package domain

import "errors"

// Domain errors surfaced to callers as typed failures. The core never
// retries on these; the API layer maps them to responses. Persistence
// failures are not wrapped in any of them, so callers can still tell a
// storage outage from a business rejection.
var (
	// ErrSessionConflict means the user already has a non-terminal session.
	ErrSessionConflict = errors.New("user already has an active session")

	// ErrInvalidTransition means the requested transition is illegal from
	// the session's current status.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrSessionNotFound means the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden means the session belongs to a different user.
	ErrForbidden = errors.New("session belongs to another user")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")
)
