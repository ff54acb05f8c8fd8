package poll

import "errors"

// Expected, caller-recoverable failures. Anything else coming out of
// the service is an internal error and must not leak to other clients.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrDuplicateVote = errors.New("already voted")
)
