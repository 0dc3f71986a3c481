package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrRetryExhausted surfaces after a bounded number of transient
	// conflict retries; callers should try again later.
	ErrRetryExhausted = errors.New("operation kept conflicting, retry later")
)
