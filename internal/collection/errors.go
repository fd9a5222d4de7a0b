package collection

import (
	"context"
	"errors"
)

// Error kinds reported by a Remote. Implementations wrap or return these so
// the manager can decide how a failure is surfaced.
var (
	// ErrValidation means the server rejected the payload. Caller-correctable.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the entity vanished server-side. Local data is stale.
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers transport failures and unexpected server errors.
	ErrNetwork = errors.New("network error")
	// ErrAuth means the session is missing or no longer valid.
	ErrAuth = errors.New("authentication failed")
)

// Classify maps err onto one of the package error kinds. Anything that is not
// recognisably validation, not-found or auth is treated as a network failure.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAuth):
		return ErrAuth
	default:
		return ErrNetwork
	}
}

// Retryable reports whether re-sending the same write could succeed without
// the caller changing it.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch Classify(err) {
	case ErrNetwork, ErrAuth:
		return true
	default:
		return false
	}
}

// Reasons a local mutation is refused before anything is sent.
var (
	errEmptyID   = errors.New("entity id is empty")
	errExists    = errors.New("entity already exists")
	errMissing   = errors.New("entity does not exist")
	errUnknownOp = errors.New("unknown mutation op")
	errNoFailure = errors.New("no failed write to retry")
)
