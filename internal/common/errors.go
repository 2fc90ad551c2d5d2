// Package common defines shared constants and sentinel errors used across
// the SentinelIQ client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrAuthRequired means the session is missing or expired. Views react
	// with a redirect to login, never with an error dialog.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotFound is rendered as an inline "not found" state.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable covers transport failures (server unreachable, timeouts,
	// 5xx). It is retryable.
	ErrUnavailable = errors.New("server unavailable")

	// ErrValidation is raised before any network call is made.
	ErrValidation = errors.New("validation error")

	// ErrSuperseded marks a result that arrived after a newer call to the
	// same operation was issued. The result has been discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Kind classifies err into one of the user-visible error categories.
type Kind string

const (
	KindNone         Kind = ""
	KindAuthRequired Kind = "auth_required"
	KindNotFound     Kind = "not_found"
	KindTransport    Kind = "transport"
	KindValidation   Kind = "validation"
	KindSuperseded   Kind = "superseded"
	KindUnknown      Kind = "unknown"
)

// KindOf maps err to its Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnavailable):
		return KindTransport
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrSuperseded):
		return KindSuperseded
	default:
		return KindUnknown
	}
}

// IsRetryable reports whether the operation that produced err may succeed if
// simply repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
