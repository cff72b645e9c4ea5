package remoteauth

import "errors"

// Sentinel errors for programmer mistakes and defensive invariant checks.
// These are returned to the caller and intentionally never recovered
// internally; flow failures are handled by navigation instead.
var (
	// ErrInvalidAction is returned when the Authenticator is dispatched
	// with an action it does not know.
	ErrInvalidAction = errors.New("remoteauth: invalid action")

	// ErrShouldNotRedirect is returned when a callback completion reports
	// a redirect status. Completing a redirect flow must not itself
	// redirect; hitting this means the bridge misbehaved.
	ErrShouldNotRedirect = errors.New("remoteauth: should not redirect")

	// ErrInvalidResultStatus is returned when the bridge reports a status
	// that is not valid for the operation in progress.
	ErrInvalidResultStatus = errors.New("remoteauth: invalid authentication result status")
)
