package identity

import "errors"

var (
	// ErrAuthenticationFailed wraps credential and registration failures
	// that the login/signup screens should show to the user.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrProfileNotFound means the identifier has no remote profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrTransientFetch means the profile could not be fetched right now.
	ErrTransientFetch = errors.New("profile fetch failed")
	// ErrSuperseded is returned by a Login or Signup overtaken by a later call.
	ErrSuperseded = errors.New("superseded by a later session change")
	ErrClosed     = errors.New("resolver closed")
)
