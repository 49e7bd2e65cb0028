package identity

import (
	"errors"
	"fmt"
	"time"
)

// FailurePolicy decides what a transient profile fetch failure does.
// A missing profile always ends the session.
type FailurePolicy string

const (
	// FailurePolicyLogout signs out on the first failure.
	FailurePolicyLogout FailurePolicy = "logout"
	// FailurePolicyRetry retries transient failures with exponential backoff
	// before signing out.
	FailurePolicyRetry FailurePolicy = "retry"
)

var ErrUnknownFailurePolicy = errors.New("unknown failure policy")

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailurePolicyLogout, FailurePolicyRetry:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFailurePolicy, s)
	}
}

// Options tune a Resolver. Zero fields take the defaults below.
type Options struct {
	// FetchTimeout bounds a single remote profile lookup.
	FetchTimeout time.Duration
	FailurePolicy FailurePolicy
	// FetchRetries is the number of extra attempts under FailurePolicyRetry.
	FetchRetries uint64
	// RetryBackoff is the first retry delay; it doubles on each attempt.
	RetryBackoff time.Duration
	// SignOutTimeout bounds the background remote sign-out.
	SignOutTimeout time.Duration
}

const (
	DefaultFetchTimeout   = 10 * time.Second
	DefaultFetchRetries   = 3
	DefaultRetryBackoff   = 200 * time.Millisecond
	DefaultSignOutTimeout = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.FailurePolicy == "" {
		o.FailurePolicy = FailurePolicyLogout
	}
	if o.FailurePolicy == FailurePolicyRetry && o.FetchRetries == 0 {
		o.FetchRetries = DefaultFetchRetries
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.SignOutTimeout <= 0 {
		o.SignOutTimeout = DefaultSignOutTimeout
	}
	return o
}
