package session

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shiftdesk/internal/client/storage"
)

// Policy selects what is persisted and where.
type Policy string

const (
	PolicyDurableProfile    Policy = "durable-profile"
	PolicySessionProfile    Policy = "session-profile"
	PolicySessionIdentifier Policy = "session-identifier"
)

// DefaultPolicy keeps only the identifier and always hydrates remotely.
const DefaultPolicy = PolicySessionIdentifier

var ErrUnknownPolicy = errors.New("unknown persistence policy")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyDurableProfile, PolicySessionProfile, PolicySessionIdentifier:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Scope is the storage lifetime the policy requires.
func (p Policy) Scope() storage.Scope {
	if p == PolicyDurableProfile {
		return storage.ScopeDevice
	}
	return storage.ScopeSession
}

// StoresProfile reports whether records under p carry the full profile.
func (p Policy) StoresProfile() bool {
	return p == PolicyDurableProfile || p == PolicySessionProfile
}
