package identity

import (
	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Mode picks the screen shown while unauthenticated. It has no persistence
// implications.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// State is an immutable snapshot of the resolver.
type State struct {
	Status   Status
	Mode     Mode
	Identity models.Identity
	// Profile is nil while Status is StatusAuthenticated and the profile is
	// still being fetched.
	Profile *models.Profile

	logout func()
}

// ProfilePending reports an authenticated state whose profile is in flight.
func (s State) ProfilePending() bool {
	return s.Status == StatusAuthenticated && s.Profile == nil
}

// Session returns the publication tuple for authenticated states.
func (s State) Session() (Session, bool) {
	if s.Status != StatusAuthenticated {
		return Session{}, false
	}
	return Session{Identity: s.Identity, Profile: s.Profile, Logout: s.logout}, true
}

func (s State) same(o State) bool {
	return s.Status == o.Status && s.Mode == o.Mode && s.Identity == o.Identity && s.Profile == o.Profile
}

// Session is what authenticated pages receive.
type Session struct {
	Identity models.Identity
	Profile  *models.Profile
	// Logout ends the session synchronously.
	Logout func()
}

// Capabilities is empty until the profile resolves.
func (s Session) Capabilities() []models.Capability {
	return s.Profile.Capabilities()
}
