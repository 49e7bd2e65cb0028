// Package models defines the identity types shared by the console and the
// server: the opaque Identity and the Profile record owned by the remote store.
package models

import (
	"errors"
	"maps"
	"strings"
)

// Identity is the minimal proof of who is logged in.
type Identity struct {
	UID string `json:"uid"`
}

// IsZero reports whether the identity carries no identifier.
func (i Identity) IsZero() bool { return strings.TrimSpace(i.UID) == "" }

// Role is the organisational role attached to a profile.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole accepts the canonical role names, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStaff:
		return RoleStaff, nil
	case RoleSupervisor:
		return RoleSupervisor, nil
	default:
		return "", ErrUnknownRole
	}
}

// Profile is the full user record. The console carries it but never edits it.
type Profile struct {
	UID         string            `json:"uid"`
	DisplayName string            `json:"name"`
	Role        Role              `json:"role"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Identity returns the identity the profile belongs to.
func (p *Profile) Identity() Identity { return Identity{UID: p.UID} }

// IsSupervisor reports whether the profile holds elevated privileges.
func (p *Profile) IsSupervisor() bool { return p != nil && p.Role == RoleSupervisor }

// Clone returns a deep copy so callers cannot mutate shared state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Attributes != nil {
		c.Attributes = maps.Clone(p.Attributes)
	}
	return &c
}
