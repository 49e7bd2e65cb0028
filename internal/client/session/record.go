package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

// SchemaVersion is written into every record; other versions are discarded.
const SchemaVersion = 1

var (
	ErrCorruptSessionRecord = errors.New("corrupt session record")
	ErrInvalidRecord        = errors.New("invalid session record")
)

// Record is the last known session. Profile is nil when the active policy
// persists only the identifier.
type Record struct {
	UID     string
	Profile *models.Profile
}

func (r Record) Identity() models.Identity { return models.Identity{UID: r.UID} }

type envelope struct {
	Version int             `json:"v"`
	Policy  Policy          `json:"policy"`
	UID     string          `json:"uid"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// Encode serialises rec for policy. Under an identifier-only policy the
// profile is dropped.
func Encode(policy Policy, rec Record) ([]byte, error) {
	if rec.Identity().IsZero() {
		return nil, fmt.Errorf("%w: empty uid", ErrInvalidRecord)
	}

	env := envelope{Version: SchemaVersion, Policy: policy, UID: rec.UID}
	if policy.StoresProfile() {
		if rec.Profile == nil {
			return nil, fmt.Errorf("%w: policy %s requires a profile", ErrInvalidRecord, policy)
		}
		if rec.Profile.UID != rec.UID {
			return nil, fmt.Errorf("%w: profile uid %q does not match %q", ErrInvalidRecord, rec.Profile.UID, rec.UID)
		}
		env.Profile = rec.Profile
	}

	return json.Marshal(env)
}

// Decode parses data written by Encode under policy. Every failure wraps
// ErrCorruptSessionRecord.
func Decode(policy Policy, data []byte) (*Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSessionRecord, err)
	}

	switch {
	case env.Version != SchemaVersion:
		return nil, fmt.Errorf("%w: schema version %d", ErrCorruptSessionRecord, env.Version)
	case env.Policy != policy:
		return nil, fmt.Errorf("%w: written under policy %q", ErrCorruptSessionRecord, env.Policy)
	case models.Identity{UID: env.UID}.IsZero():
		return nil, fmt.Errorf("%w: empty uid", ErrCorruptSessionRecord)
	}

	rec := &Record{UID: env.UID}
	if policy.StoresProfile() {
		if env.Profile == nil || env.Profile.UID != env.UID {
			return nil, fmt.Errorf("%w: missing or mismatched profile", ErrCorruptSessionRecord)
		}
		rec.Profile = env.Profile
	}
	return rec, nil
}
