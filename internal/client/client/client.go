package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

// Credentials are what the login screen collects.
type Credentials struct {
	Username string
	Password []byte
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidFields)
	}
	if len(c.Password) == 0 {
		return fmt.Errorf("%w: password is required", ErrInvalidFields)
	}
	return nil
}

// SignupFields are what the signup screen collects. New accounts are
// always staff.
type SignupFields struct {
	Credentials
	DisplayName string
	Attributes  map[string]string
}

func (f SignupFields) Validate() error {
	if err := f.Credentials.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(f.DisplayName) == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalidFields)
	}
	return nil
}

// Authenticator is the remote authentication backend.
type Authenticator interface {
	// Authenticate fails with ErrInvalidCredentials on a bad username/password.
	Authenticate(ctx context.Context, creds Credentials) (models.Identity, error)
	// Register creates the account and its profile record. It fails with
	// ErrAlreadyExists or ErrInvalidFields.
	Register(ctx context.Context, fields SignupFields) (models.Identity, error)
	// SignOut is best effort; callers do not wait on it.
	SignOut(ctx context.Context, id models.Identity) error
}

// Detacher is implemented by authenticators that hold credentials locally.
// Detach forgets the credentials of id immediately and returns the call that
// revokes them remotely, so the remote part can run later without touching
// a session opened in between.
type Detacher interface {
	Detach(id models.Identity) func(ctx context.Context) error
}

// ProfileStore is the remote, read-only profile lookup.
type ProfileStore interface {
	// GetProfile fails with ErrNotFound when no record exists for uid.
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
}

// Client is everything the console needs from the server.
type Client interface {
	Authenticator
	ProfileStore
	Ping(ctx context.Context) error
	Close() error
}
