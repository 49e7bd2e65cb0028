package cli

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shiftdesk/internal/client/client"
	"github.com/dmitrijs2005/shiftdesk/internal/client/identity"
	"github.com/dmitrijs2005/shiftdesk/internal/client/session"
	"github.com/dmitrijs2005/shiftdesk/internal/client/storage"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

const testPassword = "secret"

// fakeBackend is an in-process Authenticator and ProfileStore.
type fakeBackend struct {
	mu        sync.Mutex
	uids      map[string]string
	profiles  map[string]*models.Profile
	signedOut []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		uids: map[string]string{"alice": "u-alice"},
		profiles: map[string]*models.Profile{
			"u-alice": {UID: "u-alice", DisplayName: "Alice", Role: models.RoleSupervisor, Attributes: map[string]string{"team": "north"}},
		},
	}
}

func (f *fakeBackend) Authenticate(_ context.Context, creds client.Credentials) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.uids[creds.Username]
	if !ok || string(creds.Password) != testPassword {
		return models.Identity{}, client.ErrInvalidCredentials
	}
	return models.Identity{UID: uid}, nil
}

func (f *fakeBackend) Register(_ context.Context, fields client.SignupFields) (models.Identity, error) {
	if err := fields.Validate(); err != nil {
		return models.Identity{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uids[fields.Username]; ok {
		return models.Identity{}, client.ErrAlreadyExists
	}
	uid := "u-" + fields.Username
	f.uids[fields.Username] = uid
	f.profiles[uid] = &models.Profile{UID: uid, DisplayName: fields.DisplayName, Role: models.RoleStaff, Attributes: fields.Attributes}
	return models.Identity{UID: uid}, nil
}

func (f *fakeBackend) SignOut(_ context.Context, id models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, id.UID)
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, uid string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[uid]
	if !ok {
		return nil, client.ErrNotFound
	}
	return p.Clone(), nil
}

func newTestResolver(t *testing.T, backend *fakeBackend, kv storage.KeyValue) *identity.Resolver {
	t.Helper()
	store := session.NewKVStore(kv, session.PolicyDurableProfile, logging.Discard())
	r := identity.NewResolver(store, backend, backend, logging.Discard(), identity.Options{})
	t.Cleanup(r.Close)
	return r
}

// stubPassword makes getPassword return pw without touching the terminal.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
