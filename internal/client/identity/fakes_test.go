package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shiftdesk/internal/client/client"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

const testPassword = "secret"

// fakeAuth knows a fixed set of usernames, all sharing testPassword.
type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]string
	signedOut []string
	nextUID   int
}

func newFakeAuth(users map[string]string) *fakeAuth {
	if users == nil {
		users = map[string]string{}
	}
	return &fakeAuth{users: users}
}

func (f *fakeAuth) Authenticate(ctx context.Context, creds client.Credentials) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.users[creds.Username]
	if !ok || string(creds.Password) != testPassword {
		return models.Identity{}, client.ErrInvalidCredentials
	}
	return models.Identity{UID: uid}, nil
}

func (f *fakeAuth) Register(ctx context.Context, fields client.SignupFields) (models.Identity, error) {
	if err := fields.Validate(); err != nil {
		return models.Identity{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[fields.Username]; ok {
		return models.Identity{}, client.ErrAlreadyExists
	}
	f.nextUID++
	uid := fmt.Sprintf("new-%d", f.nextUID)
	f.users[fields.Username] = uid
	return models.Identity{UID: uid}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, id models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, id.UID)
	return nil
}

func (f *fakeAuth) SignedOut() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.signedOut...)
}

// detachingAuth holds a token number per identity, the way the gRPC client
// holds credentials, and implements client.Detacher.
type detachingAuth struct {
	*fakeAuth

	mu      sync.Mutex
	held    map[string]int
	seq     int
	revoked []int
	release chan struct{}
}

func newDetachingAuth(users map[string]string) *detachingAuth {
	return &detachingAuth{fakeAuth: newFakeAuth(users), held: map[string]int{}}
}

func (d *detachingAuth) Authenticate(ctx context.Context, creds client.Credentials) (models.Identity, error) {
	id, err := d.fakeAuth.Authenticate(ctx, creds)
	if err != nil {
		return id, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.held[id.UID] = d.seq
	return id, nil
}

func (d *detachingAuth) Detach(id models.Identity) func(context.Context) error {
	d.mu.Lock()
	tok := d.held[id.UID]
	delete(d.held, id.UID)
	release := d.release
	d.mu.Unlock()

	return func(ctx context.Context) error {
		if release != nil {
			<-release
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		d.revoked = append(d.revoked, tok)
		return nil
	}
}

func (d *detachingAuth) Held(uid string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tok, ok := d.held[uid]
	return tok, ok
}

func (d *detachingAuth) Revoked() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.revoked...)
}

// fakeProfiles serves profiles from a map. errs are returned, one per call,
// before the map is consulted. When gate is set calls wait for it, only
// those for gateUID if that is set too.
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	errs     []error
	calls    int

	gate         chan struct{}
	gateUID      string
	ignoreCancel bool
	entered      chan struct{}
}

func newFakeProfiles(profiles ...*models.Profile) *fakeProfiles {
	m := map[string]*models.Profile{}
	for _, p := range profiles {
		m[p.UID] = p
	}
	return &fakeProfiles{profiles: m}
}

func (f *fakeProfiles) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	f.mu.Lock()
	f.calls++
	gate, entered := f.gate, f.entered
	if f.gateUID != "" && f.gateUID != uid {
		gate, entered = nil, nil
	}
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		if f.ignoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, client.ErrNotFound
	}
	return p.Clone(), nil
}

func (f *fakeProfiles) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recorder is a view that keeps every state it was given.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) Render(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s.Status)
	}
	return out
}
