package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/shiftdesk/internal/client/client"
	"github.com/dmitrijs2005/shiftdesk/internal/client/session"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
	"github.com/sethvargo/go-retry"
)

type subscription struct {
	view View
	// removed is guarded by Resolver.mu.
	removed bool
}

// delivery is a state queued for rendering. A nil sub means every view.
type delivery struct {
	state State
	sub   *subscription
}

// Resolver is the session state machine. It is safe for concurrent use;
// views are rendered on the goroutine that caused the change, one state at
// a time and in order.
type Resolver struct {
	store    session.Store
	auth     client.Authenticator
	profiles client.ProfileStore
	logger   logging.Logger
	opts     Options

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.Mutex
	state   State
	changed chan struct{}
	gen     uint64
	cancel  context.CancelFunc
	started bool
	closed  bool

	views       []*subscription
	queue       []delivery
	dispatching bool
}

func NewResolver(store session.Store, auth client.Authenticator, profiles client.ProfileStore, logger logging.Logger, opts Options) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		store:      store,
		auth:       auth,
		profiles:   profiles,
		logger:     logger.With("module", "identity_resolver"),
		opts:       opts.withDefaults(),
		baseCtx:    ctx,
		baseCancel: cancel,
		state:      State{Status: StatusLoading},
		changed:    make(chan struct{}),
	}
}

// State returns the current snapshot.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Settled holds once the resolver is out of loading and no profile is pending.
func Settled(s State) bool {
	return s.Status != StatusLoading && !s.ProfilePending()
}

// Await blocks until cond holds for the current state or ctx is done.
func (r *Resolver) Await(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		r.mu.Lock()
		s, ch := r.state, r.changed
		r.mu.Unlock()

		if cond(s) {
			return s, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

// Start performs the startup resolution. It is a no-op after the first call
// or once any Login, Signup or Logout has run. When Start returns the
// resolver is no longer loading; an identifier-only record leaves the
// profile pending while it is fetched in the background.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	gen, rctx := r.beginLocked(r.baseCtx)
	r.mu.Unlock()

	rec, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn(ctx, "session store unreadable, starting signed out", "error", err)
		rec = nil
	}

	r.mu.Lock()
	switch {
	case gen != r.gen:
		if r.state.Status == StatusLoading {
			r.setStateLocked(State{Status: StatusUnauthenticated, Mode: ModeLogin})
		}
	case rec == nil:
		r.logger.Info(ctx, "no previous session")
		r.setStateLocked(State{Status: StatusUnauthenticated, Mode: ModeLogin})
	case rec.Profile != nil:
		r.logger.Info(ctx, "session restored", "uid", rec.UID)
		r.setStateLocked(State{Status: StatusAuthenticated, Identity: rec.Identity(), Profile: rec.Profile})
	default:
		r.logger.Info(ctx, "session identifier restored, fetching profile", "uid", rec.UID)
		r.setStateLocked(State{Status: StatusAuthenticated, Identity: rec.Identity()})
		r.wg.Add(1)
		go r.hydrate(rctx, gen, rec.Identity())
	}
	r.mu.Unlock()
	r.flush()
}

// Login authenticates, persists the session and resolves the profile.
// Credential failures wrap ErrAuthenticationFailed.
func (r *Resolver) Login(ctx context.Context, creds client.Credentials) error {
	return r.authenticate(ctx, "login", func(ctx context.Context) (models.Identity, error) {
		return r.auth.Authenticate(ctx, creds)
	})
}

// Signup registers a new account (the backend creates its profile record)
// and then behaves like Login.
func (r *Resolver) Signup(ctx context.Context, fields client.SignupFields) error {
	return r.authenticate(ctx, "signup", func(ctx context.Context) (models.Identity, error) {
		return r.auth.Register(ctx, fields)
	})
}

// Logout clears the persisted record and the in-memory session at once and
// pre-empts any resolution in flight. The remote sign-out runs in the
// background and is never awaited.
func (r *Resolver) Logout(ctx context.Context) {
	r.mu.Lock()
	r.supersedeLocked()
	r.started = true
	prev := r.state.Identity
	r.clearLocked(ctx)
	r.setStateLocked(State{Status: StatusUnauthenticated, Mode: ModeLogin})
	r.signOutLocked(prev)
	r.mu.Unlock()
	r.flush()

	if !prev.IsZero() {
		r.logger.Info(ctx, "logged out", "uid", prev.UID)
	}
}

func (r *Resolver) logoutFromView() {
	r.Logout(context.Background())
}

// ShowSignup, ShowLogin and SwitchMode change the unauthenticated screen.
// They do nothing in any other status.
func (r *Resolver) ShowSignup() { r.setMode(func(Mode) Mode { return ModeSignup }) }

func (r *Resolver) ShowLogin() { r.setMode(func(Mode) Mode { return ModeLogin }) }

func (r *Resolver) SwitchMode() {
	r.setMode(func(m Mode) Mode {
		if m == ModeLogin {
			return ModeSignup
		}
		return ModeLogin
	})
}

func (r *Resolver) setMode(next func(Mode) Mode) {
	r.mu.Lock()
	if r.state.Status == StatusUnauthenticated {
		s := r.state
		s.Mode = next(s.Mode)
		r.setStateLocked(s)
	}
	r.mu.Unlock()
	r.flush()
}

// Subscribe renders v with the current state and after every change until
// the returned function is called. The first render goes through the same
// queue as every change, so it may happen on whichever goroutine is
// delivering at the time, and v never sees a state older than one it
// already rendered.
func (r *Resolver) Subscribe(v View) (unsubscribe func()) {
	sub := &subscription{view: v}

	r.mu.Lock()
	r.queue = append(r.queue, delivery{state: r.state, sub: sub})
	r.mu.Unlock()
	r.flush()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		sub.removed = true
		r.views = slices.DeleteFunc(r.views, func(s *subscription) bool { return s == sub })
	}
}

// Close cancels in-flight work and waits for background goroutines. The
// persisted record is left untouched.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.supersedeLocked()
	r.mu.Unlock()

	r.baseCancel()
	r.wg.Wait()
}

func (r *Resolver) authenticate(ctx context.Context, op string, call func(context.Context) (models.Identity, error)) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	gen, actx := r.beginLocked(ctx)
	r.mu.Unlock()

	id, err := call(actx)
	if err == nil && id.IsZero() {
		err = fmt.Errorf("%w: empty identity", client.ErrInvalidCredentials)
	}
	if err != nil {
		r.mu.Lock()
		stale := gen != r.gen
		if !stale {
			r.abandonLocked(ctx)
		}
		r.mu.Unlock()
		r.flush()

		r.logger.Warn(ctx, op+" failed", "error", err)
		if stale {
			return ErrSuperseded
		}
		return classifyAuthError(op, err)
	}

	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return ErrSuperseded
	}
	if prev := r.state.Identity; !prev.IsZero() && prev.UID != id.UID {
		r.logger.Info(ctx, "replacing signed-in identity", "previous", prev.UID, "uid", id.UID)
		r.signOutLocked(prev)
	}
	if !r.store.Policy().StoresProfile() {
		r.saveLocked(ctx, session.Record{UID: id.UID})
	}
	r.setStateLocked(State{Status: StatusAuthenticated, Identity: id})
	r.mu.Unlock()
	r.flush()

	profile, err := r.fetchProfile(actx, id)

	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		r.failLocked(ctx, id, err)
		r.mu.Unlock()
		r.flush()
		return err
	}
	if r.store.Policy().StoresProfile() {
		r.saveLocked(ctx, session.Record{UID: id.UID, Profile: profile})
	}
	r.setStateLocked(State{Status: StatusAuthenticated, Identity: id, Profile: profile})
	r.mu.Unlock()
	r.flush()

	r.logger.Info(ctx, op+" succeeded", "uid", id.UID, "role", string(profile.Role))
	return nil
}

func classifyAuthError(op string, err error) error {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials),
		errors.Is(err, client.ErrAlreadyExists),
		errors.Is(err, client.ErrInvalidFields):
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *Resolver) hydrate(ctx context.Context, gen uint64, id models.Identity) {
	defer r.wg.Done()

	profile, err := r.fetchProfile(ctx, id)

	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		r.logger.Debug(ctx, "dropping stale profile fetch", "uid", id.UID)
		return
	}
	if err != nil {
		r.failLocked(ctx, id, err)
	} else {
		r.setStateLocked(State{Status: StatusAuthenticated, Identity: id, Profile: profile})
	}
	r.mu.Unlock()
	r.flush()
}

// fetchProfile returns ErrProfileNotFound or ErrTransientFetch on failure.
func (r *Resolver) fetchProfile(ctx context.Context, id models.Identity) (*models.Profile, error) {
	attempt := func(ctx context.Context) (*models.Profile, error) {
		ctx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
		defer cancel()

		p, err := r.profiles.GetProfile(ctx, id.UID)
		switch {
		case errors.Is(err, client.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id.UID)
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
		case p == nil || p.UID != id.UID:
			return nil, fmt.Errorf("%w: store answered for another identity", ErrProfileNotFound)
		}
		return p.Clone(), nil
	}

	if r.opts.FailurePolicy != FailurePolicyRetry {
		return attempt(ctx)
	}

	var profile *models.Profile
	backoff := retry.WithMaxRetries(r.opts.FetchRetries, retry.NewExponential(r.opts.RetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := attempt(ctx)
		if errors.Is(err, ErrTransientFetch) {
			r.logger.Debug(ctx, "profile fetch failed, retrying", "uid", id.UID, "error", err)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil && !errors.Is(err, ErrProfileNotFound) && !errors.Is(err, ErrTransientFetch) {
		err = fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}
	return profile, err
}

// signOutLocked drops the local credentials of id now and revokes them
// remotely in the background.
func (r *Resolver) signOutLocked(id models.Identity) {
	if id.IsZero() {
		return
	}
	revoke := r.detach(id)
	if r.closed {
		return
	}
	r.wg.Add(1)
	go r.signOut(id, revoke)
}

func (r *Resolver) detach(id models.Identity) func(context.Context) error {
	if d, ok := r.auth.(client.Detacher); ok {
		return d.Detach(id)
	}
	return func(ctx context.Context) error { return r.auth.SignOut(ctx, id) }
}

func (r *Resolver) signOut(id models.Identity, revoke func(context.Context) error) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(r.baseCtx, r.opts.SignOutTimeout)
	defer cancel()

	if err := revoke(ctx); err != nil {
		r.logger.Warn(ctx, "remote sign-out failed", "uid", id.UID, "error", err)
	}
}

// beginLocked starts a new generation, cancelling the previous one.
func (r *Resolver) beginLocked(parent context.Context) (uint64, context.Context) {
	r.supersedeLocked()
	r.started = true
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	return r.gen, ctx
}

func (r *Resolver) supersedeLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

// failLocked ends a session whose profile could not be resolved.
func (r *Resolver) failLocked(ctx context.Context, id models.Identity, err error) {
	r.logger.Warn(ctx, "profile resolution failed, signing out", "uid", id.UID, "error", err)
	r.clearLocked(ctx)
	r.setStateLocked(State{Status: StatusUnauthenticated, Mode: ModeLogin})
}

// abandonLocked leaves a state that a failed login left unresolved.
func (r *Resolver) abandonLocked(ctx context.Context) {
	if r.state.Status == StatusLoading || r.state.ProfilePending() {
		r.clearLocked(ctx)
		r.setStateLocked(State{Status: StatusUnauthenticated, Mode: ModeLogin})
	}
}

func (r *Resolver) clearLocked(ctx context.Context) {
	if err := r.store.Clear(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error(ctx, "failed to clear session record", "error", err)
	}
}

func (r *Resolver) saveLocked(ctx context.Context, rec session.Record) {
	if err := r.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Error(ctx, "failed to persist session, it will not survive a restart", "uid", rec.UID, "error", err)
	}
}

func (r *Resolver) setStateLocked(next State) {
	if next.Status == StatusAuthenticated {
		next.logout = r.logoutFromView
	}
	if r.state.same(next) {
		return
	}
	r.logger.Debug(r.baseCtx, "state change",
		"from", r.state.Status.String(), "to", next.Status.String(),
		"mode", next.Mode.String(), "uid", next.Identity.UID, "pending", next.ProfilePending())

	r.state = next
	r.queue = append(r.queue, delivery{state: next})
	close(r.changed)
	r.changed = make(chan struct{})
}

// flush delivers queued states to views. Only one goroutine delivers at a
// time; a view that changes state from Render has its change queued behind
// the current one. A new view joins the broadcast list when its first
// render is dequeued, so it receives every change queued after it.
func (r *Resolver) flush() {
	r.mu.Lock()
	if r.dispatching {
		r.mu.Unlock()
		return
	}
	r.dispatching = true
	for len(r.queue) > 0 {
		d := r.queue[0]
		r.queue = r.queue[1:]

		var views []*subscription
		switch {
		case d.sub == nil:
			views = slices.Clone(r.views)
		case !d.sub.removed:
			r.views = append(r.views, d.sub)
			views = []*subscription{d.sub}
		}
		r.mu.Unlock()

		for _, sub := range views {
			sub.view.Render(d.state)
		}

		r.mu.Lock()
	}
	r.dispatching = false
	r.mu.Unlock()
}
