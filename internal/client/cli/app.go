package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/shiftdesk/internal/client/client"
	"github.com/dmitrijs2005/shiftdesk/internal/client/config"
	"github.com/dmitrijs2005/shiftdesk/internal/client/identity"
	"github.com/dmitrijs2005/shiftdesk/internal/client/session"
	"github.com/dmitrijs2005/shiftdesk/internal/client/storage"
	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
)

var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getAttributes = GetAttributes
)

// resolver is the part of identity.Resolver the console uses.
type resolver interface {
	State() identity.State
	Start(ctx context.Context)
	Login(ctx context.Context, creds client.Credentials) error
	Signup(ctx context.Context, fields client.SignupFields) error
	Logout(ctx context.Context)
	ShowLogin()
	ShowSignup()
	SwitchMode()
	Subscribe(v identity.View) (unsubscribe func())
	Close()
}

type App struct {
	resolver resolver
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error
	// ping checks the server at startup when set.
	ping func(ctx context.Context) error
}

// NewApp opens the medium required by the configured persistence policy
// and connects to the server. Nothing is resolved until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	policy, err := session.ParsePolicy(c.PersistencePolicy)
	if err != nil {
		return nil, err
	}
	failurePolicy, err := identity.ParseFailurePolicy(c.FailurePolicy)
	if err != nil {
		return nil, err
	}

	kv, closeKV, err := storage.Open(ctx, policy.Scope(), c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening session storage: %w", err)
	}

	api, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = closeKV()
		return nil, err
	}

	r := identity.NewResolver(session.NewKVStore(kv, policy, logger), api, api, logger, identity.Options{
		FetchTimeout:  c.FetchTimeout,
		FailurePolicy: failurePolicy,
		FetchRetries:  c.FetchRetries,
	})

	app := newApp(r, os.Stdin, os.Stdout, api.Close, closeKV)
	app.ping = api.Ping
	return app, nil
}

func newApp(r resolver, in io.Reader, out io.Writer, closers ...func() error) *App {
	return &App{
		resolver: r,
		reader:   bufio.NewReader(in),
		out:      out,
		closers:  closers,
	}
}

// Run resolves the startup session and serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to shiftdesk console (type 'help' for commands)")

	if a.ping != nil {
		if err := a.ping(ctx); err != nil {
			fmt.Fprintf(a.out, "Warning: server unreachable (%v). A saved session can still be restored.\n", err)
		}
	}

	unsubscribe := a.resolver.Subscribe(screenView(a.out))
	a.resolver.Start(ctx)

	runREPL(ctx, a, func() string { return promptStatus(a.resolver.State()) }, a.reader, a.out)

	unsubscribe()
	a.resolver.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.resolver.State().Status == identity.StatusAuthenticated
}

func (a *App) readCredentials() (client.Credentials, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return client.Credentials{}, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return client.Credentials{}, err
	}
	return client.Credentials{Username: username, Password: password}, nil
}

// Login shows the login screen, prompts for credentials and hands them to
// the resolver.
func (a *App) Login(ctx context.Context) error {
	a.resolver.ShowLogin()

	creds, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(creds.Password)

	return a.resolver.Login(ctx, creds)
}

// Signup collects the account and profile fields and registers them.
func (a *App) Signup(ctx context.Context) error {
	a.resolver.ShowSignup()

	creds, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(creds.Password)

	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	attrs, err := getAttributes(a.reader, a.out)
	if err != nil {
		return err
	}

	return a.resolver.Signup(ctx, client.SignupFields{
		Credentials: creds,
		DisplayName: name,
		Attributes:  attrs,
	})
}

func (a *App) Switch() {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log out first to switch screens.")
		return
	}
	a.resolver.SwitchMode()
}

// WhoAmI prints the resolved profile and its capabilities.
func (a *App) WhoAmI() error {
	sess, ok := a.resolver.State().Session()
	switch {
	case !ok:
		fmt.Fprintln(a.out, "Not logged in.")
	case sess.Profile == nil:
		fmt.Fprintf(a.out, "Signed in as %s, profile still loading.\n", sess.Identity.UID)
	default:
		writeProfile(a.out, sess)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return
	}
	a.resolver.Logout(ctx)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Login failed: invalid username or password."
	case errors.Is(err, client.ErrAlreadyExists):
		return "Signup failed: that username is taken."
	case errors.Is(err, client.ErrInvalidFields):
		return "Signup failed: " + err.Error()
	case errors.Is(err, identity.ErrProfileNotFound):
		return "Your profile no longer exists; you have been logged out."
	case errors.Is(err, identity.ErrTransientFetch):
		return "Could not load your profile; you have been logged out."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, identity.ErrSuperseded):
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}
