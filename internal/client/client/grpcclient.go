package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
	"github.com/dmitrijs2005/shiftdesk/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const pingTimeout = 3 * time.Second

// credentials are the token pair the server issued to one identity.
type credentials struct {
	uid     string
	access  string
	refresh string
}

// sessionUIDKey selects the session of a given identity for a call.
type sessionUIDKey struct{}

// boundCredentialsKey marks a call that must use the credentials in the
// context instead of the current session's.
type boundCredentialsKey struct{}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu       sync.RWMutex
	sessions map[string]credentials
	current  string
}

var (
	_ Client   = (*GRPCClient)(nil)
	_ Detacher = (*GRPCClient)(nil)
)

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults (tests use them to dial an in-memory listener).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, sessions: make(map[string]credentials)}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) currentCredentials() credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[c.current]
}

// credentialsFor picks the session named in ctx, or the current one.
func (c *GRPCClient) credentialsFor(ctx context.Context) credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if uid, ok := ctx.Value(sessionUIDKey{}).(string); ok {
		if creds, ok := c.sessions[uid]; ok {
			return creds
		}
	}
	return c.sessions[c.current]
}

// setSession stores the pair for uid and makes it the current session.
// Credentials of other identities are kept until they are detached.
func (c *GRPCClient) setSession(uid, access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[uid] = credentials{uid: uid, access: access, refresh: refresh}
	c.current = uid
}

// rotate replaces prev with the rotated pair unless the session was
// detached or replaced meanwhile.
func (c *GRPCClient) rotate(prev credentials, access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.sessions[prev.uid]; ok && cur.refresh == prev.refresh {
		c.sessions[prev.uid] = credentials{uid: prev.uid, access: access, refresh: refresh}
	}
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// accessTokenInterceptor attaches the current access token and, when the
// server answers that it expired, rotates the pair once and retries the
// call. Calls carrying bound credentials are sent as they are.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if bound, ok := ctx.Value(boundCredentialsKey{}).(credentials); ok {
		if bound.access != "" {
			ctx = withAccessToken(ctx, bound.access)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	cur := c.credentialsFor(ctx)
	if cur.access != "" {
		ctx = withAccessToken(ctx, cur.access)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil || method == rpc.FullMethod(rpc.MethodRefreshToken) {
		return err
	}
	if !isTokenExpired(err) || cur.refresh == "" {
		return err
	}

	resp, rerr := rpc.Invoke[rpc.RefreshTokenRequest, rpc.AuthResponse](ctx, cc, rpc.MethodRefreshToken,
		&rpc.RefreshTokenRequest{RefreshToken: cur.refresh})
	if rerr != nil {
		return err
	}
	c.rotate(cur, resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func (c *GRPCClient) Authenticate(ctx context.Context, creds Credentials) (models.Identity, error) {
	if err := creds.Validate(); err != nil {
		return models.Identity{}, err
	}

	resp, err := rpc.Invoke[rpc.AuthenticateRequest, rpc.AuthResponse](ctx, c.conn, rpc.MethodAuthenticate,
		&rpc.AuthenticateRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		err = c.mapError(err)
		if errors.Is(err, ErrUnauthorized) {
			return models.Identity{}, ErrInvalidCredentials
		}
		return models.Identity{}, err
	}

	c.setSession(resp.UID, resp.AccessToken, resp.RefreshToken)
	return models.Identity{UID: resp.UID}, nil
}

func (c *GRPCClient) Register(ctx context.Context, fields SignupFields) (models.Identity, error) {
	if err := fields.Validate(); err != nil {
		return models.Identity{}, err
	}

	req := &rpc.RegisterRequest{
		Username:    fields.Username,
		Password:    fields.Password,
		DisplayName: fields.DisplayName,
		Attributes:  fields.Attributes,
	}
	resp, err := rpc.Invoke[rpc.RegisterRequest, rpc.AuthResponse](ctx, c.conn, rpc.MethodRegister, req)
	if err != nil {
		return models.Identity{}, c.mapError(err)
	}

	c.setSession(resp.UID, resp.AccessToken, resp.RefreshToken)
	return models.Identity{UID: resp.UID}, nil
}

// SignOut drops the local credentials of id and revokes its session on the
// server.
func (c *GRPCClient) SignOut(ctx context.Context, id models.Identity) error {
	return c.Detach(id)(ctx)
}

// Detach forgets the local credentials of id at once and returns the call
// that revokes them on the server. The call only uses the captured pair, so
// a session opened after Detach returns is left alone.
func (c *GRPCClient) Detach(id models.Identity) func(context.Context) error {
	c.mu.Lock()
	creds, ok := c.sessions[id.UID]
	delete(c.sessions, id.UID)
	if c.current == id.UID {
		c.current = ""
	}
	c.mu.Unlock()

	if !ok {
		creds = credentials{uid: id.UID}
	}
	return func(ctx context.Context) error {
		return c.revoke(ctx, creds)
	}
}

// revoke signs out with creds, rotating them first when the access token
// has expired.
func (c *GRPCClient) revoke(ctx context.Context, creds credentials) error {
	err := c.signOutWith(ctx, creds)
	if !isTokenExpired(err) || creds.refresh == "" {
		return c.mapError(err)
	}

	resp, rerr := rpc.Invoke[rpc.RefreshTokenRequest, rpc.AuthResponse](context.WithValue(ctx, boundCredentialsKey{}, creds),
		c.conn, rpc.MethodRefreshToken, &rpc.RefreshTokenRequest{RefreshToken: creds.refresh})
	if rerr != nil {
		return c.mapError(err)
	}
	creds.access, creds.refresh = resp.AccessToken, resp.RefreshToken

	return c.mapError(c.signOutWith(ctx, creds))
}

func (c *GRPCClient) signOutWith(ctx context.Context, creds credentials) error {
	ctx = context.WithValue(ctx, boundCredentialsKey{}, creds)
	_, err := rpc.Invoke[rpc.SignOutRequest, rpc.SignOutResponse](ctx, c.conn, rpc.MethodSignOut,
		&rpc.SignOutRequest{UID: creds.uid, RefreshToken: creds.refresh})
	return err
}

// GetProfile calls with uid's own session when one is held.
func (c *GRPCClient) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	ctx = context.WithValue(ctx, sessionUIDKey{}, uid)
	resp, err := rpc.Invoke[rpc.GetProfileRequest, rpc.GetProfileResponse](ctx, c.conn, rpc.MethodGetProfile,
		&rpc.GetProfileRequest{UID: uid})
	if err != nil {
		return nil, c.mapError(err)
	}
	return &resp.Profile, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := rpc.Invoke[rpc.PingRequest, rpc.PingResponse](ctx, c.conn, rpc.MethodPing, &rpc.PingRequest{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidFields, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
