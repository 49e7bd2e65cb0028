// Package grpc serves the identity service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
	"github.com/dmitrijs2005/shiftdesk/internal/rpc"
	"github.com/dmitrijs2005/shiftdesk/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the business layer behind the handlers.
type IdentityService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Authenticate(ctx context.Context, username string, password []byte) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	SignOut(ctx context.Context, userID, refreshToken string) error
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
}

type GRPCServer struct {
	address   string
	identity  IdentityService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.IdentityServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, identity IdentityService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		identity:  identity,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the service and interceptors registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	}, opts...)
	srv := grpc.NewServer(opts...)
	rpc.RegisterIdentityServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
