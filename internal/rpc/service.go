// Package rpc describes the IdentityService spoken between the console and
// the server. Messages are plain Go structs carried as
// google.protobuf.Struct values, so no generated code is required.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "shiftdesk.identity.IdentityService"

const (
	MethodAuthenticate = "Authenticate"
	MethodRegister     = "Register"
	MethodSignOut      = "SignOut"
	MethodRefreshToken = "RefreshToken"
	MethodGetProfile   = "GetProfile"
	MethodPing         = "Ping"
)

// FullMethod returns the gRPC method path, e.g.
// "/shiftdesk.identity.IdentityService/SignOut".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IdentityServiceServer is implemented by the server transport.
type IdentityServiceServer interface {
	Authenticate(context.Context, *AuthenticateRequest) (*AuthResponse, error)
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodAuthenticate, IdentityServiceServer.Authenticate),
		unary(MethodRegister, IdentityServiceServer.Register),
		unary(MethodSignOut, IdentityServiceServer.SignOut),
		unary(MethodRefreshToken, IdentityServiceServer.RefreshToken),
		unary(MethodGetProfile, IdentityServiceServer.GetProfile),
		unary(MethodPing, IdentityServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shiftdesk/identity.proto",
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodDesc. Interceptors see
// the typed request.
func unary[Req, Resp any](method string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			req := new(Req)
			if err := FromStruct(in, req); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}

			handler := func(ctx context.Context, r any) (any, error) {
				resp, err := call(srv.(IdentityServiceServer), ctx, r.(*Req))
				if err != nil {
					return nil, err
				}
				return ToStruct(resp)
			}
			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// Invoke performs a unary call of method on cc.
func Invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req *Req, opts ...grpc.CallOption) (*Resp, error) {
	in, err := ToStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := FromStruct(out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
