package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/rpc"
	"github.com/dmitrijs2005/shiftdesk/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newInterceptorServer() *GRPCServer {
	return NewGRPCServer("", logging.Discard(), nil, testSecret)
}

var protectedInfos = []*grpc.UnaryServerInfo{
	{FullMethod: rpc.FullMethod(rpc.MethodSignOut)},
	{FullMethod: rpc.FullMethod(rpc.MethodGetProfile)},
}

func incoming(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_UnprotectedPassesThrough(t *testing.T) {
	s := newInterceptorServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodAuthenticate)}

	called := false
	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := userIDFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_Protected(t *testing.T) {
	valid, err := auth.GenerateToken("u-1", []byte(testSecret), time.Minute)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("u-1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("u-1", []byte("other"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ctx     context.Context
		wantMsg string
	}{
		{"missing", context.Background(), "missing token"},
		{"garbage", incoming("not-a-jwt"), common.ErrInvalidToken.Error()},
		{"wrong key", incoming(foreign), common.ErrInvalidToken.Error()},
		{"expired", incoming(expired), common.ErrTokenExpired.Error()},
	}
	for _, info := range protectedInfos {
		for _, tt := range tests {
			t.Run(info.FullMethod+"/"+tt.name, func(t *testing.T) {
				_, err := newInterceptorServer().accessTokenInterceptor(tt.ctx, nil, info, func(context.Context, any) (any, error) {
					t.Fatal("handler must not run")
					return nil, nil
				})
				assert.Equal(t, codes.Unauthenticated, status.Code(err))
				assert.Equal(t, tt.wantMsg, status.Convert(err).Message())
			})
		}

		t.Run(info.FullMethod+"/valid", func(t *testing.T) {
			var got string
			_, err := newInterceptorServer().accessTokenInterceptor(incoming(valid), nil, info, func(ctx context.Context, _ any) (any, error) {
				got, _ = userIDFromContext(ctx)
				return nil, nil
			})
			require.NoError(t, err)
			assert.Equal(t, "u-1", got)
		})
	}
}
