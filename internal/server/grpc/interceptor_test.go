package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepay/internal/api"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/server/auth"
	"github.com/dmitrijs2005/securepay/internal/server/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeRows{}, &fakeProfiles{}, feed.NewHub())

	for method := range api.PublicMethods {
		called := false
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			return "ok", nil
		}
		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, h)
		require.NoError(t, err, method)
		assert.True(t, called)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_RejectsMissingAndBadTokens(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeRows{}, &fakeProfiles{}, feed.NewHub())
	info := &grpc.UnaryServerInfo{FullMethod: api.QueryMethod}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = s.accessTokenInterceptor(withToken("garbage"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrInvalidToken.Error(), status.Convert(err).Message())

	expired, err := auth.GenerateToken("u1", []byte("k"), -time.Minute)
	require.NoError(t, err)
	_, err = s.accessTokenInterceptor(withToken(expired), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())
}

func TestInterceptor_InjectsUserID(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeRows{}, &fakeProfiles{}, feed.NewHub())
	token, err := auth.GenerateToken("user-123", []byte("k"), time.Minute)
	require.NoError(t, err)

	var got string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, err = userIDFromContext(ctx)
		return nil, err
	}
	_, err = s.accessTokenInterceptor(withToken(token), nil, &grpc.UnaryServerInfo{FullMethod: api.UpsertMethod}, h)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

type ctxStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (c *ctxStream) Context() context.Context { return c.ctx }

func TestStreamInterceptor(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeRows{}, &fakeProfiles{}, feed.NewHub())
	info := &grpc.StreamServerInfo{FullMethod: api.SubscribeMethod, IsServerStream: true}

	err := s.streamAccessTokenInterceptor(nil, &ctxStream{ctx: context.Background()}, info,
		func(srv interface{}, ss grpc.ServerStream) error {
			t.Fatal("handler should not be called")
			return nil
		})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, err := auth.GenerateToken("u9", []byte("k"), time.Minute)
	require.NoError(t, err)
	err = s.streamAccessTokenInterceptor(nil, &ctxStream{ctx: withToken(token)}, info,
		func(srv interface{}, ss grpc.ServerStream) error {
			id, err := userIDFromContext(ss.Context())
			assert.Equal(t, "u9", id)
			return err
		})
	require.NoError(t, err)
}
