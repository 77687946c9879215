package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(method)}
}

func okHandler(called *bool) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		*called = true
		return "ok", nil
	}
}

func TestAuthInterceptor_PublicMethodNeedsNoToken(t *testing.T) {
	s := newTestServer(t, &mailbox{})
	called := false

	resp, err := s.authInterceptor(context.Background(), nil, info("Signup"), okHandler(&called))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestAuthInterceptor_AccessToken(t *testing.T) {
	s := newTestServer(t, &mailbox{})

	t.Run("missing", func(t *testing.T) {
		called := false
		_, err := s.authInterceptor(context.Background(), nil, info("Me"), okHandler(&called))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.False(t, called)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		token, err := auth.GenerateToken("acc-1", []byte("other"), time.Hour)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))

		called := false
		_, err = s.authInterceptor(ctx, nil, info("Me"), okHandler(&called))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.False(t, called)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := auth.GenerateToken("acc-1", s.jwtSecret, -time.Minute)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))

		called := false
		_, err = s.authInterceptor(ctx, nil, info("Me"), okHandler(&called))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid", func(t *testing.T) {
		token, err := auth.GenerateToken("acc-1", s.jwtSecret, time.Hour)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))

		var got string
		_, err = s.authInterceptor(ctx, nil, info("Me"), func(ctx context.Context, req any) (any, error) {
			got, _ = AccountIDFromContext(ctx)
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "acc-1", got)
	})
}

func TestAuthInterceptor_AdminToken(t *testing.T) {
	s := newTestServer(t, &mailbox{})
	withAdmin := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AdminTokenHeaderName, token))
	}

	called := false
	_, err := s.authInterceptor(withAdmin("admin-secret"), nil, info("SweepExpiredCodes"), okHandler(&called))
	require.NoError(t, err)
	assert.True(t, called)

	for _, token := range []string{"", "admin", "admin-secret2"} {
		called = false
		_, err = s.authInterceptor(withAdmin(token), nil, info("SweepExpiredCodes"), okHandler(&called))
		assert.Equal(t, codes.PermissionDenied, status.Code(err), "token %q", token)
		assert.False(t, called)
	}

	s.adminToken = ""
	_, err = s.authInterceptor(withAdmin(""), nil, info("ResolveSocial"), okHandler(&called))
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "unset admin token disables admin methods")
}

func TestRateLimitInterceptor(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := ratelimit.New(rdb, map[string]ratelimit.Policy{
		"VerifyEmail": {Limit: 2, Window: 15 * time.Minute},
	}, nil)
	s := newTestServer(t, &mailbox{}, WithLimiter(limiter))

	from := func(ip string) context.Context {
		return peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP(ip), Port: 40000}})
	}

	called := false
	for i := 0; i < 2; i++ {
		_, err := s.rateLimitInterceptor(from("10.0.0.1"), nil, info("VerifyEmail"), okHandler(&called))
		require.NoError(t, err)
	}

	called = false
	_, err := s.rateLimitInterceptor(from("10.0.0.1"), nil, info("VerifyEmail"), okHandler(&called))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.False(t, called)

	_, err = s.rateLimitInterceptor(from("10.0.0.2"), nil, info("VerifyEmail"), okHandler(&called))
	assert.NoError(t, err, "other callers keep their own window")

	_, err = s.rateLimitInterceptor(from("10.0.0.1"), nil, info("Ping"), okHandler(&called))
	assert.NoError(t, err, "unlisted methods are not limited")
}

func TestRateLimitInterceptor_Disabled(t *testing.T) {
	s := newTestServer(t, &mailbox{})
	called := false

	for i := 0; i < 10; i++ {
		_, err := s.rateLimitInterceptor(context.Background(), nil, info("VerifyEmail"), okHandler(&called))
		require.NoError(t, err)
	}
}

func TestCallerAddress(t *testing.T) {
	assert.Equal(t, "unknown", callerAddress(context.Background()))

	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("192.0.2.7"), Port: 5555}})
	assert.Equal(t, "192.0.2.7", callerAddress(ctx))
}

func TestLoggingInterceptor_ConvertsErrors(t *testing.T) {
	s := newTestServer(t, &mailbox{})

	_, err := s.loggingInterceptor(context.Background(), nil, info("VerifyEmail"), func(context.Context, any) (any, error) {
		return nil, common.ErrCodeExpired
	})
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "code expired", st.Message())

	resp, err := s.loggingInterceptor(context.Background(), nil, info("Ping"), func(context.Context, any) (any, error) {
		return "pong", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
}
