package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, map[string]Policy{"VerifyEmail": {Limit: 5, Window: 15 * time.Minute}}, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := l.Allow(ctx, "VerifyEmail", "10.0.0.1")
		require.True(t, d.Allowed, "call %d", i+1)
		assert.Equal(t, int64(4-i), d.Remaining)
	}

	d := l.Allow(ctx, "VerifyEmail", "10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, 15*time.Minute)
}

func TestLimiter_SeparatesCallersAndMethods(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, map[string]Policy{
		"ResendCode": {Limit: 1, Window: time.Hour},
		"Login":      {Limit: 1, Window: time.Hour},
	}, nil)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "ResendCode", "a").Allowed)
	assert.False(t, l.Allow(ctx, "ResendCode", "a").Allowed)

	assert.True(t, l.Allow(ctx, "ResendCode", "b").Allowed)
	assert.True(t, l.Allow(ctx, "Login", "a").Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := New(rdb, map[string]Policy{"ResendCode": {Limit: 3, Window: time.Hour}}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow(ctx, "ResendCode", "a").Allowed)
	}
	require.False(t, l.Allow(ctx, "ResendCode", "a").Allowed)

	mr.FastForward(time.Hour + time.Second)
	assert.True(t, l.Allow(ctx, "ResendCode", "a").Allowed)
}

func TestLimiter_UnlistedMethodIsFree(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, nil, nil)

	for i := 0; i < 200; i++ {
		require.True(t, l.Allow(context.Background(), "Ping", "a").Allowed)
	}
}

func TestLimiter_FailsOpen(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := New(rdb, map[string]Policy{"Login": {Limit: 1, Window: time.Minute}}, nil)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "Login", "a").Allowed)
	}
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()

	assert.Equal(t, Policy{Limit: 5, Window: 15 * time.Minute}, p["VerifyEmail"])
	assert.Equal(t, Policy{Limit: 3, Window: time.Hour}, p["ResendCode"])
	for _, m := range []string{"Signup", "Login", "ForgotPassword", "VerifyResetCode", "ResetPassword"} {
		assert.Equal(t, Policy{Limit: 100, Window: 15 * time.Minute}, p[m], m)
	}
	_, ok := p["Ping"]
	assert.False(t, ok)
}
