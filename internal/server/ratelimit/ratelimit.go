// Package ratelimit caps how often a caller may hit each account endpoint.
// Counters live in Redis so that every server instance shares them.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/redis/go-redis/v9"
)

// fixedWindowLua counts a hit and starts the window on the first one.
// It returns the hit count and the milliseconds left in the window.
const fixedWindowLua = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// Policy allows Limit calls per Window.
type Policy struct {
	Limit  int64
	Window time.Duration
}

// DefaultPolicies are keyed by RPC method name. Methods without a policy are
// not limited.
func DefaultPolicies() map[string]Policy {
	general := Policy{Limit: 100, Window: 15 * time.Minute}
	return map[string]Policy{
		"Signup":          general,
		"Login":           general,
		"ForgotPassword":  general,
		"VerifyResetCode": general,
		"ResetPassword":   general,
		"VerifyEmail":     {Limit: 5, Window: 15 * time.Minute},
		"ResendCode":      {Limit: 3, Window: time.Hour},
	}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter per method and caller.
type Limiter struct {
	rdb      redis.Scripter
	policies map[string]Policy
	prefix   string
	script   *redis.Script
	logger   logging.Logger
}

// New returns a limiter over rdb. A nil policies map means DefaultPolicies.
func New(rdb redis.Scripter, policies map[string]Policy, logger logging.Logger) *Limiter {
	if policies == nil {
		policies = DefaultPolicies()
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Limiter{
		rdb:      rdb,
		policies: policies,
		prefix:   "gophauth:ratelimit",
		script:   redis.NewScript(fixedWindowLua),
		logger:   logger.With("module", "ratelimit"),
	}
}

// Allow records one call of method by caller. When Redis cannot be reached
// the call is allowed and the error is logged.
func (l *Limiter) Allow(ctx context.Context, method, caller string) Decision {
	p, ok := l.policies[method]
	if !ok || p.Limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}
	}

	count, ttl, err := l.hit(ctx, l.key(method, caller), p.Window)
	if err != nil {
		l.logger.Warn(ctx, "rate limiter unavailable, allowing call", "method", method, "error", err)
		return Decision{Allowed: true, Remaining: -1}
	}

	if count > p.Limit {
		return Decision{Allowed: false, RetryAfter: ttl}
	}
	return Decision{Allowed: true, Remaining: p.Limit - count}
}

func (l *Limiter) key(method, caller string) string {
	return fmt.Sprintf("%s:%s:%s", l.prefix, method, caller)
}

func (l *Limiter) hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := l.script.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit eval: %w", err)
	}
	if len(res) < 2 {
		return 0, 0, fmt.Errorf("ratelimit invalid result")
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}
