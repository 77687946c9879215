package grpc

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"path"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/oklog/ulid/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// RequestIDHeader is the response header carrying the request id.
const RequestIDHeader = "x-request-id"

// access levels per method; methods not listed are public.
var (
	accessTokenMethods = map[string]bool{
		"Me": true,
	}
	adminTokenMethods = map[string]bool{
		"SweepExpiredCodes": true,
		"ResolveSocial":     true,
	}
)

// AccountIDFromContext returns the account id the auth interceptor stored.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// loggingInterceptor tags the call with a request id, converts the handler
// error to a status and logs the outcome.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	requestID := ulid.Make().String()
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

	resp, err := handler(ctx, req)
	st := toStatus(ctx, err)

	code := status.Code(st)
	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	}
	switch {
	case err == nil:
		s.logger.Info(ctx, "rpc", args...)
	case code == codes.Internal || code == codes.Unavailable:
		s.logger.Error(ctx, "rpc", append(args, "error", err)...)
	default:
		s.logger.Info(ctx, "rpc", append(args, "error", err)...)
	}

	return resp, st
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil {
		return handler(ctx, req)
	}

	method := path.Base(info.FullMethod)
	d := s.limiter.Allow(ctx, method, callerAddress(ctx))
	if !d.Allowed {
		s.metrics.RateLimited(method)
		return nil, status.Error(codes.ResourceExhausted,
			fmt.Sprintf("too many requests, retry in %s", d.RetryAfter.Round(time.Second)))
	}

	return handler(ctx, req)
}

// callerAddress is the peer host without the port.
func callerAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func metadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	method := path.Base(info.FullMethod)

	if accessTokenMethods[method] {
		accessToken := metadataValue(ctx, common.AccessTokenHeaderName)
		if accessToken == "" {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		accountID, err := auth.GetAccountIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		ctx = context.WithValue(ctx, accountIDKey, accountID)
	}

	if adminTokenMethods[method] {
		token := metadataValue(ctx, common.AdminTokenHeaderName)
		if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			return nil, status.Error(codes.PermissionDenied, "admin token required")
		}
	}

	return handler(ctx, req)
}
