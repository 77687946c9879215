// Package grpc serves AccountService: it validates requests at the boundary,
// applies logging, rate limiting and authentication interceptors, and maps
// domain failures to gRPC status codes.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// Services bundles the core the handlers delegate to.
type Services struct {
	Identity     *services.IdentityService
	Verification *services.VerificationService
	Reset        *services.ResetService
}

type GRPCServer struct {
	rpc.UnimplementedAccountServiceServer
	address             string
	svc                 Services
	limiter             *ratelimit.Limiter
	metrics             *metrics.Metrics
	logger              logging.Logger
	jwtSecret           []byte
	accessTokenValidity time.Duration
	adminToken          string
	codeLength          int
}

// Option customises a GRPCServer.
type Option func(*GRPCServer)

// WithLimiter enables per-caller rate limiting.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *GRPCServer) { s.limiter = l }
}

// WithMetrics records rejected calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GRPCServer) { s.metrics = m }
}

func NewGRPCServer(cfg *config.Config, l logging.Logger, svc Services, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:             cfg.EndpointAddrGRPC,
		svc:                 svc,
		logger:              l.With("module", "grpc_server"),
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidityDuration,
		adminToken:          cfg.AdminToken,
		codeLength:          cfg.CodeLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Server builds a grpc.Server with the interceptor chain and registers the
// service on it.
func (s *GRPCServer) Server() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.rateLimitInterceptor,
		s.authInterceptor,
	))
	rpc.RegisterAccountServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.Server()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
