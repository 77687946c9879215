// Package server wires the account service together: it opens and migrates
// the database, builds the services and their transports, and runs them
// until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mail"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/sweeper"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// test seams
var (
	openDB     = sql.Open
	dbBackoff  = func() retry.Backoff { return retry.WithMaxRetries(6, retry.NewExponential(250*time.Millisecond)) }
	newLimiter = func(addr string, logger logging.Logger) (*ratelimit.Limiter, func() error) {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		return ratelimit.New(rdb, nil, logger), rdb.Close
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []func() error

	metricsServer *metrics.Server
	grpcServer    *gs.GRPCServer
	sweepJob      *sweeper.Job
}

// NewApp validates cfg, connects to the database, applies migrations and
// builds every component. Nothing is served until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	app := &App{config: cfg, logger: logger}

	db, err := openDB("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	if err := waitForDB(ctx, db, logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if err := app.build(ctx, rm); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context, rm repomanager.RepositoryManager) error {
	cfg := app.config

	app.metricsServer = metrics.NewServer(cfg.MetricsAddr, func(ctx context.Context) bool {
		return app.db.PingContext(ctx) == nil
	}, app.logger)
	m := app.metricsServer.Metrics()

	mailer, err := mail.New(ctx, cfg, app.logger.With("module", "mail"))
	if err != nil {
		return fmt.Errorf("mail init error: %w", err)
	}

	opts := []services.Option{services.WithLogger(app.logger), services.WithMetrics(m)}
	hasher := auth.NewBcryptHasher(0)
	verification := services.NewVerificationService(app.db, rm, mailer, cfg, opts...)
	svc := gs.Services{
		Identity:     services.NewIdentityService(app.db, rm, hasher, verification, cfg, opts...),
		Verification: verification,
		Reset:        services.NewResetService(app.db, rm, hasher, verification, cfg, opts...),
	}

	grpcOpts := []gs.Option{gs.WithMetrics(m)}
	if cfg.RateLimitEnabled {
		if cfg.RedisAddr == "" {
			return fmt.Errorf("rate limiting needs a redis address")
		}
		limiter, closeRedis := newLimiter(cfg.RedisAddr, app.logger)
		app.closers = append(app.closers, closeRedis)
		grpcOpts = append(grpcOpts, gs.WithLimiter(limiter))
	}

	app.grpcServer = gs.NewGRPCServer(cfg, app.logger, svc, grpcOpts...)
	app.sweepJob = sweeper.New(verification, cfg.SweepInterval, app.logger)
	return nil
}

// waitForDB pings until the database answers or the backoff gives up.
func waitForDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return retry.Do(ctx, dbBackoff(), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves gRPC and metrics and runs the sweeper until ctx is cancelled,
// a signal arrives, or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := app.grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.metricsServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "metrics server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		app.sweepJob.Run(ctx)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "Stopped")
}

// Close releases the database pool and the Redis client.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
