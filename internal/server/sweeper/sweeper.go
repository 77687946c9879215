// Package sweeper periodically clears expired verification and reset codes.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Sweeper is the operation run on every tick.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Job runs a Sweeper on a fixed interval.
type Job struct {
	sweeper  Sweeper
	interval time.Duration
	logger   logging.Logger
}

func New(s Sweeper, interval time.Duration, logger logging.Logger) *Job {
	return &Job{sweeper: s, interval: interval, logger: logger.With("module", "sweeper")}
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables the job. Failures are logged and the next tick tries again.
func (j *Job) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info(ctx, "sweeper disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info(ctx, "sweeper started", "interval", j.interval.String())

	for {
		select {
		case <-ctx.Done():
			j.logger.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *Job) runOnce(ctx context.Context) {
	n, err := j.sweeper.SweepExpired(ctx)
	if err != nil {
		j.logger.Error(ctx, "sweep failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "sweep cleared codes", "cleared", n)
	}
}
