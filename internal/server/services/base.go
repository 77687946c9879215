// Package services implements the account core: the verification code
// ledger, identity resolution for local and social sign-ins, and the
// password reset flow.
package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Option customises a service at construction.
type Option func(*base)

// WithLogger sets the logger; the default discards.
func WithLogger(l logging.Logger) Option {
	return func(b *base) { b.logger = l }
}

// WithMetrics sets the counters; nil disables them.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// base carries what every service needs: the pool, the repository manager
// and the ambient logger, metrics and clock.
type base struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func newBase(db *sql.DB, rm repomanager.RepositoryManager, module string, opts []Option) base {
	b := base{
		db:          db,
		repomanager: rm,
		logger:      logging.Nop{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With("module", module)
	return b
}

func (b *base) accounts() accounts.Repository {
	return b.repomanager.Accounts(b.db)
}

// notFoundAs maps a repository miss to the given failure and anything else
// to a store failure.
func notFoundAs(op string, err error, failure error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return failure
	}
	return common.StoreFailure(op, err)
}
