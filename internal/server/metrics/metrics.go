// Package metrics exposes Prometheus counters for the account flows and the
// HTTP endpoint that serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the account counters. A nil *Metrics records nothing, so
// services can run without a registry.
type Metrics struct {
	CodesIssued      *prometheus.CounterVec
	CodeValidations  *prometheus.CounterVec
	AccountsCreated  *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	MailFailures     *prometheus.CounterVec
	CodesSwept       prometheus.Counter
	RateLimitedCalls *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CodesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_codes_issued_total",
			Help: "Codes issued by purpose",
		}, []string{"purpose"}),
		CodeValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_code_validations_total",
			Help: "Code validations by purpose and result",
		}, []string{"purpose", "result"}),
		AccountsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_accounts_created_total",
			Help: "Accounts created by method",
		}, []string{"method"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_logins_total",
			Help: "Login attempts by method and result",
		}, []string{"method", "result"}),
		MailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_mail_failures_total",
			Help: "Failed code deliveries by purpose",
		}, []string{"purpose"}),
		CodesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_codes_swept_total",
			Help: "Expired codes cleared by the sweeper",
		}),
		RateLimitedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_rate_limited_total",
			Help: "Calls rejected by the rate limiter by method",
		}, []string{"method"}),
	}

	reg.MustRegister(m.CodesIssued, m.CodeValidations, m.AccountsCreated, m.Logins,
		m.MailFailures, m.CodesSwept, m.RateLimitedCalls)

	return m
}

func (m *Metrics) CodeIssued(purpose string) {
	if m == nil {
		return
	}
	m.CodesIssued.WithLabelValues(purpose).Inc()
}

func (m *Metrics) CodeValidated(purpose, result string) {
	if m == nil {
		return
	}
	m.CodeValidations.WithLabelValues(purpose, result).Inc()
}

func (m *Metrics) AccountCreated(method string) {
	if m == nil {
		return
	}
	m.AccountsCreated.WithLabelValues(method).Inc()
}

func (m *Metrics) Login(method, result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) MailFailed(purpose string) {
	if m == nil {
		return
	}
	m.MailFailures.WithLabelValues(purpose).Inc()
}

func (m *Metrics) Swept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CodesSwept.Add(float64(n))
}

func (m *Metrics) RateLimited(method string) {
	if m == nil {
		return
	}
	m.RateLimitedCalls.WithLabelValues(method).Inc()
}
