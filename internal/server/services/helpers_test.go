package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	Email   string
	Name    string
	Code    string
	Purpose models.CodePurpose
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(email, name, code string, p models.CodePurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{Email: email, Name: name, Code: code, Purpose: p})
	return nil
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, name, code string) error {
	return m.record(email, name, code, models.PurposeVerify)
}

func (m *fakeMailer) SendResetCode(_ context.Context, email, name, code string) error {
	return m.record(email, name, code, models.PurposeReset)
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// plainHasher keeps tests fast; bcrypt itself is covered in the auth package.
type plainHasher struct{}

func (plainHasher) Hash(s string) (string, error) { return "h:" + s, nil }
func (plainHasher) Verify(s, digest string) bool  { return digest != "" && digest == "h:"+s }

type fakeRepoManager struct {
	repo accounts.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository      { return m.repo }

type env struct {
	clock        *fakeClock
	store        *accounts.MemoryRepository
	mailer       *fakeMailer
	db           *sql.DB
	mock         sqlmock.Sqlmock
	cfg          *config.Config
	verification *VerificationService
	identity     *IdentityService
	reset        *ResetService
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                  "test-secret",
		CodeLength:                 4,
		CodeTTL:                    10 * time.Minute,
		MinPasswordLength:          8,
		ResetGrantValidityDuration: 10 * time.Minute,
	}
}

// newEnv wires all three services over one in-memory store. wrap, when
// given, wraps the store to inject faults.
func newEnv(t *testing.T, wrap func(*accounts.MemoryRepository) accounts.Repository) *env {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	clock := &fakeClock{t: t0}
	store := accounts.NewMemoryRepository().WithClock(clock.Now)

	var repo accounts.Repository = store
	if wrap != nil {
		repo = wrap(store)
	}
	rm := &fakeRepoManager{repo: repo}

	e := &env{clock: clock, store: store, mailer: &fakeMailer{}, db: db, mock: mock, cfg: testConfig()}
	e.verification = NewVerificationService(db, rm, e.mailer, e.cfg, WithClock(clock.Now))
	e.identity = NewIdentityService(db, rm, plainHasher{}, e.verification, e.cfg, WithClock(clock.Now))
	e.reset = NewResetService(db, rm, plainHasher{}, e.verification, e.cfg, WithClock(clock.Now))
	return e
}

func (e *env) signup(t *testing.T, email string) *models.Account {
	t.Helper()
	acc, err := e.identity.Signup(context.Background(), SignupInput{Email: email, Password: "longenough1"})
	require.NoError(t, err)
	return acc
}

func (e *env) reload(t *testing.T, id string) *models.Account {
	t.Helper()
	acc, err := e.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return acc
}

// faultyRepo fails selected calls and delegates the rest.
type faultyRepo struct {
	accounts.Repository
	findErr   error
	insertErr error
	setErr    error
	sweepErr  error
}

func (f *faultyRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.Repository.FindByEmail(ctx, email)
}

func (f *faultyRepo) InsertLocal(ctx context.Context, email, digest, first, last string, code models.PendingCode) (*models.Account, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.Repository.InsertLocal(ctx, email, digest, first, last, code)
}

func (f *faultyRepo) SetVerificationCode(ctx context.Context, id, code string, p models.CodePurpose, exp time.Time) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Repository.SetVerificationCode(ctx, id, code, p, exp)
}

func (f *faultyRepo) SweepExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	return f.Repository.SweepExpiredCodes(ctx, before)
}

var errDBDown = errors.New("db down")
