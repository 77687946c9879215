package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mail"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Status is what checkStatus reports about an email address.
type Status struct {
	Verified bool
	// ExpiresAt is the expiry of the pending verification code, if any.
	ExpiresAt *time.Time
}

// VerificationService owns the single code slot on each account: it issues,
// checks, invalidates and sweeps codes. Issuing overwrites whatever code was
// pending, so only the latest code is ever accepted.
type VerificationService struct {
	base
	mailer     mail.Sender
	codeLength int
	codeTTL    time.Duration
}

func NewVerificationService(db *sql.DB, rm repomanager.RepositoryManager, mailer mail.Sender, cfg *config.Config, opts ...Option) *VerificationService {
	return &VerificationService{
		base:       newBase(db, rm, "verification", opts),
		mailer:     mailer,
		codeLength: cfg.CodeLength,
		codeTTL:    cfg.CodeTTL,
	}
}

// Issue stores a fresh code for purpose on the account and mails it.
//
// The code is persisted before delivery is attempted; a mail failure is
// reported as common.ErrDeliveryFailed and the stored code stays valid. The
// returned code is for callers that need it server-side and must never be
// sent back to the client.
func (s *VerificationService) Issue(ctx context.Context, acc *models.Account, purpose models.CodePurpose) (string, error) {
	p, err := s.pending(purpose)
	if err != nil {
		return "", err
	}

	if err := s.accounts().SetVerificationCode(ctx, acc.ID, p.Code, purpose, p.ExpiresAt); err != nil {
		return "", notFoundAs("set verification code", err, common.ErrUserNotFound)
	}

	acc.VerificationCode = &p.Code
	acc.VerificationCodeExpiresAt = &p.ExpiresAt
	acc.VerificationCodePurpose = purpose

	return p.Code, s.deliver(ctx, acc, purpose, p.Code)
}

// pending draws a new code and its expiry without storing anything.
func (s *VerificationService) pending(purpose models.CodePurpose) (models.PendingCode, error) {
	code, err := GenerateCode(s.codeLength)
	if err != nil {
		return models.PendingCode{}, fmt.Errorf("generate code: %w", err)
	}
	// Postgres keeps microseconds; truncating keeps the in-memory value equal
	// to what a later read returns.
	expiresAt := s.now().Add(s.codeTTL).Truncate(time.Microsecond)
	return models.PendingCode{Code: code, Purpose: purpose, ExpiresAt: expiresAt}, nil
}

// deliver mails a code that is already on record.
func (s *VerificationService) deliver(ctx context.Context, acc *models.Account, purpose models.CodePurpose, code string) error {
	s.metrics.CodeIssued(string(purpose))
	s.logger.Info(ctx, "code issued", "account_id", acc.ID, "purpose", purpose, "expires_at", *acc.VerificationCodeExpiresAt)

	send := s.mailer.SendVerificationCode
	if purpose == models.PurposeReset {
		send = s.mailer.SendResetCode
	}
	if err := send(ctx, acc.Email, acc.DisplayName(), code); err != nil {
		s.metrics.MailFailed(string(purpose))
		s.logger.Warn(ctx, "code delivery failed", "account_id", acc.ID, "purpose", purpose, "error", err)
		return common.DeliveryFailure("send code", err)
	}
	return nil
}

// Check validates a supplied code against the one on record for purpose
// without changing anything. A code issued for another purpose counts as no
// code at all.
func (s *VerificationService) Check(acc *models.Account, purpose models.CodePurpose, supplied string) error {
	err := s.check(acc, purpose, supplied)
	s.metrics.CodeValidated(string(purpose), resultLabel(err))
	return err
}

func (s *VerificationService) check(acc *models.Account, purpose models.CodePurpose, supplied string) error {
	if !acc.HasCode(purpose) {
		return common.ErrNoCodeIssued
	}
	if s.now().After(*acc.VerificationCodeExpiresAt) {
		return common.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(*acc.VerificationCode), []byte(supplied)) != 1 {
		return common.ErrCodeMismatch
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrNoCodeIssued):
		return "no_code"
	case errors.Is(err, common.ErrCodeExpired):
		return "expired"
	case errors.Is(err, common.ErrCodeMismatch):
		return "mismatch"
	default:
		return "error"
	}
}

// Verify proves control of email with code. An already verified account is
// rejected before the code is looked at. On success the code is cleared and
// the account is marked verified.
func (s *VerificationService) Verify(ctx context.Context, email, code string) (*models.Account, error) {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs("find account", err, common.ErrUserNotFound)
	}

	if acc.EmailVerified {
		return nil, common.ErrAlreadyVerified
	}

	if err := s.Check(acc, models.PurposeVerify, code); err != nil {
		s.logger.Info(ctx, "verification rejected", "account_id", acc.ID, "reason", common.CodeOf(err))
		return nil, err
	}

	if err := s.accounts().MarkVerified(ctx, acc.ID); err != nil {
		return nil, notFoundAs("mark verified", err, common.ErrUserNotFound)
	}

	acc.EmailVerified = true
	acc.VerificationCode = nil
	acc.VerificationCodeExpiresAt = nil
	acc.VerificationCodePurpose = models.PurposeNone

	s.logger.Info(ctx, "email verified", "account_id", acc.ID)
	return acc, nil
}

// Resend issues a new verification code, invalidating the previous one.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil {
		return notFoundAs("find account", err, common.ErrUserNotFound)
	}

	if acc.EmailVerified {
		return common.ErrAlreadyVerified
	}

	_, err = s.Issue(ctx, acc, models.PurposeVerify)
	return err
}

// Status reports whether email is verified and when its pending
// verification code expires.
func (s *VerificationService) Status(ctx context.Context, email string) (*Status, error) {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs("find account", err, common.ErrUserNotFound)
	}

	st := &Status{Verified: acc.EmailVerified}
	if acc.HasCode(models.PurposeVerify) {
		exp := *acc.VerificationCodeExpiresAt
		st.ExpiresAt = &exp
	}
	return st, nil
}

// Invalidate clears any pending code without touching the verified flag.
func (s *VerificationService) Invalidate(ctx context.Context, accountID string) error {
	if err := s.accounts().ClearVerificationCode(ctx, accountID); err != nil {
		return notFoundAs("clear verification code", err, common.ErrUserNotFound)
	}
	return nil
}

// SweepExpired clears every code that has already expired and returns how
// many were cleared. Expiry is enforced on every check regardless; this only
// keeps stale codes from piling up.
func (s *VerificationService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.accounts().SweepExpiredCodes(ctx, s.now())
	if err != nil {
		return 0, common.StoreFailure("sweep expired codes", err)
	}

	s.metrics.Swept(n)
	s.logger.Info(ctx, "expired codes swept", "cleared", n)
	return n, nil
}
