package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// ResetService runs the three-step password reset: request a code, confirm
// it for a reset grant, then trade the grant for a new password. Reset codes
// live in the same slot as verification codes but are tagged with their own
// purpose, and resetting never touches the verified flag.
type ResetService struct {
	base
	hasher            auth.PasswordHasher
	verification      *VerificationService
	grants            *auth.GrantIssuer
	minPasswordLength int
}

func NewResetService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.PasswordHasher,
	verification *VerificationService, cfg *config.Config, opts ...Option) *ResetService {
	s := &ResetService{
		base:              newBase(db, rm, "reset", opts),
		hasher:            hasher,
		verification:      verification,
		minPasswordLength: cfg.MinPasswordLength,
	}
	s.grants = auth.NewGrantIssuer([]byte(cfg.SecretKey), cfg.ResetGrantValidityDuration, s.now)
	return s
}

// RequestReset mails a reset code to the account owning email. Unknown
// emails fail with ErrUserNotFound.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil {
		return notFoundAs("find account", err, common.ErrUserNotFound)
	}

	_, err = s.verification.Issue(ctx, acc, models.PurposeReset)
	return err
}

// ConfirmResetCode checks a reset code and returns a signed grant for
// CompleteReset. The code itself stays on record until the password is
// changed, so confirming twice is harmless.
func (s *ResetService) ConfirmResetCode(ctx context.Context, email, code string) (string, error) {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil {
		return "", notFoundAs("find account", err, common.ErrUserNotFound)
	}

	if err := s.verification.Check(acc, models.PurposeReset, code); err != nil {
		s.logger.Info(ctx, "reset code rejected", "account_id", acc.ID, "reason", common.CodeOf(err))
		return "", err
	}

	grant, err := s.grants.Issue(acc.ID, acc.Email, *acc.VerificationCodeExpiresAt)
	if err != nil {
		return "", fmt.Errorf("issue reset grant: %w", err)
	}
	return grant, nil
}

// CompleteReset replaces the password of the account the grant was issued
// for. The reset code must still be on record, unexpired, and be the very
// issuance the grant was confirmed against. The new digest is stored and the
// code cleared in one transaction, which also makes the grant single-use.
func (s *ResetService) CompleteReset(ctx context.Context, email, grant, newPassword string) error {
	claims, err := s.grants.Parse(grant)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return common.ErrCodeExpired
		}
		return fmt.Errorf("%w: %w", common.ErrInvalidResetGrant, err)
	}

	var stepErr error
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stepErr = s.completeReset(ctx, s.repomanager.Accounts(tx), claims, email, newPassword)
		return stepErr
	})
	if err != nil && stepErr == nil {
		return common.StoreFailure("reset transaction", err)
	}
	return err
}

func (s *ResetService) completeReset(ctx context.Context, repo accounts.Repository, claims *auth.ResetGrantClaims, email, newPassword string) error {
	acc, err := repo.FindByEmailForUpdate(ctx, email)
	if err != nil {
		return notFoundAs("find account", err, common.ErrUserNotFound)
	}

	if claims.Subject != acc.ID {
		return common.ErrInvalidResetGrant
	}
	if !acc.HasCode(models.PurposeReset) {
		return common.ErrNoCodeIssued
	}
	if s.now().After(*acc.VerificationCodeExpiresAt) {
		return common.ErrCodeExpired
	}
	if !claims.Matches(acc.ID, acc.Email, *acc.VerificationCodeExpiresAt) {
		return common.ErrInvalidResetGrant
	}
	if err := checkPassword(newPassword, s.minPasswordLength); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := repo.SetPasswordDigest(ctx, acc.ID, digest); err != nil {
		return common.StoreFailure("set password digest", err)
	}
	if err := repo.ClearVerificationCode(ctx, acc.ID); err != nil {
		return common.StoreFailure("clear verification code", err)
	}

	s.logger.Info(ctx, "password reset", "account_id", acc.ID)
	return nil
}
