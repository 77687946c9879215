package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// SignupInput is a local, password-based registration.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// IdentityService maps local credentials and provider identities to exactly
// one account. Uniqueness is enforced by the store; the checks made here
// only produce friendlier errors in the common case.
type IdentityService struct {
	base
	hasher            auth.PasswordHasher
	verification      *VerificationService
	minPasswordLength int
}

func NewIdentityService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.PasswordHasher,
	verification *VerificationService, cfg *config.Config, opts ...Option) *IdentityService {
	return &IdentityService{
		base:              newBase(db, rm, "identity", opts),
		hasher:            hasher,
		verification:      verification,
		minPasswordLength: cfg.MinPasswordLength,
	}
}

func checkPassword(password string, minLength int) error {
	if utf8.RuneCountInString(password) < minLength {
		return common.ErrWeakPassword
	}
	return nil
}

// Signup creates an unverified local account and sends it a verification
// code. The account and its first code are stored in one insert, so a
// failed signup leaves nothing behind. A concurrent signup for the same
// email that wins the insert makes this one fail with ErrEmailTaken; there
// is no retry.
//
// When only the code delivery fails the created account is returned together
// with the ErrDeliveryFailed error, since the code can be resent.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.Account, error) {
	if err := checkPassword(in.Password, s.minPasswordLength); err != nil {
		return nil, err
	}

	repo := s.accounts()

	_, err := repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrEmailTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.StoreFailure("find account", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.verification.pending(models.PurposeVerify)
	if err != nil {
		return nil, err
	}

	acc, err := repo.InsertLocal(ctx, in.Email, digest, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), code)
	if err != nil {
		if errors.Is(err, common.ErrorUniqueViolation) {
			return nil, common.ErrEmailTaken
		}
		return nil, common.StoreFailure("insert local account", err)
	}

	s.metrics.AccountCreated("local")
	s.logger.Info(ctx, "account created", "account_id", acc.ID, "method", "local")

	if err := s.verification.deliver(ctx, acc, models.PurposeVerify, code.Code); err != nil {
		return acc, err
	}

	return acc, nil
}

// Authenticate checks an email and password. Unknown emails, social-only
// accounts and wrong passwords all fail with ErrInvalidCredentials after a
// full hash comparison. Verification is not required here; see
// RequireVerification.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	acc, err := s.accounts().FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.StoreFailure("find account", err)
	}

	digest := ""
	if acc != nil && acc.PasswordDigest != nil {
		digest = *acc.PasswordDigest
	}

	if !s.hasher.Verify(password, digest) {
		s.metrics.Login("password", "invalid")
		return nil, common.ErrInvalidCredentials
	}

	s.metrics.Login("password", "ok")
	return acc, nil
}

// RequireVerification is the gate for callers that only serve verified
// accounts.
func RequireVerification(acc *models.Account) error {
	if acc == nil {
		return common.ErrUserNotFound
	}
	if !acc.EmailVerified {
		return common.ErrEmailNotVerified
	}
	return nil
}

// Profile loads an account by id and requires it to be verified.
func (s *IdentityService) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	acc, err := s.accounts().FindByID(ctx, accountID)
	if err != nil {
		return nil, notFoundAs("find account", err, common.ErrUserNotFound)
	}
	if err := RequireVerification(acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ResolveSocial maps a provider identity to an account. It tries, in order:
// the exact (provider, provider id) pair, then the email, which links the
// existing account to the provider, then a new verified account. isNew is
// true only when an account was created.
//
// The provider's email attestation is trusted: linking marks the account
// verified even if it never proved the address locally.
func (s *IdentityService) ResolveSocial(ctx context.Context, id models.SocialIdentity) (acc *models.Account, isNew bool, err error) {
	id.Email = strings.TrimSpace(id.Email)
	if id.Email == "" {
		return nil, false, common.ErrMissingEmail
	}
	if id.Provider == "" || id.ProviderID == "" {
		return nil, false, common.ErrInvalidInput
	}

	repo := s.accounts()

	acc, err = repo.FindByProvider(ctx, id.Provider, id.ProviderID)
	if err == nil {
		s.metrics.Login(id.Provider, "ok")
		return acc, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, common.StoreFailure("find by provider", err)
	}

	acc, err = s.linkByEmail(ctx, id)
	if err == nil {
		s.metrics.Login(id.Provider, "linked")
		return acc, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	acc, err = repo.InsertSocial(ctx, id)
	if err == nil {
		s.metrics.AccountCreated(id.Provider)
		s.logger.Info(ctx, "account created", "account_id", acc.ID, "method", id.Provider)
		return acc, true, nil
	}
	if !errors.Is(err, common.ErrorUniqueViolation) {
		return nil, false, common.StoreFailure("insert social account", err)
	}

	// Lost an insert race; the winner's row should now be visible by email.
	acc, err = s.linkByEmail(ctx, id)
	if err == nil {
		return acc, false, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "social resolution conflict", "provider", id.Provider)
		return nil, false, common.ErrResolutionConflict
	}
	return nil, false, err
}

// linkByEmail attaches the provider identity to the account owning the email.
// It returns common.ErrorNotFound when no account has that email.
func (s *IdentityService) linkByEmail(ctx context.Context, id models.SocialIdentity) (*models.Account, error) {
	repo := s.accounts()

	acc, err := repo.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.StoreFailure("find account", err)
	}

	if acc.Provider != nil && acc.ProviderID != nil &&
		*acc.Provider == id.Provider && *acc.ProviderID == id.ProviderID {
		return acc, nil
	}

	linked, err := repo.LinkProvider(ctx, acc.ID, id.Provider, id.ProviderID, id.AvatarURL)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUniqueViolation):
			return nil, common.ErrResolutionConflict
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrResolutionConflict
		}
		return nil, common.StoreFailure("link provider", err)
	}

	s.logger.Info(ctx, "provider linked", "account_id", linked.ID, "provider", id.Provider)
	return linked, nil
}
