// Package accounts is the account store: a PostgreSQL implementation used in
// production and an in-memory one used by tests and local runs.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the narrow persistence contract the account services need.
//
// Lookups return common.ErrorNotFound when nothing matches. Inserts return
// common.ErrorUniqueViolation when the email or the provider pair is taken.
// Updates addressed to an unknown id return common.ErrorNotFound.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindByEmailForUpdate also locks the row until the surrounding
	// transaction ends.
	FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)

	// InsertLocal stores the account and its first code in a single write.
	InsertLocal(ctx context.Context, email, passwordDigest, firstName, lastName string, code models.PendingCode) (*models.Account, error)
	InsertSocial(ctx context.Context, identity models.SocialIdentity) (*models.Account, error)

	SetVerificationCode(ctx context.Context, id, code string, purpose models.CodePurpose, expiresAt time.Time) error
	ClearVerificationCode(ctx context.Context, id string) error
	// MarkVerified sets email_verified and clears the code in one write.
	MarkVerified(ctx context.Context, id string) error
	// LinkProvider attaches a provider identity, marks the email verified and
	// fills the avatar only when the account has none.
	LinkProvider(ctx context.Context, id, provider, providerID, avatarURL string) (*models.Account, error)
	SetPasswordDigest(ctx context.Context, id, digest string) error

	// SweepExpiredCodes clears every code that expired before the given
	// instant and reports how many were cleared.
	SweepExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}
