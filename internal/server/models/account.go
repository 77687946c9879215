// Package models defines server-side data models persisted in the database.
package models

import "time"

// CodePurpose tags a pending code with the flow it was issued for. A code
// issued for one purpose never satisfies the other.
type CodePurpose string

const (
	PurposeNone   CodePurpose = ""
	PurposeVerify CodePurpose = "verify"
	PurposeReset  CodePurpose = "reset"
)

// Account is the durable identity record.
//
// VerificationCode, VerificationCodeExpiresAt and VerificationCodePurpose are
// set and cleared together. Provider and ProviderID are likewise both set or
// both nil.
type Account struct {
	ID             string
	Email          string
	PasswordDigest *string

	FirstName string
	LastName  string
	AvatarURL string

	EmailVerified             bool
	VerificationCode          *string
	VerificationCodeExpiresAt *time.Time
	VerificationCodePurpose   CodePurpose

	Provider   *string
	ProviderID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCode reports whether a code for purpose is on record.
func (a *Account) HasCode(purpose CodePurpose) bool {
	return a.VerificationCode != nil && a.VerificationCodeExpiresAt != nil &&
		a.VerificationCodePurpose == purpose
}

// DisplayName is the greeting used in outbound mail.
func (a *Account) DisplayName() string {
	name := a.FirstName
	if a.LastName != "" {
		if name != "" {
			name += " "
		}
		name += a.LastName
	}
	if name == "" {
		return "User"
	}
	return name
}

// Clone returns a deep copy, so callers can't alias stored state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.PasswordDigest = clonePtr(a.PasswordDigest)
	c.VerificationCode = clonePtr(a.VerificationCode)
	c.VerificationCodeExpiresAt = clonePtr(a.VerificationCodeExpiresAt)
	c.Provider = clonePtr(a.Provider)
	c.ProviderID = clonePtr(a.ProviderID)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PendingCode is a code stored together with a new account. The zero value
// stores none.
type PendingCode struct {
	Code      string
	Purpose   CodePurpose
	ExpiresAt time.Time
}

// SocialIdentity is what an identity provider resolved a callback to.
type SocialIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
	AvatarURL  string
}
