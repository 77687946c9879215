package auth

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetAudience = "password-reset"

// ResetGrantClaims bind a reset grant to one account and to the code issuance
// it was confirmed against. CodeExpiresAt is that code's expiry in Unix
// microseconds; a newer code has a different expiry, so the grant stops
// matching as soon as the code is reissued or cleared.
type ResetGrantClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	CodeExpiresAt int64  `json:"code_exp"`
}

// GrantIssuer signs and checks reset grants.
type GrantIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewGrantIssuer returns an issuer whose grants live at most validity.
func NewGrantIssuer(secret []byte, validity time.Duration, now func() time.Time) *GrantIssuer {
	if now == nil {
		now = time.Now
	}
	return &GrantIssuer{secret: secret, validity: validity, now: now}
}

// Issue signs a grant for the account. It never outlives codeExpiresAt.
func (g *GrantIssuer) Issue(accountID, email string, codeExpiresAt time.Time) (string, error) {
	now := g.now()
	exp := now.Add(g.validity)
	if codeExpiresAt.Before(exp) {
		exp = codeExpiresAt
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetGrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Audience:  jwt.ClaimStrings{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:         email,
		CodeExpiresAt: codeExpiresAt.UnixMicro(),
	})

	return token.SignedString(g.secret)
}

// Parse validates signature, audience and expiry and returns the claims.
func (g *GrantIssuer) Parse(grant string) (*ResetGrantClaims, error) {
	claims := &ResetGrantClaims{}
	err := parse(grant, claims, g.secret,
		jwt.WithAudience(resetAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Matches reports whether claims were issued for this account and for the
// code expiring at codeExpiresAt.
func (c *ResetGrantClaims) Matches(accountID, email string, codeExpiresAt time.Time) bool {
	return c.Subject == accountID && c.Email == email && c.CodeExpiresAt == codeExpiresAt.UnixMicro()
}
