package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("acc-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetAccountIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "acc-123", got)
}

func TestGetAccountIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, -time.Second)
	require.NoError(t, err)

	_, err = GetAccountIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetAccountIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetAccountIDFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetAccountIDFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := GetAccountIDFromToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetAccountIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		AccountID:        "u3",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetAccountIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetAccountIDFromToken_ResetGrantIsNotAnAccessToken(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	g := NewGrantIssuer(secret, time.Minute, nil)
	grant, err := g.Issue("acc-1", "a@x.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = GetAccountIDFromToken(grant, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
