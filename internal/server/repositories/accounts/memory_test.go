package accounts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)

func TestMemory_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository().WithClock(func() time.Time { return stamp })

	a, err := r.InsertLocal(ctx, "a@x.com", "digest", "Ada", "Lovelace", models.PendingCode{})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.EmailVerified)
	assert.Equal(t, stamp, a.CreatedAt)

	byEmail, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, a, byEmail)

	byID, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, byID)

	_, err = r.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound, "emails are compared as stored")
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.InsertLocal(ctx, "a@x.com", "digest", "", "", models.PendingCode{})
	require.NoError(t, err)
	a.EmailVerified = true

	again, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, again.EmailVerified)
}

func TestMemory_Uniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.InsertLocal(ctx, "a@x.com", "d", "", "", models.PendingCode{})
	require.NoError(t, err)

	_, err = r.InsertLocal(ctx, "a@x.com", "d", "", "", models.PendingCode{})
	assert.ErrorIs(t, err, common.ErrorUniqueViolation)

	_, err = r.InsertSocial(ctx, models.SocialIdentity{Provider: "google", ProviderID: "g1", Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrorUniqueViolation, "email clash")

	_, err = r.InsertSocial(ctx, models.SocialIdentity{Provider: "google", ProviderID: "g1", Email: "b@x.com"})
	require.NoError(t, err)

	_, err = r.InsertSocial(ctx, models.SocialIdentity{Provider: "google", ProviderID: "g1", Email: "c@x.com"})
	assert.ErrorIs(t, err, common.ErrorUniqueViolation, "provider pair clash")

	_, err = r.InsertSocial(ctx, models.SocialIdentity{Provider: "github", ProviderID: "g1", Email: "c@x.com"})
	assert.NoError(t, err, "same subject id under another provider")
}

func TestMemory_ConcurrentInsertsKeepEmailUnique(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.InsertLocal(ctx, "race@x.com", "d", "", "", models.PendingCode{}); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
}

func TestMemory_CodeLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.InsertLocal(ctx, "a@x.com", "d", "", "", models.PendingCode{})
	require.NoError(t, err)

	exp := stamp.Add(10 * time.Minute)
	require.NoError(t, r.SetVerificationCode(ctx, a.ID, "1234", models.PurposeVerify, exp))

	got, _ := r.FindByID(ctx, a.ID)
	assert.True(t, got.HasCode(models.PurposeVerify))
	assert.Equal(t, exp, *got.VerificationCodeExpiresAt)

	require.NoError(t, r.MarkVerified(ctx, a.ID))
	got, _ = r.FindByID(ctx, a.ID)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.VerificationCode)
	assert.Nil(t, got.VerificationCodeExpiresAt)
	assert.Equal(t, models.PurposeNone, got.VerificationCodePurpose)

	require.NoError(t, r.SetVerificationCode(ctx, a.ID, "5678", models.PurposeReset, exp))
	require.NoError(t, r.ClearVerificationCode(ctx, a.ID))
	got, _ = r.FindByID(ctx, a.ID)
	assert.True(t, got.EmailVerified, "clearing a code never unverifies")
	assert.Nil(t, got.VerificationCode)

	assert.ErrorIs(t, r.SetVerificationCode(ctx, "missing", "1", models.PurposeVerify, exp), common.ErrorNotFound)
	assert.ErrorIs(t, r.ClearVerificationCode(ctx, "missing"), common.ErrorNotFound)
	assert.ErrorIs(t, r.MarkVerified(ctx, "missing"), common.ErrorNotFound)
	assert.ErrorIs(t, r.SetPasswordDigest(ctx, "missing", "d"), common.ErrorNotFound)
}

func TestMemory_InsertLocalWithCode(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := stamp.Add(10 * time.Minute)

	a, err := r.InsertLocal(ctx, "a@x.com", "d", "", "",
		models.PendingCode{Code: "1234", Purpose: models.PurposeVerify, ExpiresAt: exp})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.HasCode(models.PurposeVerify))
	assert.Equal(t, "1234", *got.VerificationCode)
	assert.Equal(t, exp, *got.VerificationCodeExpiresAt)
	assert.False(t, got.EmailVerified)
}

func TestMemory_LinkProvider(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.InsertLocal(ctx, "a@x.com", "digest", "", "", models.PendingCode{})
	require.NoError(t, err)

	linked, err := r.LinkProvider(ctx, a.ID, "google", "g123", "https://img/1.png")
	require.NoError(t, err)
	assert.True(t, linked.EmailVerified)
	assert.Equal(t, "google", *linked.Provider)
	assert.Equal(t, "g123", *linked.ProviderID)
	assert.Equal(t, "https://img/1.png", linked.AvatarURL)
	assert.Equal(t, "digest", *linked.PasswordDigest)

	linked, err = r.LinkProvider(ctx, a.ID, "github", "gh1", "https://img/2.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.png", linked.AvatarURL, "existing avatar is kept")

	b, err := r.InsertLocal(ctx, "b@x.com", "digest", "", "", models.PendingCode{})
	require.NoError(t, err)
	_, err = r.LinkProvider(ctx, b.ID, "github", "gh1", "")
	assert.ErrorIs(t, err, common.ErrorUniqueViolation)

	_, err = r.LinkProvider(ctx, "missing", "x", "y", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_SweepExpiredCodes(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	ids := make([]string, 5)
	for i := range ids {
		a, err := r.InsertLocal(ctx, string(rune('a'+i))+"@x.com", "d", "", "", models.PendingCode{})
		require.NoError(t, err)
		ids[i] = a.ID
	}
	for i, id := range ids {
		exp := stamp.Add(-time.Minute)
		if i >= 3 {
			exp = stamp.Add(time.Minute)
		}
		require.NoError(t, r.SetVerificationCode(ctx, id, "1234", models.PurposeVerify, exp))
	}

	n, err := r.SweepExpiredCodes(ctx, stamp)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for i, id := range ids {
		a, _ := r.FindByID(ctx, id)
		if i < 3 {
			assert.Nil(t, a.VerificationCode)
			assert.Nil(t, a.VerificationCodeExpiresAt)
		} else {
			assert.NotNil(t, a.VerificationCode)
		}
	}
}
