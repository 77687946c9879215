package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It enforces the same
// uniqueness rules as the accounts table and hands out copies, never the
// stored records.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Account
	now  func() time.Time
}

// NewMemoryRepository returns an empty store stamped with time.Now.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Account),
		now:  time.Now,
	}
}

// WithClock replaces the timestamp source; used by tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

func (r *MemoryRepository) find(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.FindByEmail(ctx, email)
}

func (r *MemoryRepository) FindByProvider(_ context.Context, provider, providerID string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool {
		return a.Provider != nil && a.ProviderID != nil && *a.Provider == provider && *a.ProviderID == providerID
	})
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

// taken reports whether another account already owns the email or the
// provider pair. Callers hold the write lock.
func (r *MemoryRepository) taken(selfID, email string, provider, providerID *string) bool {
	for id, a := range r.byID {
		if id == selfID {
			continue
		}
		if email != "" && a.Email == email {
			return true
		}
		if provider != nil && a.Provider != nil && *a.Provider == *provider && *a.ProviderID == *providerID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) insert(a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken("", a.Email, a.Provider, a.ProviderID) {
		return nil, common.ErrorUniqueViolation
	}

	a.ID = uuid.NewString()
	a.CreatedAt = r.now()
	a.UpdatedAt = a.CreatedAt
	r.byID[a.ID] = a
	return a.Clone(), nil
}

func (r *MemoryRepository) InsertLocal(_ context.Context, email, passwordDigest, firstName, lastName string, code models.PendingCode) (*models.Account, error) {
	a := &models.Account{
		Email:          email,
		PasswordDigest: &passwordDigest,
		FirstName:      firstName,
		LastName:       lastName,
	}
	if code.Code != "" {
		value, expiresAt := code.Code, code.ExpiresAt
		a.VerificationCode = &value
		a.VerificationCodeExpiresAt = &expiresAt
		a.VerificationCodePurpose = code.Purpose
	}
	return r.insert(a)
}

func (r *MemoryRepository) InsertSocial(_ context.Context, id models.SocialIdentity) (*models.Account, error) {
	provider, providerID := id.Provider, id.ProviderID
	return r.insert(&models.Account{
		Email:         id.Email,
		FirstName:     id.FirstName,
		LastName:      id.LastName,
		AvatarURL:     id.AvatarURL,
		EmailVerified: true,
		Provider:      &provider,
		ProviderID:    &providerID,
	})
}

// update applies fn to the stored record under the write lock.
func (r *MemoryRepository) update(id string, fn func(a *models.Account) error) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = r.now()
	return a.Clone(), nil
}

func clearCode(a *models.Account) {
	a.VerificationCode = nil
	a.VerificationCodeExpiresAt = nil
	a.VerificationCodePurpose = models.PurposeNone
}

func (r *MemoryRepository) SetVerificationCode(_ context.Context, id, code string, purpose models.CodePurpose, expiresAt time.Time) error {
	_, err := r.update(id, func(a *models.Account) error {
		a.VerificationCode = &code
		a.VerificationCodeExpiresAt = &expiresAt
		a.VerificationCodePurpose = purpose
		return nil
	})
	return err
}

func (r *MemoryRepository) ClearVerificationCode(_ context.Context, id string) error {
	_, err := r.update(id, func(a *models.Account) error {
		clearCode(a)
		return nil
	})
	return err
}

func (r *MemoryRepository) MarkVerified(_ context.Context, id string) error {
	_, err := r.update(id, func(a *models.Account) error {
		a.EmailVerified = true
		clearCode(a)
		return nil
	})
	return err
}

func (r *MemoryRepository) LinkProvider(_ context.Context, id, provider, providerID, avatarURL string) (*models.Account, error) {
	return r.update(id, func(a *models.Account) error {
		if r.taken(id, "", &provider, &providerID) {
			return common.ErrorUniqueViolation
		}
		a.Provider = &provider
		a.ProviderID = &providerID
		if a.AvatarURL == "" {
			a.AvatarURL = avatarURL
		}
		a.EmailVerified = true
		return nil
	})
}

func (r *MemoryRepository) SetPasswordDigest(_ context.Context, id, digest string) error {
	_, err := r.update(id, func(a *models.Account) error {
		a.PasswordDigest = &digest
		return nil
	})
	return err
}

func (r *MemoryRepository) SweepExpiredCodes(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, a := range r.byID {
		if a.VerificationCodeExpiresAt != nil && a.VerificationCodeExpiresAt.Before(before) {
			clearCode(a)
			a.UpdatedAt = r.now()
			n++
		}
	}
	return n, nil
}
