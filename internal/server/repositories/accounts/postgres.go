package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id::text, email, password_digest, first_name, last_name, avatar_url,
	email_verified, verification_code, verification_code_expires_at, verification_code_purpose,
	provider, provider_id, created_at, updated_at`

const (
	queryFindByEmail          = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	queryFindByEmailForUpdate = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 FOR UPDATE`
	queryFindByProvider       = `SELECT ` + accountColumns + ` FROM accounts WHERE provider = $1 AND provider_id = $2`
	queryFindByID             = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	queryInsertLocal = `INSERT INTO accounts (email, password_digest, first_name, last_name, email_verified,
			verification_code, verification_code_purpose, verification_code_expires_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7)
		RETURNING ` + accountColumns

	queryInsertSocial = `INSERT INTO accounts (email, first_name, last_name, avatar_url, provider, provider_id, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + accountColumns

	querySetCode = `UPDATE accounts
		SET verification_code = $2, verification_code_purpose = $3, verification_code_expires_at = $4, updated_at = now()
		WHERE id = $1`

	queryClearCode = `UPDATE accounts
		SET verification_code = NULL, verification_code_purpose = NULL, verification_code_expires_at = NULL, updated_at = now()
		WHERE id = $1`

	queryMarkVerified = `UPDATE accounts
		SET email_verified = TRUE, verification_code = NULL, verification_code_purpose = NULL,
			verification_code_expires_at = NULL, updated_at = now()
		WHERE id = $1`

	queryLinkProvider = `UPDATE accounts
		SET provider = $2, provider_id = $3, avatar_url = CASE WHEN avatar_url = '' THEN $4 ELSE avatar_url END,
			email_verified = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	querySetPassword = `UPDATE accounts SET password_digest = $2, updated_at = now() WHERE id = $1`

	querySweep = `UPDATE accounts
		SET verification_code = NULL, verification_code_purpose = NULL, verification_code_expires_at = NULL, updated_at = now()
		WHERE verification_code_expires_at < $1`
)

// PostgresRepository is the Repository backed by the accounts table.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository binds the repository to a pool or a transaction.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                                           models.Account
		digest, code, purpose, provider, providerID sql.NullString
		expiresAt                                   sql.NullTime
	)

	err := row.Scan(&a.ID, &a.Email, &digest, &a.FirstName, &a.LastName, &a.AvatarURL,
		&a.EmailVerified, &code, &expiresAt, &purpose,
		&provider, &providerID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.PasswordDigest = nullString(digest)
	a.VerificationCode = nullString(code)
	a.Provider = nullString(provider)
	a.ProviderID = nullString(providerID)
	if expiresAt.Valid {
		t := expiresAt.Time
		a.VerificationCodeExpiresAt = &t
	}
	if purpose.Valid {
		a.VerificationCodePurpose = models.CodePurpose(purpose.String)
	}

	return &a, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, queryFindByEmail, email)
}

func (r *PostgresRepository) FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, queryFindByEmailForUpdate, email)
}

func (r *PostgresRepository) FindByProvider(ctx context.Context, provider, providerID string) (*models.Account, error) {
	return r.findOne(ctx, queryFindByProvider, provider, providerID)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, queryFindByID, id)
}

func (r *PostgresRepository) insert(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorUniqueViolation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) InsertLocal(ctx context.Context, email, passwordDigest, firstName, lastName string, code models.PendingCode) (*models.Account, error) {
	var (
		value, purpose sql.NullString
		expiresAt      sql.NullTime
	)
	if code.Code != "" {
		value = sql.NullString{String: code.Code, Valid: true}
		purpose = sql.NullString{String: string(code.Purpose), Valid: true}
		expiresAt = sql.NullTime{Time: code.ExpiresAt, Valid: true}
	}
	return r.insert(ctx, queryInsertLocal, email, passwordDigest, firstName, lastName, value, purpose, expiresAt)
}

func (r *PostgresRepository) InsertSocial(ctx context.Context, id models.SocialIdentity) (*models.Account, error) {
	return r.insert(ctx, queryInsertSocial, id.Email, id.FirstName, id.LastName, id.AvatarURL, id.Provider, id.ProviderID)
}

// exec runs a single-row update and maps zero affected rows to ErrorNotFound.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetVerificationCode(ctx context.Context, id, code string, purpose models.CodePurpose, expiresAt time.Time) error {
	return r.exec(ctx, querySetCode, id, code, string(purpose), expiresAt)
}

func (r *PostgresRepository) ClearVerificationCode(ctx context.Context, id string) error {
	return r.exec(ctx, queryClearCode, id)
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	return r.exec(ctx, queryMarkVerified, id)
}

func (r *PostgresRepository) LinkProvider(ctx context.Context, id, provider, providerID, avatarURL string) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, queryLinkProvider, id, provider, providerID, avatarURL))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case isUniqueViolation(err):
			return nil, common.ErrorUniqueViolation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) SetPasswordDigest(ctx context.Context, id, digest string) error {
	return r.exec(ctx, querySetPassword, id, digest)
}

func (r *PostgresRepository) SweepExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, querySweep, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
