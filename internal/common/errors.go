// Package common defines shared constants and errors used across the client
// and server layers of gophauth. Callers should use errors.Is to match the
// sentinel values and KindOf to classify a failure.
package common

import (
	"errors"
)

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrorUniqueViolation = errors.New("unique violation")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind classifies a domain failure. The set is closed: every Failure carries
// exactly one of the kinds below and transports switch on it exhaustively.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthFailure
	KindStateViolation
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthFailure:
		return "auth_failure"
	case KindStateViolation:
		return "state_violation"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Failure is an expected outcome of a core operation. Failures are compared by
// identity, so wrap them with %w and match with errors.Is.
type Failure struct {
	Code    string
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func newFailure(kind Kind, code, msg string) *Failure {
	return &Failure{Code: code, Kind: kind, Message: msg}
}

var (
	ErrInvalidInput = newFailure(KindValidation, "VALIDATION_ERROR", "invalid input")

	ErrEmailTaken         = newFailure(KindConflict, "EMAIL_TAKEN", "a user with this email already exists")
	ErrResolutionConflict = newFailure(KindConflict, "RESOLUTION_CONFLICT", "identity could not be resolved to a single account")

	ErrUserNotFound = newFailure(KindNotFound, "USER_NOT_FOUND", "user not found")

	ErrInvalidCredentials = newFailure(KindAuthFailure, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidResetGrant  = newFailure(KindAuthFailure, "INVALID_RESET_GRANT", "reset grant is invalid or expired")
	ErrUnauthenticated    = newFailure(KindAuthFailure, "UNAUTHENTICATED", "authentication required")

	ErrAlreadyVerified  = newFailure(KindStateViolation, "ALREADY_VERIFIED", "email already verified")
	ErrNoCodeIssued     = newFailure(KindStateViolation, "NO_CODE_ISSUED", "no code has been issued")
	ErrCodeExpired      = newFailure(KindStateViolation, "CODE_EXPIRED", "code expired")
	ErrCodeMismatch     = newFailure(KindStateViolation, "INVALID_CODE", "invalid code")
	ErrWeakPassword     = newFailure(KindStateViolation, "WEAK_PASSWORD", "password is too short")
	ErrEmailNotVerified = newFailure(KindStateViolation, "EMAIL_NOT_VERIFIED", "email address is not verified")
	ErrMissingEmail     = newFailure(KindStateViolation, "MISSING_EMAIL", "identity provider returned no email")

	ErrDeliveryFailed = newFailure(KindDependency, "DELIVERY_FAILED", "failed to deliver email")
	ErrStore          = newFailure(KindDependency, "STORE_ERROR", "account store failure")
)

// KindOf returns the kind of the first Failure found in err's chain, or
// KindUnknown when err carries none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of the first Failure in err's chain.
func CodeOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}
