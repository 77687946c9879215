package rpc

import "time"

// Account is the public view of an account. Password digests and pending
// codes never leave the server.
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Provider      string    `json:"provider,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type SignupResponse struct {
	Account              *Account `json:"account"`
	AccessToken          string   `json:"access_token"`
	RequiresVerification bool     `json:"requires_verification"`
	// CodeDelivered is false when the account was created but the
	// verification mail could not be sent; ResendCode retries it.
	CodeDelivered bool `json:"code_delivered"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Account              *Account `json:"account"`
	AccessToken          string   `json:"access_token"`
	RequiresVerification bool     `json:"requires_verification"`
}

type ResolveSocialRequest struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

type ResolveSocialResponse struct {
	Account     *Account `json:"account"`
	IsNew       bool     `json:"is_new"`
	AccessToken string   `json:"access_token"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyEmailResponse struct {
	Account *Account `json:"account"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type ResendCodeResponse struct{}

type CheckStatusRequest struct {
	Email string `json:"email"`
}

type CheckStatusResponse struct {
	Verified  bool       `json:"verified"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordResponse struct{}

type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyResetCodeResponse struct {
	ResetGrant string `json:"reset_grant"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetGrant  string `json:"reset_grant"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordResponse struct{}

type SweepExpiredCodesRequest struct{}

type SweepExpiredCodesResponse struct {
	Cleared int64 `json:"cleared"`
}

type MeRequest struct{}

type MeResponse struct {
	Account *Account `json:"account"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
