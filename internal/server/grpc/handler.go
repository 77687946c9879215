package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func toAccount(a *models.Account) *rpc.Account {
	out := &rpc.Account{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		AvatarURL:     a.AvatarURL,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
	if a.Provider != nil {
		out.Provider = *a.Provider
	}
	return out
}

func (s *GRPCServer) issueToken(accountID string) (string, error) {
	token, err := auth.GenerateToken(accountID, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *GRPCServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.SignupResponse, error) {
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	acc, err := s.svc.Identity.Signup(ctx, services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	delivered := err == nil
	if err != nil && !(errors.Is(err, common.ErrDeliveryFailed) && acc != nil) {
		return nil, err
	}

	token, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, err
	}

	return &rpc.SignupResponse{
		Account:              toAccount(acc),
		AccessToken:          token,
		RequiresVerification: !acc.EmailVerified,
		CodeDelivered:        delivered,
	}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	acc, err := s.svc.Identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, err
	}

	return &rpc.LoginResponse{
		Account:              toAccount(acc),
		AccessToken:          token,
		RequiresVerification: !acc.EmailVerified,
	}, nil
}

func (s *GRPCServer) ResolveSocial(ctx context.Context, req *rpc.ResolveSocialRequest) (*rpc.ResolveSocialResponse, error) {
	if err := required("provider", req.Provider); err != nil {
		return nil, err
	}
	if err := required("provider_id", req.ProviderID); err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := validateEmail(req.Email); err != nil {
			return nil, err
		}
	}

	acc, isNew, err := s.svc.Identity.ResolveSocial(ctx, models.SocialIdentity{
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		AvatarURL:  req.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, err
	}

	return &rpc.ResolveSocialResponse{Account: toAccount(acc), IsNew: isNew, AccessToken: token}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *rpc.VerifyEmailRequest) (*rpc.VerifyEmailResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := validateCode(req.Code, s.codeLength); err != nil {
		return nil, err
	}

	acc, err := s.svc.Verification.Verify(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}
	return &rpc.VerifyEmailResponse{Account: toAccount(acc)}, nil
}

func (s *GRPCServer) ResendCode(ctx context.Context, req *rpc.ResendCodeRequest) (*rpc.ResendCodeResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := s.svc.Verification.Resend(ctx, req.Email); err != nil {
		return nil, err
	}
	return &rpc.ResendCodeResponse{}, nil
}

func (s *GRPCServer) CheckStatus(ctx context.Context, req *rpc.CheckStatusRequest) (*rpc.CheckStatusResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}

	st, err := s.svc.Verification.Status(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	return &rpc.CheckStatusResponse{Verified: st.Verified, ExpiresAt: st.ExpiresAt}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *rpc.ForgotPasswordRequest) (*rpc.ForgotPasswordResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := s.svc.Reset.RequestReset(ctx, req.Email); err != nil {
		return nil, err
	}
	return &rpc.ForgotPasswordResponse{}, nil
}

func (s *GRPCServer) VerifyResetCode(ctx context.Context, req *rpc.VerifyResetCodeRequest) (*rpc.VerifyResetCodeResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := validateCode(req.Code, s.codeLength); err != nil {
		return nil, err
	}

	grant, err := s.svc.Reset.ConfirmResetCode(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}
	return &rpc.VerifyResetCodeResponse{ResetGrant: grant}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.ResetPasswordResponse, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}
	if err := required("reset_grant", req.ResetGrant); err != nil {
		return nil, err
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return nil, err
	}

	if err := s.svc.Reset.CompleteReset(ctx, req.Email, req.ResetGrant, req.NewPassword); err != nil {
		return nil, err
	}
	return &rpc.ResetPasswordResponse{}, nil
}

func (s *GRPCServer) SweepExpiredCodes(ctx context.Context, _ *rpc.SweepExpiredCodesRequest) (*rpc.SweepExpiredCodesResponse, error) {
	n, err := s.svc.Verification.SweepExpired(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.SweepExpiredCodesResponse{Cleared: n}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *rpc.MeRequest) (*rpc.MeResponse, error) {
	accountID, ok := AccountIDFromContext(ctx)
	if !ok {
		return nil, common.ErrUnauthenticated
	}

	acc, err := s.svc.Identity.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &rpc.MeResponse{Account: toAccount(acc)}, nil
}

func (s *GRPCServer) Ping(context.Context, *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}
