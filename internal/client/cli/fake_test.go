package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeAPI records requests and answers from canned fields.
type fakeAPI struct {
	calls []string
	reqs  []any
	md    metadata.MD

	err        error
	delivered  bool
	expiresAt  *time.Time
	resetGrant string
	closed     bool
}

func (f *fakeAPI) record(ctx context.Context, name string, req any) {
	f.calls = append(f.calls, name)
	f.reqs = append(f.reqs, req)
	f.md, _ = metadata.FromOutgoingContext(ctx)
}

var testAccount = &rpc.Account{ID: "acc-1", Email: "a@x.com", FirstName: "Ada", EmailVerified: true}

func (f *fakeAPI) Signup(ctx context.Context, in *rpc.SignupRequest, _ ...grpc.CallOption) (*rpc.SignupResponse, error) {
	f.record(ctx, "Signup", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.SignupResponse{Account: testAccount, AccessToken: "tok-1", RequiresVerification: true, CodeDelivered: f.delivered}, nil
}

func (f *fakeAPI) Login(ctx context.Context, in *rpc.LoginRequest, _ ...grpc.CallOption) (*rpc.LoginResponse, error) {
	f.record(ctx, "Login", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.LoginResponse{Account: testAccount, AccessToken: "tok-2"}, nil
}

func (f *fakeAPI) VerifyEmail(ctx context.Context, in *rpc.VerifyEmailRequest, _ ...grpc.CallOption) (*rpc.VerifyEmailResponse, error) {
	f.record(ctx, "VerifyEmail", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.VerifyEmailResponse{Account: testAccount}, nil
}

func (f *fakeAPI) ResendCode(ctx context.Context, in *rpc.ResendCodeRequest, _ ...grpc.CallOption) (*rpc.ResendCodeResponse, error) {
	f.record(ctx, "ResendCode", in)
	return &rpc.ResendCodeResponse{}, f.err
}

func (f *fakeAPI) CheckStatus(ctx context.Context, in *rpc.CheckStatusRequest, _ ...grpc.CallOption) (*rpc.CheckStatusResponse, error) {
	f.record(ctx, "CheckStatus", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.CheckStatusResponse{Verified: f.expiresAt == nil, ExpiresAt: f.expiresAt}, nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, in *rpc.ForgotPasswordRequest, _ ...grpc.CallOption) (*rpc.ForgotPasswordResponse, error) {
	f.record(ctx, "ForgotPassword", in)
	return &rpc.ForgotPasswordResponse{}, f.err
}

func (f *fakeAPI) VerifyResetCode(ctx context.Context, in *rpc.VerifyResetCodeRequest, _ ...grpc.CallOption) (*rpc.VerifyResetCodeResponse, error) {
	f.record(ctx, "VerifyResetCode", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.VerifyResetCodeResponse{ResetGrant: f.resetGrant}, nil
}

func (f *fakeAPI) ResetPassword(ctx context.Context, in *rpc.ResetPasswordRequest, _ ...grpc.CallOption) (*rpc.ResetPasswordResponse, error) {
	f.record(ctx, "ResetPassword", in)
	return &rpc.ResetPasswordResponse{}, f.err
}

func (f *fakeAPI) SweepExpiredCodes(ctx context.Context, in *rpc.SweepExpiredCodesRequest, _ ...grpc.CallOption) (*rpc.SweepExpiredCodesResponse, error) {
	f.record(ctx, "SweepExpiredCodes", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.SweepExpiredCodesResponse{Cleared: 3}, nil
}

func (f *fakeAPI) Me(ctx context.Context, in *rpc.MeRequest, _ ...grpc.CallOption) (*rpc.MeResponse, error) {
	f.record(ctx, "Me", in)
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.MeResponse{Account: testAccount}, nil
}

func (f *fakeAPI) Ping(ctx context.Context, in *rpc.PingRequest, _ ...grpc.CallOption) (*rpc.PingResponse, error) {
	f.record(ctx, "Ping", in)
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (f *fakeAPI) dialer() Dialer {
	return func(string) (AccountAPI, func() error, error) {
		return f, func() error { f.closed = true; return nil }, nil
	}
}

func (f *fakeAPI) header(key string) string {
	if v := f.md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

var errAlreadyVerified = status.Error(codes.FailedPrecondition, common.ErrAlreadyVerified.Message)
