package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// AccountServiceClient calls AccountService over a client connection. Every
// call is sent with the JSON content-subtype.
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SignupResponse, error) {
	return invoke[SignupResponse](ctx, c.cc, "Signup", in, opts)
}

func (c *AccountServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *AccountServiceClient) ResolveSocial(ctx context.Context, in *ResolveSocialRequest, opts ...grpc.CallOption) (*ResolveSocialResponse, error) {
	return invoke[ResolveSocialResponse](ctx, c.cc, "ResolveSocial", in, opts)
}

func (c *AccountServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*VerifyEmailResponse, error) {
	return invoke[VerifyEmailResponse](ctx, c.cc, "VerifyEmail", in, opts)
}

func (c *AccountServiceClient) ResendCode(ctx context.Context, in *ResendCodeRequest, opts ...grpc.CallOption) (*ResendCodeResponse, error) {
	return invoke[ResendCodeResponse](ctx, c.cc, "ResendCode", in, opts)
}

func (c *AccountServiceClient) CheckStatus(ctx context.Context, in *CheckStatusRequest, opts ...grpc.CallOption) (*CheckStatusResponse, error) {
	return invoke[CheckStatusResponse](ctx, c.cc, "CheckStatus", in, opts)
}

func (c *AccountServiceClient) ForgotPassword(ctx context.Context, in *ForgotPasswordRequest, opts ...grpc.CallOption) (*ForgotPasswordResponse, error) {
	return invoke[ForgotPasswordResponse](ctx, c.cc, "ForgotPassword", in, opts)
}

func (c *AccountServiceClient) VerifyResetCode(ctx context.Context, in *VerifyResetCodeRequest, opts ...grpc.CallOption) (*VerifyResetCodeResponse, error) {
	return invoke[VerifyResetCodeResponse](ctx, c.cc, "VerifyResetCode", in, opts)
}

func (c *AccountServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*ResetPasswordResponse, error) {
	return invoke[ResetPasswordResponse](ctx, c.cc, "ResetPassword", in, opts)
}

func (c *AccountServiceClient) SweepExpiredCodes(ctx context.Context, in *SweepExpiredCodesRequest, opts ...grpc.CallOption) (*SweepExpiredCodesResponse, error) {
	return invoke[SweepExpiredCodesResponse](ctx, c.cc, "SweepExpiredCodes", in, opts)
}

func (c *AccountServiceClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, "Me", in, opts)
}

func (c *AccountServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}
