package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.v1.AccountService"

// FullMethod returns the gRPC path of an AccountService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer is implemented by the server side of AccountService.
type AccountServiceServer interface {
	Signup(context.Context, *SignupRequest) (*SignupResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ResolveSocial(context.Context, *ResolveSocialRequest) (*ResolveSocialResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error)
	ResendCode(context.Context, *ResendCodeRequest) (*ResendCodeResponse, error)
	CheckStatus(context.Context, *CheckStatusRequest) (*CheckStatusResponse, error)
	ForgotPassword(context.Context, *ForgotPasswordRequest) (*ForgotPasswordResponse, error)
	VerifyResetCode(context.Context, *VerifyResetCodeRequest) (*VerifyResetCodeResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error)
	SweepExpiredCodes(context.Context, *SweepExpiredCodesRequest) (*SweepExpiredCodesResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedAccountServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedAccountServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAccountServiceServer) Signup(context.Context, *SignupRequest) (*SignupResponse, error) {
	return nil, unimplemented("Signup")
}
func (UnimplementedAccountServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedAccountServiceServer) ResolveSocial(context.Context, *ResolveSocialRequest) (*ResolveSocialResponse, error) {
	return nil, unimplemented("ResolveSocial")
}
func (UnimplementedAccountServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	return nil, unimplemented("VerifyEmail")
}
func (UnimplementedAccountServiceServer) ResendCode(context.Context, *ResendCodeRequest) (*ResendCodeResponse, error) {
	return nil, unimplemented("ResendCode")
}
func (UnimplementedAccountServiceServer) CheckStatus(context.Context, *CheckStatusRequest) (*CheckStatusResponse, error) {
	return nil, unimplemented("CheckStatus")
}
func (UnimplementedAccountServiceServer) ForgotPassword(context.Context, *ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	return nil, unimplemented("ForgotPassword")
}
func (UnimplementedAccountServiceServer) VerifyResetCode(context.Context, *VerifyResetCodeRequest) (*VerifyResetCodeResponse, error) {
	return nil, unimplemented("VerifyResetCode")
}
func (UnimplementedAccountServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	return nil, unimplemented("ResetPassword")
}
func (UnimplementedAccountServiceServer) SweepExpiredCodes(context.Context, *SweepExpiredCodesRequest) (*SweepExpiredCodesResponse, error) {
	return nil, unimplemented("SweepExpiredCodes")
}
func (UnimplementedAccountServiceServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, unimplemented("Me")
}
func (UnimplementedAccountServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}

// unary adapts a typed server method to a grpc.MethodDesc.
func unary[Req, Resp any](method string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AccountServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes AccountService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Signup", AccountServiceServer.Signup),
		unary("Login", AccountServiceServer.Login),
		unary("ResolveSocial", AccountServiceServer.ResolveSocial),
		unary("VerifyEmail", AccountServiceServer.VerifyEmail),
		unary("ResendCode", AccountServiceServer.ResendCode),
		unary("CheckStatus", AccountServiceServer.CheckStatus),
		unary("ForgotPassword", AccountServiceServer.ForgotPassword),
		unary("VerifyResetCode", AccountServiceServer.VerifyResetCode),
		unary("ResetPassword", AccountServiceServer.ResetPassword),
		unary("SweepExpiredCodes", AccountServiceServer.SweepExpiredCodes),
		unary("Me", AccountServiceServer.Me),
		unary("Ping", AccountServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/account",
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
