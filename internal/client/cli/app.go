// Package cli implements the gophauth command-line client. Each subcommand
// maps to one AccountService call.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AccountAPI is the subset of the generated-style client the commands use.
type AccountAPI interface {
	Signup(ctx context.Context, in *rpc.SignupRequest, opts ...grpc.CallOption) (*rpc.SignupResponse, error)
	Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error)
	VerifyEmail(ctx context.Context, in *rpc.VerifyEmailRequest, opts ...grpc.CallOption) (*rpc.VerifyEmailResponse, error)
	ResendCode(ctx context.Context, in *rpc.ResendCodeRequest, opts ...grpc.CallOption) (*rpc.ResendCodeResponse, error)
	CheckStatus(ctx context.Context, in *rpc.CheckStatusRequest, opts ...grpc.CallOption) (*rpc.CheckStatusResponse, error)
	ForgotPassword(ctx context.Context, in *rpc.ForgotPasswordRequest, opts ...grpc.CallOption) (*rpc.ForgotPasswordResponse, error)
	VerifyResetCode(ctx context.Context, in *rpc.VerifyResetCodeRequest, opts ...grpc.CallOption) (*rpc.VerifyResetCodeResponse, error)
	ResetPassword(ctx context.Context, in *rpc.ResetPasswordRequest, opts ...grpc.CallOption) (*rpc.ResetPasswordResponse, error)
	SweepExpiredCodes(ctx context.Context, in *rpc.SweepExpiredCodesRequest, opts ...grpc.CallOption) (*rpc.SweepExpiredCodesResponse, error)
	Me(ctx context.Context, in *rpc.MeRequest, opts ...grpc.CallOption) (*rpc.MeResponse, error)
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
}

// Dialer opens a client for addr. The returned func closes it.
type Dialer func(addr string) (AccountAPI, func() error, error)

// DialGRPC connects over plaintext gRPC.
func DialGRPC(addr string) (AccountAPI, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return rpc.NewAccountServiceClient(conn), conn.Close, nil
}

// Options are the global flags. Defaults come from GOPHAUTH_* variables.
type Options struct {
	Server     string        `env:"SERVER" envDefault:"127.0.0.1:50051"`
	Token      string        `env:"TOKEN"`
	AdminToken string        `env:"ADMIN_TOKEN"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// App holds what every command needs.
type App struct {
	opts   Options
	dial   Dialer
	reader *bufio.Reader
}

func NewApp(dial Dialer, in io.Reader) (*App, error) {
	opts, err := env.ParseAsWithOptions[Options](env.Options{Prefix: "GOPHAUTH_"})
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &App{opts: opts, dial: dial, reader: bufio.NewReader(in)}, nil
}

// call dials the server, runs fn with a deadline and closes the connection.
func (a *App) call(cmd *cobra.Command, fn func(ctx context.Context, api AccountAPI) error) error {
	api, closeFn, err := a.dial(a.opts.Server)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.opts.Server, err)
	}
	defer func() { _ = closeFn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.Timeout)
	defer cancel()

	if err := fn(ctx, api); err != nil {
		return describe(err)
	}
	return nil
}

// describe turns a status error into a one-line message.
func describe(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}

func (a *App) withAccessToken(ctx context.Context) (context.Context, error) {
	if a.opts.Token == "" {
		return nil, fmt.Errorf("access token required: pass --token or set GOPHAUTH_TOKEN")
	}
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, a.opts.Token), nil
}

func (a *App) withAdminToken(ctx context.Context) (context.Context, error) {
	if a.opts.AdminToken == "" {
		return nil, fmt.Errorf("admin token required: pass --admin-token or set GOPHAUTH_ADMIN_TOKEN")
	}
	return metadata.AppendToOutgoingContext(ctx, common.AdminTokenHeaderName, a.opts.AdminToken), nil
}

// value returns the flag value, or prompts for it when it is empty.
func (a *App) value(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return GetSimpleText(a.reader, prompt, cmd.OutOrStdout())
}

// secret is value for passwords: the prompt does not echo.
func (a *App) secret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return GetPassword(prompt, cmd.OutOrStdout())
}

// NewRootCmd builds the command tree.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gophauth",
		Short:         "gophauth account service client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.opts.Server, "server", "s", a.opts.Server, "server address host:port")
	cmd.PersistentFlags().StringVar(&a.opts.Token, "token", a.opts.Token, "access token for authenticated calls")
	cmd.PersistentFlags().StringVar(&a.opts.AdminToken, "admin-token", a.opts.AdminToken, "operator token for maintenance calls")
	cmd.PersistentFlags().DurationVar(&a.opts.Timeout, "timeout", a.opts.Timeout, "per-call timeout")

	cmd.AddCommand(
		a.newSignupCmd(),
		a.newLoginCmd(),
		a.newVerifyCmd(),
		a.newResendCmd(),
		a.newStatusCmd(),
		a.newForgotCmd(),
		a.newResetCmd(),
		a.newSweepCmd(),
		a.newMeCmd(),
		a.newPingCmd(),
	)
	return cmd
}
