package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/spf13/cobra"
)

func printAccount(w io.Writer, acc *rpc.Account) {
	if acc == nil {
		return
	}
	fmt.Fprintf(w, "id:       %s\n", acc.ID)
	fmt.Fprintf(w, "email:    %s\n", acc.Email)
	if name := acc.FirstName + " " + acc.LastName; name != " " {
		fmt.Fprintf(w, "name:     %s\n", name)
	}
	if acc.Provider != "" {
		fmt.Fprintf(w, "provider: %s\n", acc.Provider)
	}
	fmt.Fprintf(w, "verified: %t\n", acc.EmailVerified)
}

func (a *App) newSignupCmd() *cobra.Command {
	var email, password, first, last string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and mail a verification code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}
			if password, err = a.secret(cmd, password, "Password"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				resp, err := api.Signup(ctx, &rpc.SignupRequest{Email: email, Password: password, FirstName: first, LastName: last})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				printAccount(w, resp.Account)
				fmt.Fprintf(w, "access_token: %s\n", resp.AccessToken)
				if !resp.CodeDelivered {
					fmt.Fprintln(w, "The verification email could not be sent; run `gophauth resend`.")
				} else if resp.RequiresVerification {
					fmt.Fprintln(w, "A verification code was sent; run `gophauth verify`.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&first, "first-name", "", "first name")
	cmd.Flags().StringVar(&last, "last-name", "", "last name")
	return cmd
}

func (a *App) newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password and print an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}
			if password, err = a.secret(cmd, password, "Password"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				resp, err := api.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "access_token: %s\n", resp.AccessToken)
				if resp.RequiresVerification {
					fmt.Fprintln(w, "Email not verified yet.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (a *App) newVerifyCmd() *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an email address with the mailed code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}
			if code, err = a.value(cmd, code, "Code"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				resp, err := api.VerifyEmail(ctx, &rpc.VerifyEmailRequest{Email: email, Code: code})
				if err != nil {
					return err
				}
				printAccount(cmd.OutOrStdout(), resp.Account)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&code, "code", "", "verification code")
	return cmd
}

func (a *App) newResendCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Mail a new verification code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				if _, err := api.ResendCode(ctx, &rpc.ResendCodeRequest{Email: email}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "A new verification code was sent.")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

func (a *App) newStatusCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an email is verified",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				resp, err := api.CheckStatus(ctx, &rpc.CheckStatusRequest{Email: email})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "verified: %t\n", resp.Verified)
				if resp.ExpiresAt != nil {
					fmt.Fprintf(w, "code expires: %s\n", resp.ExpiresAt.Local().Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

func (a *App) newForgotCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Mail a password reset code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				if _, err := api.ForgotPassword(ctx, &rpc.ForgotPasswordRequest{Email: email}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "A reset code was sent; run `gophauth reset`.")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

// newResetCmd confirms the reset code and sets the new password in one go.
// A grant from an earlier confirmation can be passed instead of the code.
func (a *App) newResetCmd() *cobra.Command {
	var email, code, grant, password string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password using a mailed reset code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.value(cmd, email, "Email"); err != nil {
				return err
			}
			if grant == "" {
				if code, err = a.value(cmd, code, "Reset code"); err != nil {
					return err
				}
			}
			if password, err = a.secret(cmd, password, "New password"); err != nil {
				return err
			}

			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				if grant == "" {
					resp, err := api.VerifyResetCode(ctx, &rpc.VerifyResetCodeRequest{Email: email, Code: code})
					if err != nil {
						return err
					}
					grant = resp.ResetGrant
				}

				_, err := api.ResetPassword(ctx, &rpc.ResetPasswordRequest{Email: email, ResetGrant: grant, NewPassword: password})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&code, "code", "", "reset code")
	cmd.Flags().StringVar(&grant, "grant", "", "reset grant from an earlier confirmation")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (prompted when empty)")
	return cmd
}

func (a *App) newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Clear expired codes (needs the admin token)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				ctx, err := a.withAdminToken(ctx)
				if err != nil {
					return err
				}
				resp, err := api.SweepExpiredCodes(ctx, &rpc.SweepExpiredCodesRequest{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared: %d\n", resp.Cleared)
				return nil
			})
		},
	}
}

func (a *App) newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account behind the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				ctx, err := a.withAccessToken(ctx)
				if err != nil {
					return err
				}
				resp, err := api.Me(ctx, &rpc.MeRequest{})
				if err != nil {
					return err
				}
				printAccount(cmd.OutOrStdout(), resp.Account)
				return nil
			})
		},
	}
}

func (a *App) newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, func(ctx context.Context, api AccountAPI) error {
				resp, err := api.Ping(ctx, &rpc.PingRequest{})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
				return nil
			})
		},
	}
}
