package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/session"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// passwordEnv lets scripts avoid passing passwords on the command line.
const passwordEnv = "VITALMOTION_PASSWORD"

func newLoginCommand(rt *runtime) *cobra.Command {
	var (
		roleName string
		email    string
		password string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		Long: `Signs in through the endpoint of the chosen role and stores the returned
credential. A patient login lands on the dashboard named by the returned profile.

The password is read from --password or, when empty, from ` + passwordEnv + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRole(roleName)
			if !ok {
				return apperrors.NewValidationError(fmt.Sprintf("unknown role %q", roleName), nil)
			}
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			landing, err := a.Auth.Login(cmd.Context(), role, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in, dashboard %s\n", landing.DashboardPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&roleName, "role", "r", string(domain.RoleUser), "user, doctor or admin")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newSignupCommand(rt *runtime) *cobra.Command {
	var email, phone string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a patient account",
		Long: `Registers a patient account. The backend sends a one-time code; finish with
'vitalmotion verify-otp' and 'vitalmotion create-password'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			if err := a.Auth.Signup(cmd.Context(), email, phone); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "code sent to %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone number")
	return cmd
}

func newVerifyOTPCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-otp CODE",
		Short: "Confirm the one-time code of the pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			if err := a.Auth.VerifyOTP(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "code accepted, choose a password with 'vitalmotion create-password'")
			return nil
		},
	}
}

func newCreatePasswordCommand(rt *runtime) *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "create-password",
		Short: "Set the password of the pending account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if confirm == "" {
				confirm = password
			}
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			if err := a.Auth.CreatePassword(cmd.Context(), password, confirm); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "account activated, sign in with 'vitalmotion login'")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "repeat the password (defaults to --password)")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Long:  `Deletes the stored credential, profile and pending activation. The backend keeps no session state, so nothing is called remotely.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			return a.Auth.Logout(cmd.Context())
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s := a.Auth.Current(ctx)
			switch s.State {
			case session.StateAbsent:
				if s.Err != nil {
					return s.Err
				}
				fmt.Fprintln(out, "not signed in")
				if email, ok := a.Auth.PendingEmail(ctx); ok {
					fmt.Fprintf(out, "activation pending for %s\n", email)
				}
			case session.StateUnparseable:
				fmt.Fprintln(out, "stored credential is unreadable, sign in again")
			default:
				fmt.Fprintf(out, "role:   %s\n", s.Role())
				if s.Claims.Email != "" {
					fmt.Fprintf(out, "email:  %s\n", s.Claims.Email)
				}
				fmt.Fprintf(out, "name:   %s\n", s.Claims.DisplayName("-"))
				fmt.Fprintf(out, "device: %s\n", s.Claims.DeviceOrDefault())
			}
			fmt.Fprintf(out, "api:    %s (%s)\n", a.Config.API.BaseURL, a.Config.API.Source)
			return nil
		},
	}
}
