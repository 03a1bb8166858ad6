package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/vitalmotion-client/internal/app"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

func newDoctorsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Manage physician accounts (administrators only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin(cmd, rt)
			if err != nil {
				return err
			}
			list, err := a.Admin.ListDoctors(cmd.Context())
			if err != nil {
				return err
			}
			return printDoctors(cmd.OutOrStdout(), list)
		},
	}

	var email, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a physician account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			a, err := admin(cmd, rt)
			if err != nil {
				return err
			}
			list, err := a.Admin.CreateDoctor(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printDoctors(cmd.OutOrStdout(), list)
		},
	}
	add.Flags().StringVarP(&email, "email", "e", "", "physician email")
	add.Flags().StringVarP(&password, "password", "p", "", "initial password")

	cmd.AddCommand(add, newDoctorStatusCommand(rt, "activate", true), newDoctorStatusCommand(rt, "deactivate", false))
	return cmd
}

func newDoctorStatusCommand(rt *runtime, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " EMAIL",
		Short: fmt.Sprintf("Set a physician account %sd", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin(cmd, rt)
			if err != nil {
				return err
			}
			list, err := a.Admin.SetDoctorActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			return printDoctors(cmd.OutOrStdout(), list)
		},
	}
}

func admin(cmd *cobra.Command, rt *runtime) (*app.App, error) {
	a, err := rt.client(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if err := requireRole(ctx, a, domain.RoleAdmin); err != nil {
		return nil, err
	}
	a.Navigator.Navigate(ctx, domain.RoleAdmin.DashboardPath())
	return a, nil
}

func requireRole(ctx context.Context, a *app.App, role domain.Role) error {
	if d := a.Guard.Authorize(ctx, role); !d.Allowed() {
		return apperrors.NewAuthorizationFailure(
			fmt.Sprintf("sign in first: vitalmotion login --role %s", role))
	}
	return nil
}

func printDoctors(out io.Writer, list []domain.Doctor) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tSTATUS")
	for _, d := range list {
		status := "inactive"
		if d.Active {
			status = "active"
		}
		name := d.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Email, name, status)
	}
	return w.Flush()
}
