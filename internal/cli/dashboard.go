package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/vitalmotion-client/internal/app"
	"github.com/spec-kit/vitalmotion-client/internal/config"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/live"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// syncWait bounds how long one-shot commands wait for the first sync.
const syncWait = 15 * time.Second

// dashboardFlags are shared by the commands that open a dashboard.
type dashboardFlags struct {
	role   string
	device string
}

func (f *dashboardFlags) register(cmd *cobra.Command, rt *runtime) {
	cmd.Flags().StringVarP(&f.role, "role", "r", "", "user or doctor (defaults to the session role)")
	cmd.Flags().StringVar(&f.device, "device", "", "device a doctor observes (overrides PATIENT_DEVICE_ID)")
	rt.configure = append(rt.configure, func(cfg *config.Config) {
		if f.device != "" {
			cfg.Devices.Patient = f.device
		}
	})
}

// open checks the guard, moves to the dashboard view and returns the
// dashboard mounted for it.
func (f *dashboardFlags) open(ctx context.Context, a *app.App) (*live.Dashboard, error) {
	role, err := f.resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := requireRole(ctx, a, role); err != nil {
		return nil, err
	}
	a.Navigator.Navigate(ctx, role.DashboardPath())
	return a.Registry.Open(ctx, role)
}

func (f *dashboardFlags) resolve(ctx context.Context, a *app.App) (domain.Role, error) {
	if f.role == "" {
		if r := a.Auth.Current(ctx).Role(); r == domain.RoleDoctor {
			return r, nil
		}
		return domain.RoleUser, nil
	}
	role, ok := domain.ParseRole(f.role)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown role %q", f.role), nil)
	}
	if _, isDashboard := live.DashboardRole(role.DashboardPath()); !isDashboard {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s has no live dashboard", role), nil)
	}
	return role, nil
}

// waitSynced returns once the dashboard finished a telemetry round or the
// wait is over.
func waitSynced(ctx context.Context, dash *live.Dashboard, wait time.Duration) live.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		snap := dash.Snapshot()
		if snap.Telemetry != nil || snap.Offline || snap.LastError != "" {
			return snap
		}
		select {
		case <-ctx.Done():
			return snap
		case <-tick.C:
		}
	}
}

func newWatchCommand(rt *runtime) *cobra.Command {
	var (
		flags dashboardFlags
		every time.Duration
		count int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a live dashboard",
		Long: `Mounts the dashboard of the session role and prints its state as one JSON
document per line. Polling continues until interrupted or --count lines were
printed. A patient always follows the device bound to the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			dash, err := flags.open(ctx, a)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(waitSynced(ctx, dash, syncWait)); err != nil {
				return err
			}

			tick := time.NewTicker(every)
			defer tick.Stop()
			for printed := 1; count <= 0 || printed < count; printed++ {
				select {
				case <-ctx.Done():
					return nil
				case <-tick.C:
				}
				if !dash.Mounted() {
					return apperrors.NewAuthorizationFailure("session ended")
				}
				if err := enc.Encode(dash.Snapshot()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd, rt)
	cmd.Flags().DurationVar(&every, "every", 5*time.Second, "print interval")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many lines (0 runs until interrupted)")
	return cmd
}

func newInsightCommand(rt *runtime) *cobra.Command {
	var flags dashboardFlags
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Ask the analysis service about the latest vitals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			dash, err := flags.open(ctx, a)
			if err != nil {
				return err
			}
			if snap := waitSynced(ctx, dash, syncWait); snap.Banner != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), snap.Banner)
			}
			text, err := dash.Insight(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	flags.register(cmd, rt)
	return cmd
}

func newChatCommand(rt *runtime) *cobra.Command {
	var flags dashboardFlags
	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Show the care-team thread, or post to it",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			dash, err := flags.open(ctx, a)
			if err != nil {
				return err
			}
			if text := strings.Join(args, " "); text != "" {
				if err := dash.SendChat(ctx, text); err != nil {
					return err
				}
			}
			// Read the thread directly: the mount's first chat poll may still be
			// in flight with an older copy.
			msgs, err := a.API.ChatMessages(ctx, dash.DeviceID())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				fmt.Fprintf(out, "%-8s %s\n", m.Sender+":", m.Text)
			}
			return nil
		},
	}
	flags.register(cmd, rt)
	return cmd
}

func newScanCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE",
		Short: "Analyze a clinical document (doctors only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := requireRole(ctx, a, domain.RoleDoctor); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return apperrors.NewValidationError(err.Error(), nil)
			}
			defer f.Close()

			data, err := a.Clinical.AnalyzeDocument(ctx, args[0], f)
			if err != nil {
				return err
			}
			var pretty any
			if err := json.Unmarshal(data, &pretty); err != nil {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}
}
