// Package cli is the vitalmotion command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/app"
	"github.com/spec-kit/vitalmotion-client/internal/config"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
)

// runtime holds what the subcommands share: the persistent flags and a
// lazily assembled client.
type runtime struct {
	apiURL  string
	verbose bool

	// build overrides how the client is assembled; tests inject one.
	build func(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts app.Options) (*app.App, error)
	// configure adjusts the loaded configuration before assembly.
	configure []func(*config.Config)

	app *app.App
}

func newRootCommand(rt *runtime, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "vitalmotion",
		Short: "Client for the VitalMotion remote patient monitoring backend.",
		Long: `vitalmotion signs patients, doctors and administrators in to the VitalMotion
backend, keeps their session, and follows a patient's live telemetry, alerts
and care-team chat.

Run 'vitalmotion serve' for the local portal, or use the subcommands directly.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&rt.apiURL, "api-url", "", "backend base URL (overrides VITALMOTION_API_URL)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newServeCommand(rt),
		newLoginCommand(rt),
		newSignupCommand(rt),
		newVerifyOTPCommand(rt),
		newCreatePasswordCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newWatchCommand(rt),
		newInsightCommand(rt),
		newChatCommand(rt),
		newScanCommand(rt),
		newDoctorsCommand(rt),
	)
	return root
}

// Execute runs the command line against ctx. out receives command output
// and operator notices.
func Execute(ctx context.Context, out io.Writer, args []string) error {
	rt := &runtime{build: app.New}
	defer rt.close()

	root := newRootCommand(rt, out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// client assembles the client on first use.
func (rt *runtime) client(cmd *cobra.Command) (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	cfg, err := config.Load(rt.apiURL)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rt.verbose {
		cfg.Logger.Level = "debug"
	}
	for _, fn := range rt.configure {
		fn(cfg)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	out := cmd.ErrOrStderr()
	a, err := rt.build(cmd.Context(), cfg, logger, app.Options{
		Notify: func(msg string) { fmt.Fprintf(out, "» %s\n", msg) },
	})
	if err != nil {
		return nil, err
	}
	rt.app = a
	return a, nil
}

func (rt *runtime) close() {
	if rt.app == nil {
		return
	}
	rt.app.Close()
	_ = rt.app.Logger.Sync()
	rt.app = nil
}
