package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local portal",
		Long: `Serves the portal on PORTAL_HOST:PORTAL_PORT. Views, dashboards, health
checks and /metrics share the session stored by the other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := rt.client(cmd)
			if err != nil {
				return err
			}
			portal := a.Portal()
			addr := a.Config.App.Addr()

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("portal listening", zap.String("addr", addr))
				errCh <- portal.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.Logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
			return portal.Shutdown()
		},
	}
}
