package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"apphub/internal/config"
	"apphub/internal/logger"
	"apphub/internal/reconciler"
	"apphub/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the app management service",
	Long: `Run the status service and, when a startup apps file is configured,
reconcile the declared apps in the background once the service is up.`,
	RunE: serveRun,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&startupAppsPath, "startup-apps", "", "Path to the startup apps YAML (default: from configuration)")
}

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	log := logger.Initialize(cfg.Environment, parseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg, log).Run(gctx)
	})

	path := startupAppsPath
	if path == "" {
		path = cfg.StartupAppsPath
	}
	if path != "" {
		apps, err := config.LoadStartupApps(path)
		if err != nil {
			stop()
			return err
		}
		g.Go(func() error {
			// The reconciler gates on the status endpoint, so it waits
			// for the listener above on its own.
			if err := reconciler.New(cfg, log).Run(gctx, apps); err != nil {
				// Startup apps are best effort; the service stays up.
				log.Error("startup reconciliation failed", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
