package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"apphub/internal/config"
	"apphub/internal/output"
	"apphub/internal/reconciler"

	"github.com/spf13/cobra"
)

var startupAppsPath string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the declared startup apps against the hub",
	Long: `Read the startup apps file and drive every declared app to its
desired state on the hub: stale instances are replaced and each app
ends up registered but stopped. SIGINT/SIGTERM interrupt cleanly.`,
	RunE: reconcileRun,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().StringVar(&startupAppsPath, "startup-apps", "", "Path to the startup apps YAML (default: from configuration)")
}

func reconcileRun(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return err
	}

	path := startupAppsPath
	if path == "" {
		path = cfg.StartupAppsPath
	}
	if path == "" {
		output.Info("no startup apps file configured, nothing to do")
		return nil
	}

	apps, err := config.LoadStartupApps(path)
	if err != nil {
		output.Error("failed to load startup apps: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output.Info("Reconciling %d app(s) from %s…", len(apps), path)
	if err := reconciler.New(cfg, slog.Default()).Run(ctx, apps); err != nil {
		output.Error("reconciliation finished with errors: %v", err)
		return err
	}

	output.Success("All apps reconciled")
	return nil
}
