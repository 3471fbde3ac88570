package cmd

import (
	"log/slog"

	"apphub/internal/hub"
	"apphub/internal/output"

	"github.com/spf13/cobra"
)

var (
	lifecycleUser string
	deleteRemove  bool
)

var appsDeleteCmd = &cobra.Command{
	Use:   "delete <server-name>",
	Short: "Stop an app, optionally removing its registration",
	Long: `Stop an app. With --remove the server registration is deleted from
the hub entirely; without it the app stays registered and can be
started again later.`,
	Args: cobra.ExactArgs(1),
	Run:  appsDeleteRun,
}

var appsStartCmd = &cobra.Command{
	Use:   "start [server-name]",
	Short: "Start an app",
	Long: `Start an app by server name, or the user's default server when no
name is given. Apps shared by other users are found and started under
their owner.`,
	Args: cobra.MaximumNArgs(1),
	Run:  appsStartRun,
}

func init() {
	appsCmd.AddCommand(appsDeleteCmd)
	appsCmd.AddCommand(appsStartCmd)

	for _, c := range []*cobra.Command{appsDeleteCmd, appsStartCmd} {
		c.Flags().StringVar(&lifecycleUser, "user", "", "User acting on the app (required)")
		_ = c.MarkFlagRequired("user")
	}
	appsDeleteCmd.Flags().BoolVar(&deleteRemove, "remove", false, "Delete the server registration, not just stop it")
}

func appsDeleteRun(cmd *cobra.Command, args []string) {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return
	}
	servername := args[0]

	if deleteRemove && !output.Confirm("Permanently remove app "+servername+"?") {
		output.Info("aborted")
		return
	}

	client := hub.NewForUser(cfg, slog.Default(), lifecycleUser)
	if _, err := client.DeleteServer(cmd.Context(), lifecycleUser, servername, deleteRemove); err != nil {
		output.Error("failed to delete app: %v", err)
		return
	}

	if deleteRemove {
		output.Success("App %s removed", servername)
	} else {
		output.Success("App %s stopped", servername)
	}
}

func appsStartRun(cmd *cobra.Command, args []string) {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return
	}
	servername := ""
	if len(args) > 0 {
		servername = args[0]
	}

	client := hub.NewForUser(cfg, slog.Default(), lifecycleUser)
	_, started, err := client.StartServer(cmd.Context(), lifecycleUser, servername)
	if err != nil {
		output.Error("failed to start app: %v", err)
		return
	}

	if started == "" {
		output.Success("Default server started for %s", lifecycleUser)
	} else {
		output.Success("App %s started", started)
	}
}
