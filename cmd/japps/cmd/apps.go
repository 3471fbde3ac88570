package cmd

import (
	"log/slog"

	"apphub/internal/hub"
	"apphub/internal/output"

	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage apps on the hub",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List apps across all users",
	Run:   appsListRun,
	PostRun: func(cmd *cobra.Command, _ []string) {
		output.Blank()
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsListCmd)
}

func appsListRun(cmd *cobra.Command, _ []string) {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return
	}

	client := hub.New(cfg, slog.Default())
	users, err := client.GetUsers(cmd.Context())
	if err != nil {
		output.Error("failed to list apps: %v", err)
		return
	}

	var rows [][]string
	for _, user := range users {
		for name, server := range user.Servers {
			if server.UserOptions == nil || !server.UserOptions.JHubApp {
				continue
			}
			rows = append(rows, []string{
				user.Name,
				output.Bold(name),
				server.UserOptions.DisplayName,
				server.UserOptions.Framework,
				output.AppStatusBadge(server.Ready, server.Stopped, server.Pending),
			})
		}
	}

	output.Blank()
	output.Table(
		[]string{"User", "App", "Name", "Framework", "Status"},
		rows,
	)
	output.Blank()
	output.Success("%d app(s) listed", len(rows))
}
