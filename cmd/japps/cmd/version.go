package cmd

import (
	"encoding/json"
	"net/http"

	"apphub/internal/api"
	"apphub/internal/constants"
	"apphub/internal/output"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI and the running service",
	Run: func(cmd *cobra.Command, args []string) {
		output.Header("🚀 " + constants.ProjectName)
		output.KeyValue("CLI version", *constants.GetVersion())

		cfg, err := getConfig()
		if err != nil {
			output.Warning("service status unavailable: %v", err)
			return
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, cfg.StatusURL(), nil)
		if err != nil {
			output.Error(err.Error())
			return
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			output.Warning("service not reachable at %s", cfg.StatusURL())
			return
		}
		defer func() { _ = resp.Body.Close() }()

		var status api.StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			output.Error("unexpected status response: %v", err)
			return
		}

		output.KeyValue("Service version", status.Version)
		if status.HubVersion != "" {
			output.KeyValue("Hub version", status.HubVersion)
		}
		if status.Uptime != "" {
			output.KeyValue("Service uptime", status.Uptime)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
