package cmd

import (
	"sort"
	"strings"

	"apphub/internal/command"
	"apphub/internal/config"
	"apphub/internal/output"

	"github.com/spf13/cobra"
)

var renderServicePrefix string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Show the launch command an app spec resolves to",
	Long: `Resolve an app spec into the exact argument list and environment the
spawner would use, without touching the hub. Useful for debugging
framework templates and custom commands.`,
	Run: renderRun,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&createName, "name", "app", "Display name of the app")
	renderCmd.Flags().StringVar(&createFramework, "framework", "", "App framework: "+strings.Join(frameworkNames(), ", "))
	renderCmd.Flags().StringVar(&createFilepath, "filepath", "", "Entry file of the app")
	renderCmd.Flags().StringVar(&createCustomCmd, "custom-command", "", "Launch command for the custom framework")
	renderCmd.Flags().StringVar(&createCondaEnv, "conda-env", "", "Conda environment to activate")
	renderCmd.Flags().StringArrayVar(&createEnvVars, "env", nil, "Environment variables (KEY=VALUE)")
	renderCmd.Flags().StringVar(&renderServicePrefix, "service-prefix", "/user/demo/app/", "Service prefix to bind into the command")
	_ = renderCmd.MarkFlagRequired("framework")
}

func renderRun(_ *cobra.Command, _ []string) {
	// Rendering never touches the hub, so an unconfigured hub URL is fine.
	cfg, err := config.Load()
	if err != nil {
		output.Error("failed to load configuration: %v", err)
		return
	}

	spec := specFromFlags()
	args, err := command.BuildAppArgs(spec, command.BuildParams{
		PythonExec:    cfg.PythonExec,
		BindURL:       cfg.HubBindURL,
		ServicePrefix: renderServicePrefix,
		AuthType:      cfg.AppsAuthType,
		ExamplesDir:   cfg.ExamplesDir,
	})
	if err != nil {
		output.Error("failed to build launch command: %v", err)
		return
	}

	output.Header("Launch command")
	output.Println(strings.Join(args, " "))

	env := command.FrameworkEnv(spec, renderServicePrefix)
	if len(env) > 0 {
		output.Header("Environment")
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			output.KeyValue(k, env[k])
		}
	}
}
