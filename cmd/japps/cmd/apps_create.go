package cmd

import (
	"log/slog"
	"strings"

	"apphub/internal/api"
	"apphub/internal/command"
	"apphub/internal/hub"
	"apphub/internal/output"

	"github.com/spf13/cobra"
)

var (
	createUser        string
	createName        string
	createDescription string
	createFramework   string
	createFilepath    string
	createCustomCmd   string
	createCondaEnv    string
	createEnvVars     []string
	createPublic      bool
	createKeepAlive   bool
	createShareUsers  []string
	createShareGroups []string

	editServerName string
)

var appsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new app",
	Long: `Create a new app for a user. The display name is normalized into a
unique server name on the hub; share grants are applied right after
creation.`,
	Run: appsCreateRun,
}

var appsEditCmd = &cobra.Command{
	Use:   "edit <server-name>",
	Short: "Replace an existing app's definition",
	Long: `Replace an app's definition in place: the server is deleted and
recreated under the same name with the new options.`,
	Args: cobra.ExactArgs(1),
	Run:  appsEditRun,
}

func init() {
	appsCmd.AddCommand(appsCreateCmd)
	appsCmd.AddCommand(appsEditCmd)

	for _, c := range []*cobra.Command{appsCreateCmd, appsEditCmd} {
		c.Flags().StringVar(&createUser, "user", "", "Owner of the app (required)")
		c.Flags().StringVar(&createName, "name", "", "Display name of the app (required)")
		c.Flags().StringVar(&createDescription, "description", "", "Description shown in listings")
		c.Flags().StringVar(&createFramework, "framework", "", "App framework: "+strings.Join(frameworkNames(), ", "))
		c.Flags().StringVar(&createFilepath, "filepath", "", "Entry file of the app")
		c.Flags().StringVar(&createCustomCmd, "custom-command", "", "Launch command for the custom framework")
		c.Flags().StringVar(&createCondaEnv, "conda-env", "", "Conda environment to activate")
		c.Flags().StringArrayVar(&createEnvVars, "env", nil, "Environment variables (KEY=VALUE)")
		c.Flags().BoolVar(&createPublic, "public", false, "Make the app reachable without hub login")
		c.Flags().BoolVar(&createKeepAlive, "keep-alive", false, "Exempt the app from idle culling")
		c.Flags().StringArrayVar(&createShareUsers, "share-user", nil, "User to share the app with (repeatable)")
		c.Flags().StringArrayVar(&createShareGroups, "share-group", nil, "Group to share the app with (repeatable)")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("framework")
	}
}

func frameworkNames() []string {
	fws := command.Frameworks()
	names := make([]string, len(fws))
	for i, fw := range fws {
		names[i] = string(fw)
	}
	return names
}

func specFromFlags() api.AppSpec {
	spec := api.AppSpec{
		JHubApp:       true,
		DisplayName:   createName,
		Description:   createDescription,
		Framework:     createFramework,
		Filepath:      createFilepath,
		CustomCommand: createCustomCmd,
		CondaEnv:      createCondaEnv,
		Public:        createPublic,
		KeepAlive:     createKeepAlive,
	}

	if len(createEnvVars) > 0 {
		spec.Env = make(map[string]string, len(createEnvVars))
		for _, kv := range createEnvVars {
			key, value, ok := strings.Cut(kv, "=")
			if ok {
				spec.Env[key] = value
			}
		}
	}

	if len(createShareUsers) > 0 || len(createShareGroups) > 0 {
		spec.ShareWith = &api.SharePermissions{
			Users:  createShareUsers,
			Groups: createShareGroups,
		}
	}
	return spec
}

func appsCreateRun(cmd *cobra.Command, _ []string) {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return
	}

	output.Info("Creating app %q for %s…", createName, createUser)

	client := hub.NewForUser(cfg, slog.Default(), createUser)
	_, finalName, err := client.CreateServer(cmd.Context(), createUser, createName, specFromFlags())
	if err != nil {
		output.Error("failed to create app: %v", err)
		return
	}

	output.Success("App created")
	output.KeyValue("Server name", finalName)
	output.KeyValue("Framework", createFramework)
}

func appsEditRun(cmd *cobra.Command, args []string) {
	cfg, err := getConfig()
	if err != nil {
		output.Error("%v", err)
		return
	}
	editServerName = args[0]

	output.Info("Updating app %q for %s…", editServerName, createUser)

	client := hub.NewForUser(cfg, slog.Default(), createUser)
	_, finalName, err := client.EditServer(cmd.Context(), createUser, editServerName, specFromFlags())
	if err != nil {
		output.Error("failed to edit app: %v", err)
		return
	}

	output.Success("App updated")
	output.KeyValue("Server name", finalName)
}
