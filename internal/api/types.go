// Package api defines the typed JSON contract exchanged with the hub
// control API, plus the desired-state types consumed by the startup
// reconciler.
package api

// SharePermissions lists the users and groups an app is shared with.
type SharePermissions struct {
	Users  []string `json:"users" yaml:"users"`
	Groups []string `json:"groups" yaml:"groups"`
}

// Empty reports whether the share target carries no grantees at all.
func (s *SharePermissions) Empty() bool {
	return s == nil || (len(s.Users) == 0 && len(s.Groups) == 0)
}

// Repository points at a git repository an app is deployed from.
type Repository struct {
	URL string `json:"url" yaml:"url" validate:"required,url"`
	// ConfigDirectory is the subdirectory holding the app's config.
	ConfigDirectory string `json:"config_directory" yaml:"config_directory"`
	// Ref is the git ref to deploy.
	Ref string `json:"ref" yaml:"ref"`
}

// AppSpec is the declarative description of one app a user wants
// running. It is serialized as the `user_options` payload on server
// creation and echoed back by the hub on reads.
type AppSpec struct {
	// JHubApp distinguishes apps managed by this service from plain
	// notebook servers.
	JHubApp     bool   `json:"jhub_app" yaml:"jhub_app"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
	Description string `json:"description" yaml:"description"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Filepath    string `json:"filepath,omitempty" yaml:"filepath,omitempty"`
	Framework   string `json:"framework" yaml:"framework" validate:"required"`
	// CustomCommand is the shell command for the custom framework. It is
	// ignored for every other framework.
	CustomCommand string `json:"custom_command,omitempty" yaml:"custom_command,omitempty"`
	CondaEnv      string `json:"conda_env,omitempty" yaml:"conda_env,omitempty"`
	// Env is merged into the spawned process environment.
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Profile string            `json:"profile,omitempty" yaml:"profile,omitempty"`
	// Public makes the app reachable without hub authentication.
	Public bool `json:"public" yaml:"public"`
	// KeepAlive exempts the app from idle culling.
	KeepAlive bool              `json:"keep_alive" yaml:"keep_alive"`
	ShareWith *SharePermissions `json:"share_with,omitempty" yaml:"share_with,omitempty"`
	Repository *Repository      `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// StartupApp is one entry of the desired-state list driven to the hub at
// service startup.
type StartupApp struct {
	Username   string  `yaml:"username" json:"username" validate:"required"`
	ServerName string  `yaml:"servername" json:"servername" validate:"required"`
	AppSpec    AppSpec `yaml:"user_options" json:"user_options"`

	// NormalizedName is derived from ServerName once, before
	// reconciliation starts, and cached here.
	NormalizedName string `yaml:"-" json:"-"`
}
