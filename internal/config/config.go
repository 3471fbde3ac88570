// Package config manages configuration for the apphub CLI and services.
// It uses Viper for unified configuration management from files and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"apphub/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the unified configuration for the CLI, the status service
// and the startup reconciler.
type Config struct {
	// HubAPIURL is the hub control API base URL (JUPYTERHUB_API_URL).
	HubAPIURL string `mapstructure:"hub_api_url" yaml:"hub_api_url" validate:"omitempty,url"`
	// HubAPIToken is the service-level hub token (JUPYTERHUB_API_TOKEN).
	HubAPIToken string `mapstructure:"hub_api_token" yaml:"hub_api_token"`
	// HubBindURL is the hub's externally visible bind URL, used to derive
	// the origin host for spawned apps.
	HubBindURL string `mapstructure:"hub_bind_url" yaml:"hub_bind_url" validate:"omitempty,url"`

	// HubHost and ServicePort locate the status endpoint the readiness
	// gate polls before reconciliation starts.
	HubHost     string `mapstructure:"hub_host" yaml:"hub_host"`
	ServicePort int    `mapstructure:"service_port" yaml:"service_port" validate:"omitempty,min=1,max=65535"`

	// PythonExec is the interpreter used in launch commands.
	PythonExec string `mapstructure:"python_exec" yaml:"python_exec"`
	// AppsAuthType configures the proxy wrapper's auth mode.
	AppsAuthType string `mapstructure:"apps_auth_type" yaml:"apps_auth_type" validate:"omitempty,oneof=oauth none"`
	// ExamplesDir holds bundled example apps for specs without a filepath.
	ExamplesDir string `mapstructure:"examples_dir" yaml:"examples_dir"`

	// StartupAppsPath points at the desired-state YAML list reconciled at
	// startup.
	StartupAppsPath string `mapstructure:"startup_apps_path" yaml:"startup_apps_path"`

	// MaxReconcilePolls bounds the per-phase reconciliation polls. The
	// default 0 preserves the historical behavior of polling forever; a
	// hub that never converges then pins the owner's task. Set a bound to
	// turn that into a TIMEOUT error instead.
	MaxReconcilePolls int `mapstructure:"max_reconcile_polls" yaml:"max_reconcile_polls" validate:"min=0"`

	LogLevel    string                `mapstructure:"log_level" yaml:"log_level"`
	Environment constants.Environment `mapstructure:"environment" yaml:"environment"`
}

var validate = validator.New()

// Load loads the configuration using Viper: defaults, then the optional
// config file, then environment variables (JAPPS_ prefix, plus the
// JUPYTERHUB_* variables the platform injects into services).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		// Config file not found is acceptable for services (they use env vars only)
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	v.SetEnvPrefix("JAPPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadCLI loads configuration specifically for CLI usage.
// Returns an error if the config file doesn't exist.
func LoadCLI() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("JAPPS")
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the path of the CLI config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return constants.ConfigFilePath(homeDir), nil
}

// StatusURL returns the readiness endpoint of the app management
// service.
func (c *Config) StatusURL() string {
	return fmt.Sprintf("http://%s:%d/services/%s/status", c.HubHost, c.ServicePort, constants.ServiceName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub_host", "127.0.0.1")
	v.SetDefault("service_port", 10202)
	v.SetDefault("python_exec", "python")
	v.SetDefault("apps_auth_type", "oauth")
	v.SetDefault("max_reconcile_polls", 0)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("environment", string(constants.Development))
}

func loadConfigFile(v *viper.Viper) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	v.SetConfigName(strings.TrimSuffix(constants.ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(constants.ConfigDirPath(homeDir))

	return v.ReadInConfig()
}

// bindEnvVars binds the hub-injected environment variables that carry no
// JAPPS_ prefix. These are the platform's contract with its services.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("hub_api_url", "JAPPS_HUB_API_URL", "JUPYTERHUB_API_URL")
	_ = v.BindEnv("hub_api_token", "JAPPS_HUB_API_TOKEN", "JUPYTERHUB_API_TOKEN")
	_ = v.BindEnv("hub_bind_url", "JAPPS_HUB_BIND_URL", "JUPYTERHUB_BASE_URL")
	_ = v.BindEnv("hub_host")
	_ = v.BindEnv("service_port")
	_ = v.BindEnv("python_exec")
	_ = v.BindEnv("apps_auth_type")
	_ = v.BindEnv("examples_dir")
	_ = v.BindEnv("startup_apps_path")
	_ = v.BindEnv("max_reconcile_polls")
	_ = v.BindEnv("log_level")
	_ = v.BindEnv("environment")
}
