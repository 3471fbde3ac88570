// Package constants defines global constants used throughout apphub.
// It includes version information, paths, and shared configuration keys.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of apphub.
func GetVersion() *string {
	return &version
}

// ProjectName is the name of the CLI tool and application
const ProjectName = "japps"

// ServiceName is the name under which the app management service is
// registered on the hub. It is part of the service URL prefix.
const ServiceName = "japps"

// ConfigDirName is the name of the configuration directory in the user's home directory
const ConfigDirName = ".apphub"

// ConfigFileName is the name of the global configuration file
const ConfigFileName = "config.yaml"

// ConfigDirPath returns the full path to the global configuration directory.
func ConfigDirPath(homeDir string) string {
	return homeDir + "/" + ConfigDirName
}

// ConfigFilePath returns the full path to the global configuration file
func ConfigFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + ConfigFileName
}

// Environment represents the execution environment.
type Environment string

// Environment types for logger configuration
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

// MaxServerNameLength is the cap applied to normalized server names.
const MaxServerNameLength = 240

// ServerNameSuffixLength is the number of random hex characters appended
// to a normalized server name to guarantee uniqueness.
const ServerNameSuffixLength = 7

// ShareFanoutWidth is the maximum number of in-flight share grant
// requests. The hub offers no bulk-grant endpoint, so grants fan out as
// individual calls.
const ShareFanoutWidth = 10

// ContextKey is the type used for context value keys set by the CLI.
type ContextKey string

const (
	// ConfigCtxKey stores the loaded configuration on the command context.
	ConfigCtxKey ContextKey = "config"
	// StartTimeCtxKey stores the command start time on the command context.
	StartTimeCtxKey ContextKey = "startTime"
)
