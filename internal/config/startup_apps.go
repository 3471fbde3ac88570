package config

import (
	"fmt"
	"os"

	"apphub/internal/api"

	"gopkg.in/yaml.v3"
)

// LoadStartupApps reads the desired-state list of apps reconciled at
// startup. Each entry names an owner, a server name and the full app
// spec.
func LoadStartupApps(path string) ([]api.StartupApp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read startup apps file: %w", err)
	}

	var apps []api.StartupApp
	if err := yaml.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("failed to parse startup apps file: %w", err)
	}

	for i := range apps {
		if err := validate.Struct(&apps[i]); err != nil {
			return nil, fmt.Errorf("startup app %d is invalid: %w", i, err)
		}
	}

	return apps, nil
}
