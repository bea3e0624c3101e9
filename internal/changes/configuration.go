package changes

import "strings"

const (
	configurationRepositoryKeyConstant = "repository"
	configurationBackendKeyConstant    = "backend"
)

// CommandConfiguration captures configuration values for the changes command.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	Backend        string `mapstructure:"backend"`
}

// DefaultCommandConfiguration provides baseline configuration values for the changes command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: defaultRepositoryPathConstant,
		Backend:        string(BackendNative),
	}
}

// DefaultConfigurationValues produces Viper defaults for the changes command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRepositoryKeyConstant: defaults.RepositoryPath,
		rootKey + "." + configurationBackendKeyConstant:    defaults.Backend,
	}
}

// Sanitize trims configuration values and restores defaults for empty fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaults.RepositoryPath
	}

	sanitized.Backend = strings.ToLower(strings.TrimSpace(configuration.Backend))
	if len(sanitized.Backend) == 0 {
		sanitized.Backend = defaults.Backend
	}

	return sanitized
}
