package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// RepositoryFlagName exposes the shared repository discovery flag name.
	RepositoryFlagName = "repository"
	// RepositoryFlagUsage describes the shared repository discovery flag purpose.
	RepositoryFlagUsage = "Directory from which the git repository is discovered"
	// BackendFlagName exposes the shared repository backend flag name.
	BackendFlagName = "backend"
	// BackendFlagUsage describes the shared repository backend flag purpose.
	BackendFlagUsage = "Repository backend used to read status and diffs"
)

// RepositoryFlagDefinition captures configuration for a single repository context flag.
type RepositoryFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// ChoiceFlagDefinition captures configuration for a flag restricted to a set of choices.
type ChoiceFlagDefinition struct {
	Name    string
	Usage   string
	Choices []string
	Enabled bool
}

// RepositoryFlagDefinitions groups repository context flag definitions.
type RepositoryFlagDefinitions struct {
	Path    RepositoryFlagDefinition
	Backend ChoiceFlagDefinition
}

// RepositoryFlagValues stores repository context flag values.
type RepositoryFlagValues struct {
	Path    string
	Backend string
}

// BindRepositoryFlags attaches repository context flags to the command's local flag set.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues, definitions RepositoryFlagDefinitions) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.Path.Enabled && len(definitions.Path.Name) > 0 && flagSet.Lookup(definitions.Path.Name) == nil {
		flagSet.StringVar(&values.Path, definitions.Path.Name, defaults.Path, definitions.Path.Usage)
	}
	if definitions.Backend.Enabled && len(definitions.Backend.Name) > 0 && flagSet.Lookup(definitions.Backend.Name) == nil {
		usage := definitions.Backend.Usage
		if len(definitions.Backend.Choices) > 0 {
			usage = FormatBackendUsage(defaults.Backend, definitions.Backend.Choices, definitions.Backend.Usage)
		}
		flagSet.StringVar(&values.Backend, definitions.Backend.Name, defaults.Backend, usage)
	}

	return &values
}

// ResolveRepositoryValues overlays explicitly changed flag values on top of configured values.
func ResolveRepositoryValues(command *cobra.Command, configured RepositoryFlagValues, flagValues *RepositoryFlagValues, definitions RepositoryFlagDefinitions) RepositoryFlagValues {
	resolved := configured
	if command == nil || flagValues == nil {
		return resolved
	}
	if flagChanged(command, definitions.Path.Name) {
		resolved.Path = strings.TrimSpace(flagValues.Path)
	}
	if flagChanged(command, definitions.Backend.Name) {
		resolved.Backend = strings.ToLower(strings.TrimSpace(flagValues.Backend))
	}
	return resolved
}

func flagChanged(command *cobra.Command, flagName string) bool {
	if len(flagName) == 0 {
		return false
	}
	return command.Flags().Changed(flagName)
}
