// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview the request without calling the message service or committing"
	// AutoCommitFlagName exposes the auto-commit flag name.
	AutoCommitFlagName = "auto-commit"
	// AutoCommitFlagShorthand provides the shorthand for the auto-commit flag.
	AutoCommitFlagShorthand = "a"
	// AutoCommitFlagUsage describes the auto-commit flag purpose.
	AutoCommitFlagUsage = "Automatically create the commit after generating the message"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun     bool
	AutoCommit bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name       string
	Usage      string
	Shorthand  string
	Enabled    bool
	Persistent bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun     ExecutionFlagDefinition
	AutoCommit ExecutionFlagDefinition
}

// ExecutionFlagValues stores parsed execution flag values.
type ExecutionFlagValues struct {
	DryRun     bool
	AutoCommit bool
}

// BindExecutionFlags attaches execution toggles to the command; persistent definitions are inherited by subcommands.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := &ExecutionFlagValues{DryRun: defaults.DryRun, AutoCommit: defaults.AutoCommit}
	if command == nil {
		return values
	}

	bindToggle(selectFlagSet(command, definitions.DryRun), &values.DryRun, definitions.DryRun, defaults.DryRun)
	bindToggle(selectFlagSet(command, definitions.AutoCommit), &values.AutoCommit, definitions.AutoCommit, defaults.AutoCommit)
	return values
}

func selectFlagSet(command *cobra.Command, definition ExecutionFlagDefinition) *pflag.FlagSet {
	if definition.Persistent {
		return command.PersistentFlags()
	}
	return command.Flags()
}

func bindToggle(flagSet *pflag.FlagSet, target *bool, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}
	AddToggleFlag(flagSet, target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}
