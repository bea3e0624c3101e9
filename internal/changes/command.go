package changes

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/commitmsg/internal/execshell"
	flagutils "github.com/temirov/commitmsg/internal/utils/flags"
	pathutils "github.com/temirov/commitmsg/internal/utils/path"
)

const (
	commandUseConstant              = "changes"
	commandShortDescriptionConstant = "Print the classified change report for the working tree"
	commandLongDescriptionConstant  = "changes scans the index and working tree of the surrounding git repository and prints one fragment per changed path: new file contents, diffs of modified files, and markers for deleted and renamed files."
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the changes command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           GitExecutor
	ConfigurationProvider func() CommandConfiguration
}

// RepositoryFlagDefinitions returns the repository flag definitions shared by report-producing commands.
func RepositoryFlagDefinitions() flagutils.RepositoryFlagDefinitions {
	backendChoices := make([]string, 0, len(SupportedBackends()))
	for _, backend := range SupportedBackends() {
		backendChoices = append(backendChoices, string(backend))
	}
	return flagutils.RepositoryFlagDefinitions{
		Path: flagutils.RepositoryFlagDefinition{
			Name:    flagutils.RepositoryFlagName,
			Usage:   flagutils.RepositoryFlagUsage,
			Enabled: true,
		},
		Backend: flagutils.ChoiceFlagDefinition{
			Name:    flagutils.BackendFlagName,
			Usage:   flagutils.BackendFlagUsage,
			Choices: backendChoices,
			Enabled: true,
		},
	}
}

// Build constructs the changes command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	defaults := DefaultCommandConfiguration()
	flagValues := flagutils.BindRepositoryFlags(command, flagutils.RepositoryFlagValues{Path: defaults.RepositoryPath, Backend: defaults.Backend}, RepositoryFlagDefinitions())

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, flagValues *flagutils.RepositoryFlagValues) error {
	configuration := builder.resolveConfiguration()
	resolved := flagutils.ResolveRepositoryValues(
		command,
		flagutils.RepositoryFlagValues{Path: configuration.RepositoryPath, Backend: configuration.Backend},
		flagValues,
		RepositoryFlagDefinitions(),
	)

	backend, backendError := ParseBackend(resolved.Backend)
	if backendError != nil {
		return backendError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}

	service := NewService(ServiceDependencies{Logger: logger, GitExecutor: gitExecutor})
	repositoryPath := pathutils.NewHomeExpander().Expand(resolved.Path)
	result, reportError := service.Report(command.Context(), Options{RepositoryPath: repositoryPath, Backend: backend})
	if reportError != nil {
		return reportError
	}

	_, writeError := fmt.Fprintln(command.OutOrStdout(), string(result.Report))
	return writeError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveGitExecutor returns the provided executor or constructs an os/exec backed one.
func ResolveGitExecutor(existing GitExecutor, logger *zap.Logger) (GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewProcessRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
