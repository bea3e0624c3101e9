package message

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/commitmsg/internal/changes"
	"github.com/temirov/commitmsg/internal/commit"
	"github.com/temirov/commitmsg/internal/utils"
	flagutils "github.com/temirov/commitmsg/internal/utils/flags"
	pathutils "github.com/temirov/commitmsg/internal/utils/path"
	"github.com/temirov/commitmsg/pkg/llm"
)

const (
	commandUseConstant               = "message"
	commandShortDescriptionConstant  = "Generate a Conventional Commits message for pending changes"
	commandLongDescriptionConstant   = "message scans the surrounding git repository, sends the classified change report to a chat completion API, and prints the suggested Conventional Commits message. With --auto-commit every change is staged and committed with that message."
	modelFlagNameConstant            = "model"
	modelFlagUsageConstant           = "Override the configured chat completion model."
	generatedMessageTemplateConstant = "Generated Commit Message:\n%s\n"
	dryRunPromptTemplateConstant     = "Prompt (dry run, model %s):\n%s\n"
	commitCreatedTemplateConstant    = "Commit created successfully: %s\n"
	apiKeySourceTemplateConstant     = "invalid api key source: %w"
	commitFailedTemplateConstant     = "failed to create commit: %w"
	dryRunSkippedMessageConstant     = "Dry run requested; skipping chat completion and commit"
	logFieldModelConstant            = "model"
	logFieldAutoCommitConstant       = "auto_commit"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ChatClientFactory constructs the chat client used by the command.
type ChatClientFactory func(configuration llm.Config) (ChatClient, error)

// CommitCreator records the generated message as a commit.
type CommitCreator interface {
	Create(executionContext context.Context, options commit.Options) (commit.Result, error)
}

// CommandBuilder assembles the message command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  changes.GitExecutor
	ConfigurationProvider        func() CommandConfiguration
	ChangesConfigurationProvider func() changes.CommandConfiguration
	ChatClientFactory            ChatClientFactory
	APIKeyResolver               APIKeyResolver
	CommitCreator                CommitCreator
}

type commandFlagValues struct {
	repository *flagutils.RepositoryFlagValues
	execution  *flagutils.ExecutionFlagValues
	model      string
}

// Build constructs the message command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	changesDefaults := changes.DefaultCommandConfiguration()
	flagValues := &commandFlagValues{}
	flagValues.repository = flagutils.BindRepositoryFlags(
		command,
		flagutils.RepositoryFlagValues{Path: changesDefaults.RepositoryPath, Backend: changesDefaults.Backend},
		changes.RepositoryFlagDefinitions(),
	)
	flagValues.execution = flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		AutoCommit: flagutils.ExecutionFlagDefinition{
			Name:      flagutils.AutoCommitFlagName,
			Shorthand: flagutils.AutoCommitFlagShorthand,
			Usage:     flagutils.AutoCommitFlagUsage,
			Enabled:   true,
		},
	})
	command.Flags().StringVar(&flagValues.model, modelFlagNameConstant, "", modelFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, flagValues *commandFlagValues) error {
	executionContext := command.Context()
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	changesConfiguration := builder.resolveChangesConfiguration()

	if command.Flags().Changed(modelFlagNameConstant) {
		if trimmedModel := strings.TrimSpace(flagValues.model); len(trimmedModel) > 0 {
			configuration.Model = trimmedModel
		}
	}
	autoCommit := configuration.AutoCommit
	if command.Flags().Changed(flagutils.AutoCommitFlagName) {
		autoCommit = flagValues.execution.AutoCommit
	}

	repositoryValues := flagutils.ResolveRepositoryValues(
		command,
		flagutils.RepositoryFlagValues{Path: changesConfiguration.RepositoryPath, Backend: changesConfiguration.Backend},
		flagValues.repository,
		changes.RepositoryFlagDefinitions(),
	)
	backend, backendError := changes.ParseBackend(repositoryValues.Backend)
	if backendError != nil {
		return backendError
	}

	gitExecutor, executorError := changes.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}
	changesService := changes.NewService(changes.ServiceDependencies{Logger: logger, GitExecutor: gitExecutor})
	repositoryPath := pathutils.NewHomeExpander().Expand(repositoryValues.Path)
	report, reportError := changesService.Report(executionContext, changes.Options{RepositoryPath: repositoryPath, Backend: backend})
	if reportError != nil {
		return reportError
	}

	prompt, promptError := Prompt(report.Report)
	if promptError != nil {
		return promptError
	}
	if builder.dryRunRequested(executionContext) {
		logger.Info(dryRunSkippedMessageConstant, zap.String(logFieldModelConstant, configuration.Model), zap.Bool(logFieldAutoCommitConstant, autoCommit))
		_, writeError := fmt.Fprintf(command.OutOrStdout(), dryRunPromptTemplateConstant, configuration.Model, prompt)
		return writeError
	}

	chatClient, clientError := builder.createChatClient(executionContext, configuration)
	if clientError != nil {
		return clientError
	}
	service, serviceError := NewService(ServiceDependencies{Logger: logger, ChatClient: chatClient})
	if serviceError != nil {
		return serviceError
	}

	commitMessage, generateError := service.Generate(executionContext, report.Report)
	if generateError != nil {
		return generateError
	}
	if _, writeError := fmt.Fprintf(command.OutOrStdout(), generatedMessageTemplateConstant, commitMessage); writeError != nil {
		return writeError
	}

	if !autoCommit {
		return nil
	}

	commitResult, commitError := builder.resolveCommitCreator(logger).Create(executionContext, commit.Options{
		RepositoryPath: report.RepositoryRoot,
		Message:        commitMessage,
		AuthorName:     configuration.AuthorName,
		AuthorEmail:    configuration.AuthorEmail,
	})
	if commitError != nil {
		return fmt.Errorf(commitFailedTemplateConstant, commitError)
	}
	_, writeError := fmt.Fprintf(command.OutOrStdout(), commitCreatedTemplateConstant, commitResult.Hash)
	return writeError
}

func (builder *CommandBuilder) createChatClient(executionContext context.Context, configuration CommandConfiguration) (ChatClient, error) {
	source, sourceError := ParseAPIKeySource(configuration.APIKeySource)
	if sourceError != nil {
		return nil, fmt.Errorf(apiKeySourceTemplateConstant, sourceError)
	}
	resolver := builder.APIKeyResolver
	if resolver == nil {
		resolver = NewAPIKeyResolver(nil, nil)
	}
	apiKey, resolveError := resolver.ResolveAPIKey(executionContext, source)
	if resolveError != nil {
		return nil, resolveError
	}

	factory := builder.ChatClientFactory
	if factory == nil {
		factory = defaultChatClientFactory
	}
	return factory(llm.Config{
		BaseURL:             configuration.BaseURL,
		APIKey:              apiKey,
		Model:               configuration.Model,
		MaxCompletionTokens: configuration.MaxTokens,
		Timeout:             configuration.Timeout(),
	})
}

func defaultChatClientFactory(configuration llm.Config) (ChatClient, error) {
	client, creationError := llm.NewClient(configuration)
	if creationError != nil {
		return nil, creationError
	}
	return client, nil
}

func (builder *CommandBuilder) dryRunRequested(executionContext context.Context) bool {
	executionFlags, available := utils.NewCommandContextAccessor().ExecutionFlags(executionContext)
	return available && executionFlags.DryRunSet && executionFlags.DryRun
}

func (builder *CommandBuilder) resolveCommitCreator(logger *zap.Logger) CommitCreator {
	if builder.CommitCreator != nil {
		return builder.CommitCreator
	}
	return commit.NewCreator(commit.CreatorDependencies{Logger: logger})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveChangesConfiguration() changes.CommandConfiguration {
	if builder.ChangesConfigurationProvider == nil {
		return changes.DefaultCommandConfiguration()
	}
	return builder.ChangesConfigurationProvider().Sanitize()
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
