package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	pathSeparatorLiteralConstant            = "--"
	allPathsLabelConstant                   = "all paths"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitShowToplevelFlagConstant       = "--show-toplevel"
	gitStatusSubcommandNameConstant   = "status"
	gitDiffSubcommandNameConstant     = "diff"
)

const (
	gitToplevelStartTemplateConstant            = "Locating repository root from %s"
	gitToplevelSuccessTemplateConstant          = "Located repository root from %s"
	gitToplevelFailureTemplateConstant          = "Could not locate a repository from %s (exit code %d%s)"
	gitToplevelExecutionFailureTemplateConstant = "Unable to locate a repository from %s: %s"
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant   = "Unable to review working tree status in %s: %s"
	gitDiffStartTemplateConstant                = "Comparing index and working tree for %s in %s"
	gitDiffSuccessTemplateConstant              = "Compared index and working tree for %s in %s"
	gitDiffFailureTemplateConstant              = "Failed to compare index and working tree for %s in %s (exit code %d%s)"
	gitDiffExecutionFailureTemplateConstant     = "Unable to compare index and working tree for %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := describeWorkingDirectory(command)
	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		if !containsArgument(command.Details.Arguments, gitShowToplevelFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitToplevelStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitToplevelSuccessTemplateConstant, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(gitToplevelFailureTemplateConstant, workingDirectory, exitCode, standardError)
			},
			func(failureDescription string) string {
				return fmt.Sprintf(gitToplevelExecutionFailureTemplateConstant, workingDirectory, failureDescription)
			},
		)
	case gitStatusSubcommandNameConstant:
		return selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, exitCode, standardError)
			},
			func(failureDescription string) string {
				return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, workingDirectory, failureDescription)
			},
		)
	case gitDiffSubcommandNameConstant:
		pathLabel := describePathFilter(command.Details.Arguments)
		return selectStageMessage(stage, result, failure,
			fmt.Sprintf(gitDiffStartTemplateConstant, pathLabel, workingDirectory),
			fmt.Sprintf(gitDiffSuccessTemplateConstant, pathLabel, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(gitDiffFailureTemplateConstant, pathLabel, workingDirectory, exitCode, standardError)
			},
			func(failureDescription string) string {
				return fmt.Sprintf(gitDiffExecutionFailureTemplateConstant, pathLabel, workingDirectory, failureDescription)
			},
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatCommandLabel(command)
	return selectStageMessage(stage, result, failure,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		func(exitCode int, standardError string) string {
			return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, exitCode, standardError)
		},
		func(failureDescription string) string {
			return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, failureDescription)
		},
	)
}

func selectStageMessage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureMessage func(int, string) string, executionFailureMessage func(string) string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage(result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return executionFailureMessage(describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatWorkingDirectorySuffix(command))
}

func formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func describePathFilter(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if argument != pathSeparatorLiteralConstant {
			continue
		}
		remaining := arguments[argumentIndex+1:]
		if len(remaining) == 0 {
			break
		}
		return strings.Join(remaining, commandArgumentsJoinSeparatorConstant)
	}
	return allPathsLabelConstant
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
