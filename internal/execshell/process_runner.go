package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

const environmentAssignmentSeparatorConstant = "="

// ProcessRunner starts git as a child process and captures its output streams.
type ProcessRunner struct {
	baseEnvironment func() []string
}

// NewProcessRunner constructs a runner that inherits the current process environment.
func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{baseEnvironment: os.Environ}
}

// Run executes the command and reports non-zero exits through ExecutionResult.ExitCode.
// Failures to start the process and context cancellation are returned as errors.
func (runner *ProcessRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), append([]string(nil), command.Details.Arguments...)...)
	process.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = runner.processEnvironment(command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}
	result := ExecutionResult{StandardOutput: standardOutput.String(), StandardError: standardError.String()}
	if runError == nil {
		return result, nil
	}
	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

// processEnvironment appends overrides in key order; exec keeps the last value of a duplicated key.
func (runner *ProcessRunner) processEnvironment(overrides map[string]string) []string {
	baseEnvironment := runner.baseEnvironment
	if baseEnvironment == nil {
		baseEnvironment = os.Environ
	}
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)

	environment := append([]string(nil), baseEnvironment()...)
	for _, overrideKey := range overrideKeys {
		environment = append(environment, overrideKey+environmentAssignmentSeparatorConstant+overrides[overrideKey])
	}
	return environment
}
