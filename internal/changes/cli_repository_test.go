package changes_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/commitmsg/internal/changes"
	"github.com/temirov/commitmsg/internal/execshell"
)

type recordingGitExecutor struct {
	responses       map[string]execshell.ExecutionResult
	failures        map[string]error
	recordedDetails []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	subcommand := details.Arguments[0]
	if failure, exists := executor.failures[subcommand]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.responses[subcommand], nil
}

func TestGitCLIRepositoryProducesReport(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, "notes.md"), []byte("# notes\n"), 0o644))

	statusOutput := strings.Join([]string{
		"# branch.head main",
		"1 .M N... 100644 100644 100644 aaaaaaa bbbbbbb main.go",
		"2 R. N... 100644 100644 100644 ccccccc ccccccc R100 renamed.go",
		"legacy.go",
		"1 .D N... 100644 100644 000000 ddddddd eeeeeee gone.txt",
		"? notes.md",
	}, "\x00") + "\x00"
	diffOutput := "diff --git a/main.go b/main.go\n" +
		"index aaaaaaa..bbbbbbb 100644\n" +
		"--- a/main.go\n" +
		"+++ b/main.go\n" +
		"@@ -1 +1 @@\n" +
		"-package old\n" +
		"+package main\n" +
		"diff --git a/gone.txt b/gone.txt\n" +
		"deleted file mode 100644\n" +
		"--- a/gone.txt\n" +
		"+++ /dev/null\n" +
		"@@ -1 +0,0 @@\n" +
		"-bye\n"

	executor := &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
		"rev-parse": {StandardOutput: repositoryRoot + "\n"},
		"status":    {StandardOutput: statusOutput},
		"diff":      {StandardOutput: diffOutput},
	}}

	service := changes.NewService(changes.ServiceDependencies{GitExecutor: executor})
	result, reportError := service.Report(context.Background(), changes.Options{RepositoryPath: repositoryRoot, Backend: changes.BackendGitCLI})
	require.NoError(testInstance, reportError)

	require.Equal(testInstance, filepath.Clean(repositoryRoot), result.RepositoryRoot)
	expectedReport := "diff --git a/main.go b/main.go\n" +
		"index aaaaaaa..bbbbbbb 100644\n" +
		"--- a/main.go\n" +
		"+++ b/main.go\n" +
		"@@ -1 +1 @@\n" +
		"package old\n" +
		"package main\n" +
		"\nRenamed file: renamed.go" +
		"\nDeleted file: gone.txt" +
		"\nNew file: notes.md\n# notes\n"
	require.Equal(testInstance, changes.ChangeReport(expectedReport), result.Report)

	require.Len(testInstance, executor.recordedDetails, 3)
	require.Equal(testInstance, []string{"status", "--porcelain=v2", "-z", "--untracked-files=all"}, executor.recordedDetails[1].Arguments)
	require.Equal(testInstance, []string{"diff", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/"}, executor.recordedDetails[2].Arguments)
	for _, details := range executor.recordedDetails {
		require.Equal(testInstance, "0", details.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
	}
}

func TestGitCLIRepositoryDiffForwardsPathFilter(testInstance *testing.T) {
	executor := &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
		"rev-parse": {StandardOutput: "/workspace/project\n"},
	}}
	repository, openError := changes.Open(context.Background(), changes.OpenOptions{Path: "/workspace/project", Backend: changes.BackendGitCLI, GitExecutor: executor})
	require.NoError(testInstance, openError)

	_, diffError := repository.Diff(context.Background(), "a.go", "b.go")
	require.NoError(testInstance, diffError)
	require.Equal(testInstance, []string{"diff", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/", "--", "a.go", "b.go"}, executor.recordedDetails[1].Arguments)
	require.Equal(testInstance, "/workspace/project", executor.recordedDetails[1].WorkingDirectory)
}

func TestGitCLIRepositoryOpenFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		failure       error
		expectedError error
	}{
		{
			name: "NotARepositoryMessage",
			failure: execshell.CommandFailedError{Result: execshell.ExecutionResult{
				ExitCode:      128,
				StandardError: "fatal: not a git repository (or any of the parent directories): .git",
			}},
			expectedError: changes.ErrNotARepository,
		},
		{
			name:          "ExitCodeOnly",
			failure:       execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}},
			expectedError: changes.ErrProviderFailure,
		},
		{
			name: "DubiousOwnership",
			failure: execshell.CommandFailedError{Result: execshell.ExecutionResult{
				ExitCode:      128,
				StandardError: "fatal: detected dubious ownership in repository at '/workspace/project'",
			}},
			expectedError: changes.ErrProviderFailure,
		},
		{
			name:          "OtherFailure",
			failure:       execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: bad config"}},
			expectedError: changes.ErrProviderFailure,
		},
		{
			name:          "MissingBinary",
			failure:       execshell.CommandExecutionError{Cause: errors.New("executable file not found in $PATH")},
			expectedError: changes.ErrProviderFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{failures: map[string]error{"rev-parse": testCase.failure}}
			_, openError := changes.Open(context.Background(), changes.OpenOptions{Path: testInstance.TempDir(), Backend: changes.BackendGitCLI, GitExecutor: executor})
			require.ErrorIs(testInstance, openError, testCase.expectedError)
			if !errors.Is(testCase.expectedError, changes.ErrNotARepository) {
				require.NotErrorIs(testInstance, openError, changes.ErrNotARepository)
			}
		})
	}
}

func TestGitCLIRepositoryStatusFailureAbortsReport(testInstance *testing.T) {
	executor := &recordingGitExecutor{
		responses: map[string]execshell.ExecutionResult{"rev-parse": {StandardOutput: "/workspace/project\n"}},
		failures:  map[string]error{"status": execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1, StandardError: "index.lock exists"}}},
	}

	service := changes.NewService(changes.ServiceDependencies{GitExecutor: executor})
	_, reportError := service.Report(context.Background(), changes.Options{RepositoryPath: "/workspace/project", Backend: changes.BackendGitCLI})
	require.ErrorIs(testInstance, reportError, changes.ErrProviderFailure)
}

func TestGitCLIRepositoryIgnoresUserDiffPrefixConfiguration(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	testCases := []struct {
		name    string
		options map[string]string
	}{
		{name: "NoPrefix", options: map[string]string{"noprefix": "true"}},
		{name: "MnemonicPrefix", options: map[string]string{"mnemonicPrefix": "true"}},
		{name: "Both", options: map[string]string{"noprefix": "true", "mnemonicPrefix": "true"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := initializeRepository(testInstance, map[string]string{"tracked.txt": "line one\nline two\n"})
			repository, openError := gitlib.PlainOpen(repositoryPath)
			require.NoError(testInstance, openError)
			repositoryConfiguration, configurationError := repository.Config()
			require.NoError(testInstance, configurationError)
			diffSection := repositoryConfiguration.Raw.Section("diff")
			for optionName, optionValue := range testCase.options {
				diffSection.SetOption(optionName, optionValue)
			}
			require.NoError(testInstance, repository.SetConfig(repositoryConfiguration))

			writeWorkingTreeFile(testInstance, repositoryPath, "tracked.txt", "line one\nline 2\n")

			executor, executorError := changes.ResolveGitExecutor(nil, zap.NewNop())
			require.NoError(testInstance, executorError)
			service := changes.NewService(changes.ServiceDependencies{GitExecutor: executor})
			result, reportError := service.Report(context.Background(), changes.Options{RepositoryPath: repositoryPath, Backend: changes.BackendGitCLI})
			require.NoError(testInstance, reportError)

			require.Equal(testInstance, []changes.StatusEntry{{Path: "tracked.txt", Flags: changes.StatusModifiedInWorkdir}}, result.Entries)
			report := string(result.Report)
			require.Contains(testInstance, report, "diff --git a/tracked.txt b/tracked.txt\n")
			require.Contains(testInstance, report, "--- a/tracked.txt\n+++ b/tracked.txt\n")
			require.Contains(testInstance, report, "line one\nline two\nline 2\n")
		})
	}
}
