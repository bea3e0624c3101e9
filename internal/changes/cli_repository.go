package changes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/temirov/commitmsg/internal/execshell"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitShowToplevelFlagConstant          = "--show-toplevel"
	gitStatusSubcommandConstant          = "status"
	gitPorcelainV2FlagConstant           = "--porcelain=v2"
	gitNullTerminatedFlagConstant        = "-z"
	gitUntrackedFilesAllFlagConstant     = "--untracked-files=all"
	gitDiffSubcommandConstant            = "diff"
	gitNoColorFlagConstant               = "--no-color"
	gitNoExternalDiffFlagConstant        = "--no-ext-diff"
	gitSourcePrefixFlagConstant          = "--src-prefix=a/"
	gitDestinationPrefixFlagConstant     = "--dst-prefix=b/"
	gitPathSeparatorConstant             = "--"
	gitNotARepositoryFragmentConstant    = "not a git repository"
	gitTerminalPromptEnvironmentConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant    = "0"
	gitOptionalLocksEnvironmentConstant  = "GIT_OPTIONAL_LOCKS"
	gitOptionalLocksDisabledConstant     = "0"
	cliLocateRepositoryTemplateConstant  = "failed to locate repository root: %w"
	cliEmptyToplevelMessageConstant      = "git rev-parse returned an empty repository root"
	cliStatusTemplateConstant            = "failed to read porcelain status: %w"
	cliDiffTemplateConstant              = "failed to compute index to worktree diff: %w"
)

type gitCLIRepository struct {
	root     string
	executor GitExecutor
}

func openGitCLIRepository(executionContext context.Context, startPath string, executor GitExecutor) (Repository, error) {
	result, executionError := executor.ExecuteGit(executionContext, gitCommandDetails(startPath, gitRevParseSubcommandConstant, gitShowToplevelFlagConstant))
	if executionError != nil {
		if isNotARepositoryFailure(executionError) {
			return nil, newNotARepositoryError(startPath, executionError)
		}
		return nil, newProviderFailureError(startPath, fmt.Errorf(cliLocateRepositoryTemplateConstant, executionError))
	}

	root := strings.TrimSpace(result.StandardOutput)
	if len(root) == 0 {
		return nil, newProviderFailureError(startPath, errors.New(cliEmptyToplevelMessageConstant))
	}
	return &gitCLIRepository{root: filepath.Clean(root), executor: executor}, nil
}

func (repository *gitCLIRepository) Root() string {
	return repository.root
}

func (repository *gitCLIRepository) Status(executionContext context.Context) ([]StatusEntry, error) {
	result, executionError := repository.executor.ExecuteGit(executionContext, gitCommandDetails(
		repository.root,
		gitStatusSubcommandConstant,
		gitPorcelainV2FlagConstant,
		gitNullTerminatedFlagConstant,
		gitUntrackedFilesAllFlagConstant,
	))
	if executionError != nil {
		if isNotARepositoryFailure(executionError) {
			return nil, newNotARepositoryError(repository.root, executionError)
		}
		return nil, fmt.Errorf(cliStatusTemplateConstant, executionError)
	}
	return parsePorcelainStatus(result.StandardOutput)
}

func (repository *gitCLIRepository) ReadFile(executionContext context.Context, path string) ([]byte, error) {
	return readTextCandidate(osfs.New(repository.root), path)
}

func (repository *gitCLIRepository) Diff(executionContext context.Context, pathFilter ...string) ([]DiffLine, error) {
	arguments := []string{
		gitDiffSubcommandConstant,
		gitNoColorFlagConstant,
		gitNoExternalDiffFlagConstant,
		gitSourcePrefixFlagConstant,
		gitDestinationPrefixFlagConstant,
	}
	if len(pathFilter) > 0 {
		arguments = append(arguments, gitPathSeparatorConstant)
		arguments = append(arguments, pathFilter...)
	}
	result, executionError := repository.executor.ExecuteGit(executionContext, gitCommandDetails(repository.root, arguments...))
	if executionError != nil {
		return nil, fmt.Errorf(cliDiffTemplateConstant, executionError)
	}
	return parsePatch(result.StandardOutput), nil
}

func gitCommandDetails(workingDirectory string, arguments ...string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentConstant: gitTerminalPromptDisabledConstant,
			gitOptionalLocksEnvironmentConstant:  gitOptionalLocksDisabledConstant,
		},
	}
}

func isNotARepositoryFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	return strings.Contains(strings.ToLower(commandFailure.Result.StandardError), gitNotARepositoryFragmentConstant)
}
