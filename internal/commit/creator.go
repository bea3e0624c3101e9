package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

const (
	defaultRepositoryPathConstant     = "."
	emptyMessageErrorMessageConstant  = "commit message must not be empty"
	authorMissingErrorMessageConstant = "commit author name and email must be configured"
	nothingToCommitMessageConstant    = "nothing to commit"
	openRepositoryTemplateConstant    = "failed to open repository at %s: %w"
	openWorktreeTemplateConstant      = "failed to open worktree: %w"
	stageChangesTemplateConstant      = "failed to stage changes: %w"
	readConfigurationTemplateConstant = "failed to read git configuration: %w"
	createCommitTemplateConstant      = "failed to create commit: %w"
	commitCreatedMessageConstant      = "Created commit"
	logFieldHashConstant              = "hash"
	logFieldRepositoryRootConstant    = "repository_root"
	logFieldAuthorConstant            = "author"
)

// ErrEmptyMessage indicates a blank commit message.
var ErrEmptyMessage = errors.New(emptyMessageErrorMessageConstant)

// ErrAuthorNotConfigured indicates no author identity was configured or found in git configuration.
var ErrAuthorNotConfigured = errors.New(authorMissingErrorMessageConstant)

// ErrNothingToCommit indicates the staged tree matches HEAD.
var ErrNothingToCommit = errors.New(nothingToCommitMessageConstant)

// Clock returns the commit timestamp.
type Clock func() time.Time

// CreatorDependencies enumerates collaborators used by the Creator.
type CreatorDependencies struct {
	Logger *zap.Logger
	Clock  Clock
}

// Options describes the commit to create.
type Options struct {
	RepositoryPath string
	Message        string
	AuthorName     string
	AuthorEmail    string
}

// Result identifies the created commit.
type Result struct {
	RepositoryRoot string
	Hash           string
}

// Creator stages every pending change and commits it on the current branch.
type Creator struct {
	logger *zap.Logger
	clock  Clock
}

// NewCreator constructs a Creator.
func NewCreator(dependencies CreatorDependencies) *Creator {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Creator{logger: logger, clock: clock}
}

// Create stages all changes, deletions included, and commits them. The first commit of a repository has no parent.
func (creator *Creator) Create(executionContext context.Context, options Options) (Result, error) {
	message := strings.TrimSpace(options.Message)
	if len(message) == 0 {
		return Result{}, ErrEmptyMessage
	}
	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, contextError
	}

	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}
	repository, openError := gitlib.PlainOpenWithOptions(repositoryPath, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return Result{}, fmt.Errorf(openRepositoryTemplateConstant, repositoryPath, openError)
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return Result{}, fmt.Errorf(openWorktreeTemplateConstant, worktreeError)
	}

	author, authorError := resolveAuthor(repository, options)
	if authorError != nil {
		return Result{}, authorError
	}
	author.When = creator.clock()

	if stageError := worktree.AddWithOptions(&gitlib.AddOptions{All: true}); stageError != nil {
		return Result{}, fmt.Errorf(stageChangesTemplateConstant, stageError)
	}

	hash, commitError := worktree.Commit(message, &gitlib.CommitOptions{Author: &author})
	if commitError != nil {
		if errors.Is(commitError, gitlib.ErrEmptyCommit) {
			return Result{}, ErrNothingToCommit
		}
		return Result{}, fmt.Errorf(createCommitTemplateConstant, commitError)
	}

	root := worktree.Filesystem.Root()
	creator.logger.Info(
		commitCreatedMessageConstant,
		zap.String(logFieldHashConstant, hash.String()),
		zap.String(logFieldRepositoryRootConstant, root),
		zap.String(logFieldAuthorConstant, author.Name),
	)
	return Result{RepositoryRoot: root, Hash: hash.String()}, nil
}

// resolveAuthor prefers explicit options and falls back to the merged git configuration.
func resolveAuthor(repository *gitlib.Repository, options Options) (object.Signature, error) {
	name := strings.TrimSpace(options.AuthorName)
	email := strings.TrimSpace(options.AuthorEmail)
	if len(name) > 0 && len(email) > 0 {
		return object.Signature{Name: name, Email: email}, nil
	}

	configuration, configurationError := repository.ConfigScoped(gitconfig.SystemScope)
	if configurationError != nil {
		return object.Signature{}, fmt.Errorf(readConfigurationTemplateConstant, configurationError)
	}
	if len(name) == 0 {
		name = firstNonEmpty(configuration.Author.Name, configuration.User.Name)
	}
	if len(email) == 0 {
		email = firstNonEmpty(configuration.Author.Email, configuration.User.Email)
	}
	if len(name) == 0 || len(email) == 0 {
		return object.Signature{}, ErrAuthorNotConfigured
	}
	return object.Signature{Name: name, Email: email}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
