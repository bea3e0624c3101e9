package changes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/utils/binary"

	"github.com/temirov/commitmsg/internal/execshell"
)

const (
	defaultRepositoryPathConstant         = "."
	unsupportedBackendMessageConstant     = "unsupported repository backend"
	unsupportedBackendTemplateConstant    = "%w %q (supported: %s)"
	gitExecutorMissingMessageConstant     = "git executor not configured for the gitcli backend"
	binaryContentMessageConstant          = "file content is binary"
	resolveRepositoryPathTemplateConstant = "failed to resolve repository path %s: %w"
	readWorkingTreeFileTemplateConstant   = "failed to read %s from the working tree: %w"
	detectBinaryContentTemplateConstant   = "failed to inspect %s for binary content: %w"
	emptyPathReadMessageConstant          = "path must be provided"
	backendChoicesSeparatorConstant       = ", "
)

// Backend selects the implementation used to query repository state.
type Backend string

// Supported repository backends.
const (
	BackendNative Backend = "native"
	BackendGitCLI Backend = "gitcli"
)

// SupportedBackends lists the accepted backend names.
func SupportedBackends() []Backend {
	return []Backend{BackendNative, BackendGitCLI}
}

// ParseBackend normalizes a backend name; empty input selects the native backend.
func ParseBackend(raw string) (Backend, error) {
	normalized := Backend(strings.ToLower(strings.TrimSpace(raw)))
	if len(normalized) == 0 {
		return BackendNative, nil
	}
	for _, candidate := range SupportedBackends() {
		if candidate == normalized {
			return candidate, nil
		}
	}
	names := make([]string, 0, len(SupportedBackends()))
	for _, candidate := range SupportedBackends() {
		names = append(names, string(candidate))
	}
	return "", fmt.Errorf(unsupportedBackendTemplateConstant, ErrUnsupportedBackend, raw, strings.Join(names, backendChoicesSeparatorConstant))
}

// ErrUnsupportedBackend indicates an unknown backend name.
var ErrUnsupportedBackend = errors.New(unsupportedBackendMessageConstant)

// ErrGitExecutorNotConfigured indicates the gitcli backend was requested without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrBinaryContent indicates a working tree file holds binary data.
var ErrBinaryContent = errors.New(binaryContentMessageConstant)

// StatusProvider reports the status of every changed path, untracked files included.
type StatusProvider interface {
	Status(executionContext context.Context) ([]StatusEntry, error)
}

// ContentReader reads working tree files; reads fail on missing, unreadable, or binary files.
type ContentReader interface {
	ReadFile(executionContext context.Context, path string) ([]byte, error)
}

// DiffSource computes the index to working tree diff, optionally restricted to paths.
type DiffSource interface {
	Diff(executionContext context.Context, pathFilter ...string) ([]DiffLine, error)
}

// Repository bundles the read-only capabilities the scanner and classifier depend on.
type Repository interface {
	StatusProvider
	ContentReader
	DiffSource
	Root() string
}

// GitExecutor runs git commands for the gitcli backend.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// OpenOptions configures repository discovery.
type OpenOptions struct {
	// Path is where discovery starts; it walks up through parent directories.
	Path        string
	Backend     Backend
	GitExecutor GitExecutor
}

// Open discovers the repository containing options.Path. Discovery failures are *ScanError values.
func Open(executionContext context.Context, options OpenOptions) (Repository, error) {
	startPath := strings.TrimSpace(options.Path)
	if len(startPath) == 0 {
		startPath = defaultRepositoryPathConstant
	}
	absolutePath, absoluteError := filepath.Abs(startPath)
	if absoluteError != nil {
		return nil, newProviderFailureError(startPath, fmt.Errorf(resolveRepositoryPathTemplateConstant, startPath, absoluteError))
	}

	backend, backendError := ParseBackend(string(options.Backend))
	if backendError != nil {
		return nil, backendError
	}

	switch backend {
	case BackendGitCLI:
		if options.GitExecutor == nil {
			return nil, ErrGitExecutorNotConfigured
		}
		return openGitCLIRepository(executionContext, absolutePath, options.GitExecutor)
	default:
		return openNativeRepository(absolutePath)
	}
}

// readTextCandidate reads path from filesystem and rejects binary content.
func readTextCandidate(filesystem billy.Filesystem, path string) ([]byte, error) {
	if len(strings.TrimSpace(path)) == 0 {
		return nil, errors.New(emptyPathReadMessageConstant)
	}
	content, readError := billyutil.ReadFile(filesystem, filepath.ToSlash(path))
	if readError != nil {
		return nil, fmt.Errorf(readWorkingTreeFileTemplateConstant, path, readError)
	}
	isBinary, binaryError := binary.IsBinary(bytes.NewReader(content))
	if binaryError != nil {
		return nil, fmt.Errorf(detectBinaryContentTemplateConstant, path, binaryError)
	}
	if isBinary {
		return nil, fmt.Errorf(readWorkingTreeFileTemplateConstant, path, ErrBinaryContent)
	}
	return content, nil
}
