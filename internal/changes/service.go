package changes

import (
	"context"

	"go.uber.org/zap"
)

const (
	reportGeneratedMessageConstant = "Generated change report"
	logFieldRepositoryRootConstant = "repository_root"
	logFieldBackendConstant        = "backend"
	logFieldReportBytesConstant    = "report_bytes"
)

// RepositoryOpener discovers a repository. Open satisfies it.
type RepositoryOpener func(executionContext context.Context, options OpenOptions) (Repository, error)

// ServiceDependencies enumerates collaborators required to build change reports.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor GitExecutor
	Opener      RepositoryOpener
}

// Options configures a change report.
type Options struct {
	RepositoryPath string
	Backend        Backend
}

// Result captures the scanned entries and the rendered report.
type Result struct {
	RepositoryRoot string
	Entries        []StatusEntry
	Report         ChangeReport
}

// Service scans a repository and classifies its pending changes.
type Service struct {
	logger      *zap.Logger
	gitExecutor GitExecutor
	opener      RepositoryOpener
}

// NewService constructs a Service.
func NewService(dependencies ServiceDependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opener := dependencies.Opener
	if opener == nil {
		opener = Open
	}
	return &Service{logger: logger, gitExecutor: dependencies.GitExecutor, opener: opener}
}

// Report discovers the repository, scans it, and classifies every entry. Only discovery and scan failures are returned.
func (service *Service) Report(executionContext context.Context, options Options) (Result, error) {
	repository, openError := service.opener(executionContext, OpenOptions{
		Path:        options.RepositoryPath,
		Backend:     options.Backend,
		GitExecutor: service.gitExecutor,
	})
	if openError != nil {
		return Result{}, openError
	}

	scanner, scannerError := NewScanner(repository, service.logger)
	if scannerError != nil {
		return Result{}, scannerError
	}
	entries, scanError := scanner.Scan(executionContext)
	if scanError != nil {
		return Result{}, scanError
	}

	classifier, classifierError := NewClassifier(ClassifierDependencies{
		ContentReader: repository,
		DiffSource:    repository,
		Logger:        service.logger,
	})
	if classifierError != nil {
		return Result{}, classifierError
	}
	report := classifier.Classify(executionContext, entries)

	service.logger.Debug(
		reportGeneratedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repository.Root()),
		zap.String(logFieldBackendConstant, string(options.Backend)),
		zap.Int(logFieldEntryCountConstant, len(entries)),
		zap.Int(logFieldReportBytesConstant, len(report)),
	)

	return Result{RepositoryRoot: repository.Root(), Entries: entries, Report: report}, nil
}
