package changes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	unknownPathFragmentConstant           = "\nUnknown path"
	addedFragmentTemplateConstant         = "\nNew file: %s\n%s"
	addedFallbackFragmentTemplateConstant = "\nNew file (binary or unreadable): %s"
	deletedFragmentTemplateConstant       = "\nDeleted file: %s"
	renamedFragmentTemplateConstant       = "\nRenamed file: %s"
	contentReaderMissingMessageConstant   = "content reader not configured"
	diffSourceMissingMessageConstant      = "diff source not configured"
	invalidEncodingMessageConstant        = "file content is not valid UTF-8"
	addedContentFallbackMessageConstant   = "Reporting new file without content"
	modifiedDiffOmittedMessageConstant    = "Omitting diff for modified file"
	modifiedDiffFailureMessageConstant    = "Index to worktree diff failed"
	undecodableDiffLinesMessageConstant   = "Dropped undecodable diff lines"
	logFieldSkippedLineCountConstant      = "skipped_lines"
	unknownCategorySkippedMessageConstant = "Skipping entry without a known change category"
)

// ErrContentReaderNotConfigured indicates the classifier was constructed without a content reader.
var ErrContentReaderNotConfigured = errors.New(contentReaderMissingMessageConstant)

// ErrDiffSourceNotConfigured indicates the classifier was constructed without a diff source.
var ErrDiffSourceNotConfigured = errors.New(diffSourceMissingMessageConstant)

var errInvalidEncoding = errors.New(invalidEncodingMessageConstant)

// Categorize derives the single change category for flags using the priority New, Modified, Deleted, Renamed.
func Categorize(flags StatusFlags) ChangeCategory {
	switch {
	case flags.Has(StatusNewInIndex | StatusNewInWorkdir):
		return CategoryAdded
	case flags.Has(StatusModifiedInIndex | StatusModifiedInWorkdir):
		return CategoryModified
	case flags.Has(StatusDeletedInIndex | StatusDeletedInWorkdir):
		return CategoryDeleted
	case flags.Has(StatusRenamedInIndex | StatusRenamedInWorkdir):
		return CategoryRenamed
	default:
		return CategoryUnknown
	}
}

// ClassifierDependencies enumerates the read-only capabilities used while rendering fragments.
type ClassifierDependencies struct {
	ContentReader ContentReader
	DiffSource    DiffSource
	Logger        *zap.Logger
}

// Classifier renders status entries into a change report.
type Classifier struct {
	contentReader ContentReader
	diffSource    DiffSource
	logger        *zap.Logger
}

// NewClassifier constructs a Classifier from its dependencies.
func NewClassifier(dependencies ClassifierDependencies) (*Classifier, error) {
	if dependencies.ContentReader == nil {
		return nil, ErrContentReaderNotConfigured
	}
	if dependencies.DiffSource == nil {
		return nil, ErrDiffSourceNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{contentReader: dependencies.ContentReader, diffSource: dependencies.DiffSource, logger: logger}, nil
}

// Classify renders one fragment per entry in order and concatenates them. It never fails.
func (classifier *Classifier) Classify(executionContext context.Context, entries []StatusEntry) ChangeReport {
	pass := &classificationPass{classifier: classifier, executionContext: executionContext}

	var report strings.Builder
	for _, entry := range entries {
		if len(entry.Path) == 0 {
			report.WriteString(unknownPathFragmentConstant)
			continue
		}
		report.WriteString(pass.render(entry))
	}
	return ChangeReport(report.String())
}

// classificationPass holds state scoped to a single Classify call.
type classificationPass struct {
	classifier       *Classifier
	executionContext context.Context
	diffLoaded       bool
	diffByPath       map[string][]DiffLine
	diffFailure      error
}

type contentResult struct {
	content string
	failure error
}

type diffResult struct {
	lines   []DiffLine
	failure error
}

func (pass *classificationPass) render(entry StatusEntry) string {
	category := Categorize(entry.Flags)
	switch category {
	case CategoryAdded:
		result := pass.readAddedContent(entry.Path)
		if result.failure != nil {
			pass.classifier.logger.Debug(addedContentFallbackMessageConstant, zap.String(logFieldPathConstant, entry.Path), zap.Error(result.failure))
			return fmt.Sprintf(addedFallbackFragmentTemplateConstant, entry.Path)
		}
		return fmt.Sprintf(addedFragmentTemplateConstant, entry.Path, result.content)
	case CategoryModified:
		result := pass.modifiedDiff(entry.Path)
		if result.failure != nil {
			pass.classifier.logger.Debug(modifiedDiffOmittedMessageConstant, zap.String(logFieldPathConstant, entry.Path), zap.Error(result.failure))
			return ""
		}
		return pass.renderDiffLines(entry.Path, result.lines)
	case CategoryDeleted:
		return fmt.Sprintf(deletedFragmentTemplateConstant, entry.Path)
	case CategoryRenamed:
		return fmt.Sprintf(renamedFragmentTemplateConstant, entry.Path)
	default:
		pass.classifier.logger.Debug(unknownCategorySkippedMessageConstant, zap.String(logFieldPathConstant, entry.Path), zap.Stringer(logFieldCategoryConstant, category))
		return ""
	}
}

func (pass *classificationPass) readAddedContent(path string) contentResult {
	content, readError := pass.classifier.contentReader.ReadFile(pass.executionContext, path)
	if readError != nil {
		return contentResult{failure: readError}
	}
	if !utf8.Valid(content) {
		return contentResult{failure: errInvalidEncoding}
	}
	return contentResult{content: string(content)}
}

// modifiedDiff computes the full index to worktree diff once per pass and serves each path from it.
func (pass *classificationPass) modifiedDiff(path string) diffResult {
	if !pass.diffLoaded {
		pass.diffLoaded = true
		diffLines, diffError := pass.classifier.diffSource.Diff(pass.executionContext)
		if diffError != nil {
			pass.classifier.logger.Debug(modifiedDiffFailureMessageConstant, zap.Error(diffError))
			pass.diffFailure = diffError
		} else {
			pass.diffByPath = groupDiffLinesByPath(diffLines)
		}
	}
	if pass.diffFailure != nil {
		return diffResult{failure: pass.diffFailure}
	}
	return diffResult{lines: pass.diffByPath[path]}
}

func groupDiffLinesByPath(diffLines []DiffLine) map[string][]DiffLine {
	grouped := make(map[string][]DiffLine)
	for _, diffLine := range diffLines {
		grouped[diffLine.OldPath] = append(grouped[diffLine.OldPath], diffLine)
	}
	return grouped
}

// renderDiffLines writes the content of the lines whose old path equals path, without origin markers.
// Undecodable lines are dropped.
func (pass *classificationPass) renderDiffLines(path string, diffLines []DiffLine) string {
	var fragment strings.Builder
	skippedLineCount := 0
	for _, diffLine := range diffLines {
		if diffLine.OldPath != path {
			continue
		}
		if !utf8.Valid(diffLine.Content) {
			skippedLineCount++
			continue
		}
		fragment.Write(diffLine.Content)
	}
	if skippedLineCount > 0 {
		pass.classifier.logger.Debug(undecodableDiffLinesMessageConstant, zap.String(logFieldPathConstant, path), zap.Int(logFieldSkippedLineCountConstant, skippedLineCount))
	}
	return fragment.String()
}
