package changes

import (
	"errors"
	"fmt"
	"strings"
)

const (
	notARepositoryMessageConstant          = "not a git repository"
	providerFailureMessageConstant         = "status provider failure"
	scanErrorWithPathTemplateConstant      = "%s: %s"
	scanErrorWithCauseTemplateConstant     = "%s: %v"
	scanErrorWithPathCauseTemplateConstant = "%s: %s: %v"
	unknownCategoryLabelConstant           = "unknown"
	addedCategoryLabelConstant             = "added"
	modifiedCategoryLabelConstant          = "modified"
	deletedCategoryLabelConstant           = "deleted"
	renamedCategoryLabelConstant           = "renamed"
)

// StatusFlags is the set of index and working tree status bits reported for a path.
type StatusFlags uint16

// Status bits reported by a status provider.
const (
	StatusNewInIndex StatusFlags = 1 << iota
	StatusNewInWorkdir
	StatusModifiedInIndex
	StatusModifiedInWorkdir
	StatusDeletedInIndex
	StatusDeletedInWorkdir
	StatusRenamedInIndex
	StatusRenamedInWorkdir
)

// Has reports whether any bit of mask is set.
func (flags StatusFlags) Has(mask StatusFlags) bool {
	return flags&mask != 0
}

// StatusEntry is one path reported by a status scan.
type StatusEntry struct {
	// Path is repository relative; empty when the provider could not resolve it.
	Path string
	// OriginalPath is the rename source when the provider reports one.
	OriginalPath string
	Flags        StatusFlags
}

// ChangeCategory is the single kind of change assigned to a status entry.
type ChangeCategory int

// Change categories in ascending priority of evaluation.
const (
	CategoryUnknown ChangeCategory = iota
	CategoryAdded
	CategoryModified
	CategoryDeleted
	CategoryRenamed
)

// String returns the lowercase category label.
func (category ChangeCategory) String() string {
	switch category {
	case CategoryAdded:
		return addedCategoryLabelConstant
	case CategoryModified:
		return modifiedCategoryLabelConstant
	case CategoryDeleted:
		return deletedCategoryLabelConstant
	case CategoryRenamed:
		return renamedCategoryLabelConstant
	default:
		return unknownCategoryLabelConstant
	}
}

// ChangeReport is the concatenated description of every classified entry.
type ChangeReport string

// IsEmpty reports whether the report carries no visible text.
func (report ChangeReport) IsEmpty() bool {
	return len(strings.TrimSpace(string(report))) == 0
}

// DiffLineOrigin tags a diff line the way git patch output does.
type DiffLineOrigin byte

// Diff line origins. Content origins are rendered as a prefix marker; header origins are rendered verbatim.
const (
	DiffLineContext    DiffLineOrigin = ' '
	DiffLineAddition   DiffLineOrigin = '+'
	DiffLineDeletion   DiffLineOrigin = '-'
	DiffLineFileHeader DiffLineOrigin = 'F'
	DiffLineHunkHeader DiffLineOrigin = 'H'
	DiffLineBinary     DiffLineOrigin = 'B'
	DiffLineNoNewline  DiffLineOrigin = '\\'
)

// IsContent reports whether the origin denotes a context, added, or removed line.
func (origin DiffLineOrigin) IsContent() bool {
	return origin == DiffLineContext || origin == DiffLineAddition || origin == DiffLineDeletion
}

// DiffLine is one line of an index to working tree diff.
type DiffLine struct {
	OldPath string
	Origin  DiffLineOrigin
	Content []byte
}

// ScanErrorKind distinguishes hard status scan failures.
type ScanErrorKind int

// Scan error kinds.
const (
	ScanErrorProviderFailure ScanErrorKind = iota
	ScanErrorNotARepository
)

// ErrNotARepository matches scan errors raised when no repository could be discovered.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrProviderFailure matches scan errors raised by a failing status provider.
var ErrProviderFailure = errors.New(providerFailureMessageConstant)

// ScanError reports a failure that aborts the whole change report.
type ScanError struct {
	Kind  ScanErrorKind
	Path  string
	Cause error
}

// Error describes the scan failure.
func (scanError *ScanError) Error() string {
	label := scanError.sentinel().Error()
	trimmedPath := strings.TrimSpace(scanError.Path)
	switch {
	case len(trimmedPath) > 0 && scanError.Cause != nil:
		return fmt.Sprintf(scanErrorWithPathCauseTemplateConstant, label, trimmedPath, scanError.Cause)
	case len(trimmedPath) > 0:
		return fmt.Sprintf(scanErrorWithPathTemplateConstant, label, trimmedPath)
	case scanError.Cause != nil:
		return fmt.Sprintf(scanErrorWithCauseTemplateConstant, label, scanError.Cause)
	default:
		return label
	}
}

// Unwrap exposes the underlying cause.
func (scanError *ScanError) Unwrap() error {
	return scanError.Cause
}

// Is matches the sentinel corresponding to the error kind.
func (scanError *ScanError) Is(target error) bool {
	return target == scanError.sentinel()
}

func (scanError *ScanError) sentinel() error {
	if scanError.Kind == ScanErrorNotARepository {
		return ErrNotARepository
	}
	return ErrProviderFailure
}

func newNotARepositoryError(path string, cause error) error {
	return &ScanError{Kind: ScanErrorNotARepository, Path: path, Cause: cause}
}

func newProviderFailureError(path string, cause error) error {
	return &ScanError{Kind: ScanErrorProviderFailure, Path: path, Cause: cause}
}
