package changes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	billyutil "github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/binary"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	nativeOpenRepositoryTemplateConstant = "failed to open repository: %w"
	nativeOpenWorktreeTemplateConstant   = "failed to open worktree: %w"
	nativeStatusTemplateConstant         = "failed to read worktree status: %w"
	nativeIndexTemplateConstant          = "failed to read index: %w"
	nativeHeadTreeTemplateConstant       = "failed to read HEAD tree: %w"
	nativeIndexBlobTemplateConstant      = "failed to read index blob for %s: %w"
	nativeWorktreeFileTemplateConstant   = "failed to read worktree file %s: %w"
	nativeUnifiedDiffTemplateConstant    = "failed to compute diff for %s: %w"
	nativeDiffHeaderTemplateConstant     = "diff --git a/%s b/%s\n"
	nativeDeletedModeTemplateConstant    = "deleted file mode %06o\n"
	nativeBinaryLineTemplateConstant     = "Binary files a/%s and b/%s differ\n"
	nativeOldFileLabelTemplateConstant   = "a/%s"
	nativeNewFileLabelTemplateConstant   = "b/%s"
	nativeDiffContextLinesConstant       = 3
)

type nativeRepository struct {
	root       string
	repository *gitlib.Repository
	worktree   *gitlib.Worktree
}

func openNativeRepository(startPath string) (Repository, error) {
	repository, openError := gitlib.PlainOpenWithOptions(startPath, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		if errors.Is(openError, gitlib.ErrRepositoryNotExists) {
			return nil, newNotARepositoryError(startPath, openError)
		}
		return nil, newProviderFailureError(startPath, fmt.Errorf(nativeOpenRepositoryTemplateConstant, openError))
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		if errors.Is(worktreeError, gitlib.ErrIsBareRepository) {
			return nil, newNotARepositoryError(startPath, worktreeError)
		}
		return nil, newProviderFailureError(startPath, fmt.Errorf(nativeOpenWorktreeTemplateConstant, worktreeError))
	}

	return &nativeRepository{root: worktree.Filesystem.Root(), repository: repository, worktree: worktree}, nil
}

func (repository *nativeRepository) Root() string {
	return repository.root
}

// Status maps go-git file statuses onto status flags. go-git reports an unordered map, so paths are sorted.
func (repository *nativeRepository) Status(executionContext context.Context) ([]StatusEntry, error) {
	worktreeStatus, statusError := repository.worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(nativeStatusTemplateConstant, statusError)
	}

	paths := make([]string, 0, len(worktreeStatus))
	for path := range worktreeStatus {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	entries := make([]StatusEntry, 0, len(paths))
	for _, path := range paths {
		fileStatus := worktreeStatus[path]
		if fileStatus == nil {
			continue
		}
		if fileStatus.Staging == gitlib.Unmodified && fileStatus.Worktree == gitlib.Unmodified {
			continue
		}
		entries = append(entries, StatusEntry{Path: path, Flags: nativeStatusFlags(fileStatus)})
	}
	return repository.pairExactRenames(entries, worktreeStatus)
}

// pairExactRenames folds a staged deletion and a staged addition of the same blob into one renamed entry.
// go-git never reports renames itself.
func (repository *nativeRepository) pairExactRenames(entries []StatusEntry, worktreeStatus gitlib.Status) ([]StatusEntry, error) {
	var deletedPositions []int
	addedPositionsByHash := make(map[plumbing.Hash][]int)
	index, indexError := repository.repository.Storer.Index()
	if indexError != nil {
		return nil, fmt.Errorf(nativeIndexTemplateConstant, indexError)
	}
	for position, entry := range entries {
		fileStatus := worktreeStatus[entry.Path]
		switch {
		case fileStatus.Staging == gitlib.Deleted && fileStatus.Worktree == gitlib.Unmodified:
			deletedPositions = append(deletedPositions, position)
		case fileStatus.Staging == gitlib.Added:
			indexEntry, entryError := index.Entry(entry.Path)
			if entryError != nil {
				continue
			}
			addedPositionsByHash[indexEntry.Hash] = append(addedPositionsByHash[indexEntry.Hash], position)
		}
	}
	if len(deletedPositions) == 0 || len(addedPositionsByHash) == 0 {
		return entries, nil
	}

	headTree, treeError := repository.headTree()
	if treeError != nil {
		return nil, treeError
	}
	if headTree == nil {
		return entries, nil
	}

	pairedPositions := make(map[int]struct{})
	for _, deletedPosition := range deletedPositions {
		deletedPath := entries[deletedPosition].Path
		headFile, fileError := headTree.File(deletedPath)
		if fileError != nil {
			continue
		}
		candidatePositions := addedPositionsByHash[headFile.Hash]
		if len(candidatePositions) == 0 {
			continue
		}
		addedPosition := candidatePositions[0]
		addedPositionsByHash[headFile.Hash] = candidatePositions[1:]

		entries[addedPosition].Flags = entries[addedPosition].Flags&^StatusNewInIndex | StatusRenamedInIndex
		entries[addedPosition].OriginalPath = deletedPath
		pairedPositions[deletedPosition] = struct{}{}
	}

	pairedEntries := make([]StatusEntry, 0, len(entries)-len(pairedPositions))
	for position, entry := range entries {
		if _, paired := pairedPositions[position]; paired {
			continue
		}
		pairedEntries = append(pairedEntries, entry)
	}
	return pairedEntries, nil
}

// headTree returns nil without an error when HEAD is unborn.
func (repository *nativeRepository) headTree() (*object.Tree, error) {
	head, headError := repository.repository.Head()
	if errors.Is(headError, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if headError != nil {
		return nil, fmt.Errorf(nativeHeadTreeTemplateConstant, headError)
	}
	commit, commitError := repository.repository.CommitObject(head.Hash())
	if commitError != nil {
		return nil, fmt.Errorf(nativeHeadTreeTemplateConstant, commitError)
	}
	tree, treeError := commit.Tree()
	if treeError != nil {
		return nil, fmt.Errorf(nativeHeadTreeTemplateConstant, treeError)
	}
	return tree, nil
}

func nativeStatusFlags(fileStatus *gitlib.FileStatus) StatusFlags {
	var flags StatusFlags
	switch fileStatus.Staging {
	case gitlib.Added:
		flags |= StatusNewInIndex
	case gitlib.Modified:
		flags |= StatusModifiedInIndex
	case gitlib.Deleted:
		flags |= StatusDeletedInIndex
	}
	switch fileStatus.Worktree {
	case gitlib.Untracked, gitlib.Added:
		flags |= StatusNewInWorkdir
	case gitlib.Modified:
		flags |= StatusModifiedInWorkdir
	case gitlib.Deleted:
		flags |= StatusDeletedInWorkdir
	}
	return flags
}

func (repository *nativeRepository) ReadFile(executionContext context.Context, path string) ([]byte, error) {
	return readTextCandidate(repository.worktree.Filesystem, path)
}

// Diff compares index blobs against worktree files for every path modified or deleted in the worktree.
func (repository *nativeRepository) Diff(executionContext context.Context, pathFilter ...string) ([]DiffLine, error) {
	worktreeStatus, statusError := repository.worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(nativeStatusTemplateConstant, statusError)
	}
	index, indexError := repository.repository.Storer.Index()
	if indexError != nil {
		return nil, fmt.Errorf(nativeIndexTemplateConstant, indexError)
	}

	allowedPaths := make(map[string]struct{}, len(pathFilter))
	for _, path := range pathFilter {
		allowedPaths[path] = struct{}{}
	}

	var candidatePaths []string
	for path, fileStatus := range worktreeStatus {
		if fileStatus.Worktree != gitlib.Modified && fileStatus.Worktree != gitlib.Deleted {
			continue
		}
		if len(allowedPaths) > 0 {
			if _, allowed := allowedPaths[path]; !allowed {
				continue
			}
		}
		candidatePaths = append(candidatePaths, path)
	}
	sort.Strings(candidatePaths)

	var patch strings.Builder
	for _, path := range candidatePaths {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		filePatch, patchError := repository.filePatch(index, path)
		if patchError != nil {
			return nil, patchError
		}
		patch.WriteString(filePatch)
	}
	return parsePatch(patch.String()), nil
}

func (repository *nativeRepository) filePatch(index *gitindex.Index, path string) (string, error) {
	stagedBlob, indexFound, indexError := repository.indexBlob(index, path)
	if indexError != nil {
		return "", indexError
	}
	worktreeContent, worktreeFound, worktreeError := repository.worktreeContent(path)
	if worktreeError != nil {
		return "", worktreeError
	}
	if !indexFound && !worktreeFound {
		return "", nil
	}

	var patch strings.Builder
	fmt.Fprintf(&patch, nativeDiffHeaderTemplateConstant, path, path)
	if !worktreeFound {
		fmt.Fprintf(&patch, nativeDeletedModeTemplateConstant, uint32(stagedBlob.mode))
	}

	if isBinaryContent(stagedBlob.content) || isBinaryContent(worktreeContent) {
		fmt.Fprintf(&patch, nativeBinaryLineTemplateConstant, path, path)
		return patch.String(), nil
	}

	toLabel := fmt.Sprintf(nativeNewFileLabelTemplateConstant, path)
	if !worktreeFound {
		toLabel = devNullPathConstant
	}
	unifiedDiff := difflib.UnifiedDiff{
		A:        splitContentLines(stagedBlob.content),
		B:        splitContentLines(worktreeContent),
		FromFile: fmt.Sprintf(nativeOldFileLabelTemplateConstant, path),
		ToFile:   toLabel,
		Context:  nativeDiffContextLinesConstant,
	}
	diffText, diffError := difflib.GetUnifiedDiffString(unifiedDiff)
	if diffError != nil {
		return "", fmt.Errorf(nativeUnifiedDiffTemplateConstant, path, diffError)
	}
	patch.WriteString(diffText)
	return patch.String(), nil
}

type indexedBlob struct {
	mode    filemode.FileMode
	content []byte
}

func (repository *nativeRepository) indexBlob(index *gitindex.Index, path string) (indexedBlob, bool, error) {
	entry, entryError := index.Entry(path)
	if errors.Is(entryError, gitindex.ErrEntryNotFound) {
		return indexedBlob{}, false, nil
	}
	if entryError != nil {
		return indexedBlob{}, false, fmt.Errorf(nativeIndexBlobTemplateConstant, path, entryError)
	}
	blob, blobError := object.GetBlob(repository.repository.Storer, entry.Hash)
	if blobError != nil {
		return indexedBlob{}, false, fmt.Errorf(nativeIndexBlobTemplateConstant, path, blobError)
	}
	reader, readerError := blob.Reader()
	if readerError != nil {
		return indexedBlob{}, false, fmt.Errorf(nativeIndexBlobTemplateConstant, path, readerError)
	}
	defer reader.Close()
	content, readError := io.ReadAll(reader)
	if readError != nil {
		return indexedBlob{}, false, fmt.Errorf(nativeIndexBlobTemplateConstant, path, readError)
	}
	return indexedBlob{mode: entry.Mode, content: content}, true, nil
}

func (repository *nativeRepository) worktreeContent(path string) ([]byte, bool, error) {
	content, readError := billyutil.ReadFile(repository.worktree.Filesystem, path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf(nativeWorktreeFileTemplateConstant, path, readError)
	}
	return content, true, nil
}

func isBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	isBinary, binaryError := binary.IsBinary(bytes.NewReader(content))
	return binaryError == nil && isBinary
}

// splitContentLines splits content into newline-terminated lines without a trailing empty element.
func splitContentLines(content []byte) []string {
	lines := splitPatchLines(string(content))
	if len(lines) > 0 && !strings.HasSuffix(lines[len(lines)-1], lineTerminatorConstant) {
		lines[len(lines)-1] += lineTerminatorConstant
	}
	return lines
}
