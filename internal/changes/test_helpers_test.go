package changes_test

import (
	"context"
	"errors"

	"github.com/temirov/commitmsg/internal/changes"
)

var errFakeUnreadable = errors.New("permission denied")

type fakeRepository struct {
	root           string
	entries        []changes.StatusEntry
	statusError    error
	fileContents   map[string][]byte
	diffLines      []changes.DiffLine
	diffError      error
	diffCallCount  int
	readCallCount  int
	recordedFilter [][]string
}

func (repository *fakeRepository) Root() string {
	return repository.root
}

func (repository *fakeRepository) Status(context.Context) ([]changes.StatusEntry, error) {
	if repository.statusError != nil {
		return nil, repository.statusError
	}
	return repository.entries, nil
}

func (repository *fakeRepository) ReadFile(_ context.Context, path string) ([]byte, error) {
	repository.readCallCount++
	content, exists := repository.fileContents[path]
	if !exists {
		return nil, errFakeUnreadable
	}
	return content, nil
}

func (repository *fakeRepository) Diff(_ context.Context, pathFilter ...string) ([]changes.DiffLine, error) {
	repository.diffCallCount++
	repository.recordedFilter = append(repository.recordedFilter, pathFilter)
	if repository.diffError != nil {
		return nil, repository.diffError
	}
	return repository.diffLines, nil
}

func diffLine(path string, origin changes.DiffLineOrigin, content string) changes.DiffLine {
	return changes.DiffLine{OldPath: path, Origin: origin, Content: []byte(content)}
}

func newTestClassifier(repository *fakeRepository) (*changes.Classifier, error) {
	return changes.NewClassifier(changes.ClassifierDependencies{ContentReader: repository, DiffSource: repository})
}
