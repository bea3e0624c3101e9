package changes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/commitmsg/internal/changes"
)

const (
	testCaseNameTemplateConstant = "%d_%s"
)

func TestCategorizeAppliesPriorityOrder(testInstance *testing.T) {
	testCases := []struct {
		name             string
		flags            changes.StatusFlags
		expectedCategory changes.ChangeCategory
	}{
		{name: "new_in_index", flags: changes.StatusNewInIndex, expectedCategory: changes.CategoryAdded},
		{name: "new_in_workdir", flags: changes.StatusNewInWorkdir, expectedCategory: changes.CategoryAdded},
		{name: "new_and_modified", flags: changes.StatusNewInIndex | changes.StatusModifiedInWorkdir, expectedCategory: changes.CategoryAdded},
		{name: "modified_in_index", flags: changes.StatusModifiedInIndex, expectedCategory: changes.CategoryModified},
		{name: "modified_and_deleted", flags: changes.StatusModifiedInIndex | changes.StatusDeletedInWorkdir, expectedCategory: changes.CategoryModified},
		{name: "deleted_in_workdir", flags: changes.StatusDeletedInWorkdir, expectedCategory: changes.CategoryDeleted},
		{name: "deleted_and_renamed", flags: changes.StatusDeletedInIndex | changes.StatusRenamedInWorkdir, expectedCategory: changes.CategoryDeleted},
		{name: "renamed_in_index", flags: changes.StatusRenamedInIndex, expectedCategory: changes.CategoryRenamed},
		{name: "renamed_in_workdir", flags: changes.StatusRenamedInWorkdir, expectedCategory: changes.CategoryRenamed},
		{name: "no_flags", flags: 0, expectedCategory: changes.CategoryUnknown},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedCategory, changes.Categorize(testCase.flags))
		})
	}
}

func TestClassifyScenarios(testInstance *testing.T) {
	testCases := []struct {
		name           string
		repository     *fakeRepository
		entries        []changes.StatusEntry
		expectedReport changes.ChangeReport
	}{
		{
			name:           "new_readable_file",
			repository:     &fakeRepository{fileContents: map[string][]byte{"foo.txt": []byte("hello")}},
			entries:        []changes.StatusEntry{{Path: "foo.txt", Flags: changes.StatusNewInWorkdir}},
			expectedReport: "\nNew file: foo.txt\nhello",
		},
		{
			name:           "deleted_file",
			repository:     &fakeRepository{},
			entries:        []changes.StatusEntry{{Path: "bar.txt", Flags: changes.StatusDeletedInWorkdir}},
			expectedReport: "\nDeleted file: bar.txt",
		},
		{
			name:           "renamed_file",
			repository:     &fakeRepository{},
			entries:        []changes.StatusEntry{{Path: "baz.txt", OriginalPath: "old.txt", Flags: changes.StatusRenamedInIndex}},
			expectedReport: "\nRenamed file: baz.txt",
		},
		{
			name:           "unknown_path",
			repository:     &fakeRepository{},
			entries:        []changes.StatusEntry{{Path: "", Flags: changes.StatusModifiedInWorkdir}},
			expectedReport: "\nUnknown path",
		},
		{
			name:           "new_and_modified_is_added",
			repository:     &fakeRepository{fileContents: map[string][]byte{"both.txt": []byte("content")}, diffLines: []changes.DiffLine{diffLine("both.txt", changes.DiffLineAddition, "content\n")}},
			entries:        []changes.StatusEntry{{Path: "both.txt", Flags: changes.StatusNewInIndex | changes.StatusModifiedInWorkdir}},
			expectedReport: "\nNew file: both.txt\ncontent",
		},
		{
			name:           "unreadable_new_file",
			repository:     &fakeRepository{},
			entries:        []changes.StatusEntry{{Path: "missing.bin", Flags: changes.StatusNewInWorkdir}},
			expectedReport: "\nNew file (binary or unreadable): missing.bin",
		},
		{
			name:           "invalid_utf8_new_file",
			repository:     &fakeRepository{fileContents: map[string][]byte{"latin1.txt": {0x63, 0x61, 0x66, 0xe9}}},
			entries:        []changes.StatusEntry{{Path: "latin1.txt", Flags: changes.StatusNewInIndex}},
			expectedReport: "\nNew file (binary or unreadable): latin1.txt",
		},
		{
			name:           "unknown_category_skipped",
			repository:     &fakeRepository{},
			entries:        []changes.StatusEntry{{Path: "conflicted.txt"}, {Path: "gone.txt", Flags: changes.StatusDeletedInIndex}},
			expectedReport: "\nDeleted file: gone.txt",
		},
		{
			name:           "empty_entries",
			repository:     &fakeRepository{},
			entries:        nil,
			expectedReport: "",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			classifier, classifierError := newTestClassifier(testCase.repository)
			require.NoError(testInstance, classifierError)

			report := classifier.Classify(context.Background(), testCase.entries)
			require.Equal(testInstance, testCase.expectedReport, report)
		})
	}
}

func TestClassifyModifiedFileKeepsOnlyMatchingDiffLines(testInstance *testing.T) {
	repository := &fakeRepository{
		diffLines: []changes.DiffLine{
			diffLine("other.txt", changes.DiffLineFileHeader, "diff --git a/other.txt b/other.txt\n"),
			diffLine("other.txt", changes.DiffLineAddition, "foreign\n"),
			diffLine("app.go", changes.DiffLineFileHeader, "diff --git a/app.go b/app.go\n"),
			diffLine("app.go", changes.DiffLineHunkHeader, "@@ -1,2 +1,2 @@\n"),
			diffLine("app.go", changes.DiffLineContext, "package app\n"),
			diffLine("app.go", changes.DiffLineDeletion, "var x = 1\n"),
			diffLine("app.go", changes.DiffLineAddition, "var x = 2\n"),
			diffLine("other.txt", changes.DiffLineDeletion, "also foreign\n"),
		},
	}
	classifier, classifierError := newTestClassifier(repository)
	require.NoError(testInstance, classifierError)

	report := classifier.Classify(context.Background(), []changes.StatusEntry{{Path: "app.go", Flags: changes.StatusModifiedInWorkdir}})

	require.Equal(testInstance, changes.ChangeReport("diff --git a/app.go b/app.go\n@@ -1,2 +1,2 @@\npackage app\nvar x = 1\nvar x = 2\n"), report)
	require.NotContains(testInstance, string(report), "foreign")
}

func TestClassifyComputesDiffOncePerPass(testInstance *testing.T) {
	repository := &fakeRepository{
		diffLines: []changes.DiffLine{
			diffLine("a.txt", changes.DiffLineAddition, "a\n"),
			diffLine("b.txt", changes.DiffLineDeletion, "b\n"),
		},
	}
	classifier, classifierError := newTestClassifier(repository)
	require.NoError(testInstance, classifierError)

	entries := []changes.StatusEntry{
		{Path: "a.txt", Flags: changes.StatusModifiedInWorkdir},
		{Path: "b.txt", Flags: changes.StatusModifiedInIndex},
	}

	require.Equal(testInstance, changes.ChangeReport("a\nb\n"), classifier.Classify(context.Background(), entries))
	require.Equal(testInstance, 1, repository.diffCallCount)
	require.Empty(testInstance, repository.recordedFilter[0])

	classifier.Classify(context.Background(), []changes.StatusEntry{{Path: "deleted.txt", Flags: changes.StatusDeletedInWorkdir}})
	require.Equal(testInstance, 1, repository.diffCallCount)
}

func TestClassifyOmitsModifiedFileWhenDiffFails(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	repository := &fakeRepository{diffError: errors.New("index locked")}
	classifier, classifierError := changes.NewClassifier(changes.ClassifierDependencies{
		ContentReader: repository,
		DiffSource:    repository,
		Logger:        zap.New(observerCore),
	})
	require.NoError(testInstance, classifierError)

	report := classifier.Classify(context.Background(), []changes.StatusEntry{
		{Path: "modified.txt", Flags: changes.StatusModifiedInWorkdir},
		{Path: "gone.txt", Flags: changes.StatusDeletedInWorkdir},
	})

	require.Equal(testInstance, changes.ChangeReport("\nDeleted file: gone.txt"), report)
	require.NotEmpty(testInstance, observedLogs.FilterMessage("Omitting diff for modified file").All())
}

func TestClassifyDropsUndecodableDiffLines(testInstance *testing.T) {
	repository := &fakeRepository{
		diffLines: []changes.DiffLine{
			diffLine("notes.txt", changes.DiffLineHunkHeader, "@@ -1 +1 @@\n"),
			{OldPath: "notes.txt", Origin: changes.DiffLineDeletion, Content: []byte{0xff, 0xfe, '\n'}},
			diffLine("notes.txt", changes.DiffLineAddition, "valid\n"),
		},
	}
	classifier, classifierError := newTestClassifier(repository)
	require.NoError(testInstance, classifierError)

	report := classifier.Classify(context.Background(), []changes.StatusEntry{{Path: "notes.txt", Flags: changes.StatusModifiedInWorkdir}})

	require.Equal(testInstance, changes.ChangeReport("@@ -1 +1 @@\nvalid\n"), report)
}

func TestClassifyIsIdempotent(testInstance *testing.T) {
	repository := &fakeRepository{
		fileContents: map[string][]byte{"new.txt": []byte("fresh\n")},
		diffLines:    []changes.DiffLine{diffLine("mod.txt", changes.DiffLineAddition, "line\n")},
	}
	classifier, classifierError := newTestClassifier(repository)
	require.NoError(testInstance, classifierError)

	entries := []changes.StatusEntry{
		{Path: "new.txt", Flags: changes.StatusNewInWorkdir},
		{Path: "mod.txt", Flags: changes.StatusModifiedInWorkdir},
		{Path: "", Flags: changes.StatusDeletedInIndex},
		{Path: "old.txt", Flags: changes.StatusDeletedInWorkdir},
		{Path: "moved.txt", Flags: changes.StatusRenamedInIndex},
	}

	firstReport := classifier.Classify(context.Background(), entries)
	secondReport := classifier.Classify(context.Background(), entries)

	require.Equal(testInstance, firstReport, secondReport)
	require.Equal(testInstance, changes.ChangeReport("\nNew file: new.txt\nfresh\nline\n\nUnknown path\nDeleted file: old.txt\nRenamed file: moved.txt"), firstReport)
}

func TestClassifyEmitsOneFragmentPerKnownEntry(testInstance *testing.T) {
	entries := []changes.StatusEntry{
		{Path: "a.txt", Flags: changes.StatusDeletedInIndex},
		{Path: "", Flags: changes.StatusNewInIndex},
		{Path: "b.txt", Flags: changes.StatusRenamedInWorkdir},
		{Path: "c.txt"},
		{Path: "", Flags: 0},
		{Path: "d.txt", Flags: changes.StatusNewInWorkdir},
	}
	classifier, classifierError := newTestClassifier(&fakeRepository{})
	require.NoError(testInstance, classifierError)

	report := string(classifier.Classify(context.Background(), entries))

	require.Equal(testInstance, "\nDeleted file: a.txt\nUnknown path\nRenamed file: b.txt\nUnknown path\nNew file (binary or unreadable): d.txt", report)
}

func TestNewClassifierValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  changes.ClassifierDependencies
		expectedError error
	}{
		{
			name:          "missing_content_reader",
			dependencies:  changes.ClassifierDependencies{DiffSource: &fakeRepository{}},
			expectedError: changes.ErrContentReaderNotConfigured,
		},
		{
			name:          "missing_diff_source",
			dependencies:  changes.ClassifierDependencies{ContentReader: &fakeRepository{}},
			expectedError: changes.ErrDiffSourceNotConfigured,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testCaseNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, creationError := changes.NewClassifier(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
		})
	}
}
