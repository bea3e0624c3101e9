package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/commitmsg/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/committer"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "BareTilde", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "TildeSlash", candidate: "~/projects/app", expectedPath: filepath.Join(testHomeDirectoryConstant, "projects/app")},
		{name: "SurroundingWhitespace", candidate: "  ~/secrets/openai \n", expectedPath: filepath.Join(testHomeDirectoryConstant, "secrets/openai")},
		{name: "Relative", candidate: "repo", expectedPath: "repo"},
		{name: "Absolute", candidate: "/srv/repo", expectedPath: "/srv/repo"},
		{name: "OtherUser", candidate: "~bob/repo", expectedPath: "~bob/repo"},
		{name: "Empty", candidate: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderLeavesPathWhenHomeUnavailable(testInstance *testing.T) {
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return "", errors.New("no home")
	})

	require.Equal(testInstance, "~/repo", expander.Expand("~/repo"))
	require.Equal(testInstance, "~", expander.Expand("~"))
	require.Equal(testInstance, 1, lookupCount)
}
