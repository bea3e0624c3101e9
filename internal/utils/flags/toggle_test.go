package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedValue     bool
		expectedChanged   bool
		expectedPositions []string
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--auto-commit"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--auto-commit", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitTrueUppercase", arguments: []string{"--auto-commit", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--auto-commit", "no"}, expectedValue: false, expectedChanged: true},
		{name: "InlineOff", arguments: []string{"--auto-commit=off"}, expectedValue: false, expectedChanged: true},
		{name: "ShorthandImplicitTrue", arguments: []string{"-a"}, expectedValue: true, expectedChanged: true},
		{name: "ShorthandExplicitNo", arguments: []string{"-a", "no"}, expectedValue: false, expectedChanged: true},
		{
			name:              "PositionalArgumentNotConsumed",
			arguments:         []string{"--auto-commit", "feature.txt"},
			expectedValue:     true,
			expectedChanged:   true,
			expectedPositions: []string{"feature.txt"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "auto-commit", "a", false, "Create a commit")

			parseError := command.ParseFlags(NormalizeToggleArguments(testCase.arguments))
			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedValue, toggleValue)

			registeredFlag := command.Flags().Lookup("auto-commit")
			require.NotNil(t, registeredFlag)
			require.Equal(t, testCase.expectedChanged, registeredFlag.Changed)
			if len(testCase.expectedPositions) > 0 {
				require.Equal(t, testCase.expectedPositions, command.Flags().Args())
			}
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "dry-run", "", false, "Preview")

	parseError := command.ParseFlags(NormalizeToggleArguments([]string{"--dry-run=maybe"}))
	require.Error(t, parseError)
	require.False(t, toggleValue)
}

func TestAddToggleFlagUsageHighlightsDefault(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "enabled", "", true, "Enable the feature")

	registeredFlag := command.Flags().Lookup("enabled")
	require.NotNil(t, registeredFlag)
	require.Equal(t, "`<YES|no>` Enable the feature", registeredFlag.Usage)
	require.True(t, toggleValue)
}

func TestNormalizeToggleArgumentsStopsAtTerminator(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "stop-check", "", false, "Toggle")

	normalized := NormalizeToggleArguments([]string{"--", "--stop-check", "yes"})
	require.Equal(t, []string{"--", "--stop-check", "yes"}, normalized)
}
