package message

import "github.com/temirov/commitmsg/internal/changes"

const (
	promptInstructionsConstant = `You are an AI that generates concise commit messages in the Conventional Commits format.
Analyze the provided ` + "`git diff`" + ` and summarize the changes into a single commit message.
Follow the Conventional Commits format with one of these prefixes: feat, fix, style, refactor, test, chore, or docs.
Keep the message concise and relevant.

Examples:
1. feat: add user authentication feature
2. fix: resolve crash on startup
3. style: update button styling for consistency
4. docs: add documentation for API endpoints

Git diff:`
	promptSeparatorConstant = "\n\n"
)

// BuildPrompt joins the Conventional Commits instructions and the change report.
func BuildPrompt(report changes.ChangeReport) string {
	return promptInstructionsConstant + promptSeparatorConstant + string(report)
}
