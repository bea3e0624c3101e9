// Package message turns a change report into a Conventional Commits message.
//
// The message command scans the repository through internal/changes, wraps
// the report in fixed instructions, and sends it as one user message to a
// chat completion API through pkg/llm. The api key is read from an
// environment variable or a file named by the api_key_source setting. When
// auto-commit is enabled the generated message is committed through
// internal/commit.
package message
