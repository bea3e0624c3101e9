// Package llm provides a minimal client for OpenAI-compatible chat completion APIs.
package llm
