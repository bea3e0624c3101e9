package message

import (
	"strings"
	"time"

	"github.com/temirov/commitmsg/pkg/llm"
)

const (
	defaultAPIKeySourceConstant          = "OPENAI_API_KEY"
	configurationAPIKeySourceKeyConstant = "api_key_source"
	configurationBaseURLKeyConstant      = "base_url"
	configurationModelKeyConstant        = "model"
	configurationMaxTokensKeyConstant    = "max_tokens"
	configurationTimeoutKeyConstant      = "timeout_seconds"
	configurationAutoCommitKeyConstant   = "auto_commit"
	configurationAuthorNameKeyConstant   = "author_name"
	configurationAuthorEmailKeyConstant  = "author_email"
)

// CommandConfiguration captures configuration values for the message command.
type CommandConfiguration struct {
	APIKeySource   string `mapstructure:"api_key_source"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	AutoCommit     bool   `mapstructure:"auto_commit"`
	AuthorName     string `mapstructure:"author_name"`
	AuthorEmail    string `mapstructure:"author_email"`
}

// DefaultCommandConfiguration provides baseline configuration values for the message command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		APIKeySource:   defaultAPIKeySourceConstant,
		BaseURL:        llm.DefaultBaseURL,
		Model:          llm.DefaultModel,
		MaxTokens:      llm.DefaultMaxCompletionTokens,
		TimeoutSeconds: int(llm.DefaultTimeout / time.Second),
		AutoCommit:     false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the message command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationAPIKeySourceKeyConstant: defaults.APIKeySource,
		rootKey + "." + configurationBaseURLKeyConstant:      defaults.BaseURL,
		rootKey + "." + configurationModelKeyConstant:        defaults.Model,
		rootKey + "." + configurationMaxTokensKeyConstant:    defaults.MaxTokens,
		rootKey + "." + configurationTimeoutKeyConstant:      defaults.TimeoutSeconds,
		rootKey + "." + configurationAutoCommitKeyConstant:   defaults.AutoCommit,
		rootKey + "." + configurationAuthorNameKeyConstant:   defaults.AuthorName,
		rootKey + "." + configurationAuthorEmailKeyConstant:  defaults.AuthorEmail,
	}
}

// Sanitize trims configuration values and restores defaults for empty or non-positive fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.APIKeySource = strings.TrimSpace(configuration.APIKeySource)
	if len(sanitized.APIKeySource) == 0 {
		sanitized.APIKeySource = defaults.APIKeySource
	}
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = defaults.BaseURL
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)
	if len(sanitized.Model) == 0 {
		sanitized.Model = defaults.Model
	}
	if sanitized.MaxTokens <= 0 {
		sanitized.MaxTokens = defaults.MaxTokens
	}
	if sanitized.TimeoutSeconds <= 0 {
		sanitized.TimeoutSeconds = defaults.TimeoutSeconds
	}
	sanitized.AuthorName = strings.TrimSpace(configuration.AuthorName)
	sanitized.AuthorEmail = strings.TrimSpace(configuration.AuthorEmail)

	return sanitized
}

// Timeout converts the configured timeout into a duration.
func (configuration CommandConfiguration) Timeout() time.Duration {
	return time.Duration(configuration.TimeoutSeconds) * time.Second
}
