package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultMaxCompletionTokens bounds the generated completion length.
	DefaultMaxCompletionTokens = 150

	// DefaultTimeout bounds a single chat completion request.
	DefaultTimeout = 60 * time.Second
)

// RoleUser marks a chat message authored by the caller.
const RoleUser = "user"

const (
	chatCompletionsPathConstant         = "/chat/completions"
	jsonContentTypeConstant             = "application/json"
	contentTypeHeaderConstant           = "Content-Type"
	apiKeyRequiredMessageConstant       = "api key is required"
	emptyResponseMessageConstant        = "chat completion returned no content"
	messagesRequiredMessageConstant     = "chat request must contain at least one message"
	requestFailedTemplateConstant       = "chat completion request failed: %w"
	apiErrorTemplateConstant            = "chat completion API returned status %d: %s"
	apiErrorWithoutBodyTemplateConstant = "chat completion API returned status %d"
)

// ErrAPIKeyRequired indicates the client was configured without credentials.
var ErrAPIKeyRequired = errors.New(apiKeyRequiredMessageConstant)

// ErrEmptyResponse indicates the API responded without a usable choice.
var ErrEmptyResponse = errors.New(emptyResponseMessageConstant)

// ErrMessagesRequired indicates a chat request without messages.
var ErrMessagesRequired = errors.New(messagesRequiredMessageConstant)

// APIError reports a non-successful HTTP status from the chat completion API.
type APIError struct {
	StatusCode int
	Body       string
}

// Error describes the API failure.
func (apiError *APIError) Error() string {
	trimmedBody := strings.TrimSpace(apiError.Body)
	if len(trimmedBody) == 0 {
		return fmt.Sprintf(apiErrorWithoutBodyTemplateConstant, apiError.StatusCode)
	}
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, trimmedBody)
}

// Config configures the chat completion client.
type Config struct {
	BaseURL             string
	APIKey              string
	Model               string
	MaxCompletionTokens int
	Timeout             time.Duration
}

// ChatMessage is a single conversation turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a chat completion call. Zero Model and MaxTokens fall back to the client configuration.
type ChatRequest struct {
	Model     string
	Messages  []ChatMessage
	MaxTokens int
}

type chatCompletionPayload struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	httpClient *resty.Client
	config     Config
}

// NewClient validates the configuration and constructs a Client.
func NewClient(config Config) (*Client, error) {
	sanitized := config.withDefaults()
	if len(sanitized.APIKey) == 0 {
		return nil, ErrAPIKeyRequired
	}

	httpClient := resty.New().
		SetBaseURL(sanitized.BaseURL).
		SetTimeout(sanitized.Timeout).
		SetAuthToken(sanitized.APIKey).
		SetHeader(contentTypeHeaderConstant, jsonContentTypeConstant)

	return &Client{httpClient: httpClient, config: sanitized}, nil
}

// Chat sends the request and returns the trimmed content of the first choice.
func (client *Client) Chat(executionContext context.Context, request ChatRequest) (string, error) {
	if len(request.Messages) == 0 {
		return "", ErrMessagesRequired
	}

	payload := chatCompletionPayload{
		Model:     client.config.Model,
		Messages:  request.Messages,
		MaxTokens: client.config.MaxCompletionTokens,
	}
	if trimmedModel := strings.TrimSpace(request.Model); len(trimmedModel) > 0 {
		payload.Model = trimmedModel
	}
	if request.MaxTokens > 0 {
		payload.MaxTokens = request.MaxTokens
	}

	var completion chatCompletionResponse
	response, requestError := client.httpClient.R().
		SetContext(executionContext).
		SetBody(payload).
		SetResult(&completion).
		ForceContentType(jsonContentTypeConstant).
		Post(chatCompletionsPathConstant)
	if requestError != nil {
		return "", fmt.Errorf(requestFailedTemplateConstant, requestError)
	}
	if response.IsError() {
		return "", &APIError{StatusCode: response.StatusCode(), Body: response.String()}
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if len(content) == 0 {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Model reports the default model the client sends.
func (client *Client) Model() string {
	return client.config.Model
}

func (config Config) withDefaults() Config {
	sanitized := config
	sanitized.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = DefaultBaseURL
	}
	sanitized.APIKey = strings.TrimSpace(config.APIKey)
	sanitized.Model = strings.TrimSpace(config.Model)
	if len(sanitized.Model) == 0 {
		sanitized.Model = DefaultModel
	}
	if sanitized.MaxCompletionTokens <= 0 {
		sanitized.MaxCompletionTokens = DefaultMaxCompletionTokens
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = DefaultTimeout
	}
	return sanitized
}
