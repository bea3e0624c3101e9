package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/commitmsg/internal/changes"
	"github.com/temirov/commitmsg/pkg/llm"
)

const (
	noChangesErrorMessageConstant         = "no changes to describe"
	chatClientMissingErrorMessageConstant = "chat client not configured"
	generationFailedTemplateConstant      = "failed to generate commit message: %w"
	messageGeneratedMessageConstant       = "Generated commit message"
	logFieldPromptBytesConstant           = "prompt_bytes"
	logFieldMessageBytesConstant          = "message_bytes"
)

// ErrNoChanges indicates an empty change report.
var ErrNoChanges = errors.New(noChangesErrorMessageConstant)

// ErrChatClientNotConfigured indicates the service was constructed without a chat client.
var ErrChatClientNotConfigured = errors.New(chatClientMissingErrorMessageConstant)

// ChatClient sends chat completion requests. *llm.Client satisfies it.
type ChatClient interface {
	Chat(executionContext context.Context, request llm.ChatRequest) (string, error)
}

// ServiceDependencies enumerates collaborators required to generate commit messages.
type ServiceDependencies struct {
	Logger     *zap.Logger
	ChatClient ChatClient
}

// Service turns change reports into commit messages.
type Service struct {
	logger     *zap.Logger
	chatClient ChatClient
}

// NewService constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ChatClient == nil {
		return nil, ErrChatClientNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, chatClient: dependencies.ChatClient}, nil
}

// Prompt builds the request prompt for a non-empty report.
func Prompt(report changes.ChangeReport) (string, error) {
	if report.IsEmpty() {
		return "", ErrNoChanges
	}
	return BuildPrompt(report), nil
}

// Generate sends the report as a single user message and returns the trimmed reply.
func (service *Service) Generate(executionContext context.Context, report changes.ChangeReport) (string, error) {
	prompt, promptError := Prompt(report)
	if promptError != nil {
		return "", promptError
	}

	reply, chatError := service.chatClient.Chat(executionContext, llm.ChatRequest{
		Messages: []llm.ChatMessage{{Role: llm.RoleUser, Content: prompt}},
	})
	if chatError != nil {
		return "", fmt.Errorf(generationFailedTemplateConstant, chatError)
	}

	commitMessage := strings.TrimSpace(reply)
	service.logger.Debug(
		messageGeneratedMessageConstant,
		zap.Int(logFieldPromptBytesConstant, len(prompt)),
		zap.Int(logFieldMessageBytesConstant, len(commitMessage)),
	)
	return commitMessage, nil
}
