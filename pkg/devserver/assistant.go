package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no OpenAI model is configured.
const DefaultModel = "gpt-4o-mini"

// Assistant produces the reply to the latest user turn in history.
type Assistant interface {
	Reply(ctx context.Context, system string, history []Turn) (string, error)
}

// OpenAIAssistant answers through the OpenAI chat completion API.
type OpenAIAssistant struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIAssistant returns an assistant for apiKey. An empty baseURL
// selects the public API.
func NewOpenAIAssistant(apiKey, model, baseURL string) *OpenAIAssistant {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIAssistant{client: openai.NewClientWithConfig(cfg), model: model, temperature: 0.7}
}

// Reply implements Assistant.
func (a *OpenAIAssistant) Reply(ctx context.Context, system string, history []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// EchoAssistant is an offline assistant that restates the question and
// points at the clinic's contact details.
type EchoAssistant struct{}

// Reply implements Assistant.
func (a EchoAssistant) Reply(ctx context.Context, system string, history []Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			last = history[i].Content
			break
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You asked: %q.", last)
	b.WriteString(" I'm running in offline mode, so please contact the clinic for details.")
	b.WriteString("\n\n" + disclaimer)
	return b.String(), nil
}
