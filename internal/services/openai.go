package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"relay-backend/internal/models"
)

// OpenAIProvider relays conversations to the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAIProvider) Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	var msgs []openai.ChatCompletionMessage
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: msgs,
	})
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("%w: openai completion: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return models.ChatMessage{}, fmt.Errorf("%w: openai returned no choices", ErrProvider)
	}

	choice := resp.Choices[0].Message
	return models.ChatMessage{Role: models.RoleAssistant, Content: choice.Content}, nil
}
