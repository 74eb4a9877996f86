package services

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"relay-backend/internal/models"
)

// GeminiProvider relays conversations to Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	if len(history) == 0 {
		return models.ChatMessage{}, fmt.Errorf("%w: empty conversation", ErrProvider)
	}

	// Gemini takes the last message separately from the prior turns.
	cs := p.model.StartChat()
	for _, m := range history[:len(history)-1] {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(history[len(history)-1].Content))
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("%w: gemini completion: %v", ErrProvider, err)
	}

	reply := extractText(resp)
	if reply == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: gemini returned no text", ErrProvider)
	}
	return models.ChatMessage{Role: models.RoleAssistant, Content: reply}, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var out string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}
	return out
}
