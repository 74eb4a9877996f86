package services

import (
	"context"

	"relay-backend/internal/models"
)

const mockReply = "Hello! How can I assist you today?"

// MockProvider stands in for the real AI provider during demos and tests.
// It always answers with the same canned assistant message and never fails.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Reply(_ context.Context, _ []models.ChatMessage) (models.ChatMessage, error) {
	return models.ChatMessage{Role: models.RoleAssistant, Content: mockReply}, nil
}
