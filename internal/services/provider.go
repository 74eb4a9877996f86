package services

import (
	"context"
	"errors"

	"relay-backend/internal/models"
)

// ErrProvider wraps any failure of the external AI provider. The gate
// treats it as non-retriable and aborts the exchange.
var ErrProvider = errors.New("provider error")

// Provider turns an ordered conversation into a single assistant reply.
type Provider interface {
	Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error)
}
