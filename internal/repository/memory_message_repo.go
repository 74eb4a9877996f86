package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"relay-backend/internal/models"
)

// MemoryMessageRepo is the demo conversation log: one global append-only
// sequence shared by every user. It satisfies the same contract as
// MessageRepo; the username argument is accepted and ignored.
type MemoryMessageRepo struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

func NewMemoryMessageRepo(seed []models.ChatMessage) *MemoryMessageRepo {
	return &MemoryMessageRepo{messages: append([]models.ChatMessage(nil), seed...)}
}

// NewMemoryMessageRepoFromFile seeds the shared log from a JSON array of
// messages, matching the demo fixture format.
func NewMemoryMessageRepoFromFile(path string) (*MemoryMessageRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed []models.ChatMessage
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return NewMemoryMessageRepo(seed), nil
}

// History returns the last `limit` messages of the shared log in insertion
// order, or the whole log when limit <= 0 or fewer entries exist.
func (r *MemoryMessageRepo) History(_ context.Context, _ string, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append adds a message to the tail of the shared log. The single lock
// gives the global append ordering the shared sequence requires.
func (r *MemoryMessageRepo) Append(_ context.Context, _ string, msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	return nil
}
