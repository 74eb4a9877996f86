package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"relay-backend/internal/models"
)

var (
	// ErrRateLimited means the user exhausted their sliding-window budget.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrEmptyMessage means the request carried no message text. Checked
	// before the rate limiter so bad input never consumes a token.
	ErrEmptyMessage = errors.New("message is required")
)

type conversationStore interface {
	History(ctx context.Context, username string, limit int) ([]models.ChatMessage, error)
	Append(ctx context.Context, username string, msg models.ChatMessage) error
}

type admitter interface {
	Admit(key string) bool
}

// ChatService runs one message exchange end to end: rate-limit admission,
// history read, user-message append, provider call, reply append. The
// steps are not one transaction: a failure after admission consumes a
// rate-limit token without recording the message. Accepted trade-off for
// an in-memory limiter.
type ChatService struct {
	store        conversationStore
	provider     Provider
	limiter      admitter
	redis        *redis.Client // optional, feeds the websocket hub
	historyLimit int           // 0 = full history
}

func NewChatService(store conversationStore, provider Provider, limiter admitter, redisClient *redis.Client, historyLimit int) *ChatService {
	return &ChatService{
		store:        store,
		provider:     provider,
		limiter:      limiter,
		redis:        redisClient,
		historyLimit: historyLimit,
	}
}

// Send relays one user message and returns the assistant reply. The first
// failing step short-circuits; every failure mode surfaces as a distinct
// error (ErrEmptyMessage, ErrRateLimited, repository.ErrStorageUnavailable,
// ErrProvider).
func (s *ChatService) Send(ctx context.Context, username, content string) (models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	if !s.limiter.Admit(username) {
		return models.ChatMessage{}, ErrRateLimited
	}

	history, err := s.store.History(ctx, username, s.historyLimit)
	if err != nil {
		return models.ChatMessage{}, err
	}

	userMsg := models.ChatMessage{Role: models.RoleUser, Content: content}
	if err := s.store.Append(ctx, username, userMsg); err != nil {
		return models.ChatMessage{}, err
	}
	s.publish(ctx, username, userMsg)

	reply, err := s.provider.Reply(ctx, append(history, userMsg))
	if err != nil {
		// Non-retriable: the exchange aborts with no reply appended.
		return models.ChatMessage{}, err
	}

	if err := s.store.Append(ctx, username, reply); err != nil {
		return models.ChatMessage{}, err
	}
	s.publish(ctx, username, reply)

	return reply, nil
}

// History exposes the store's read path with the service's bound.
func (s *ChatService) History(ctx context.Context, username string, limit int) ([]models.ChatMessage, error) {
	return s.store.History(ctx, username, limit)
}

// publish pushes the appended message to the user's websocket feed channel.
// Best effort; a pub/sub failure never fails the exchange.
func (s *ChatService) publish(ctx context.Context, username string, msg models.ChatMessage) {
	if s.redis == nil {
		return
	}
	data, _ := json.Marshal(models.WSMessage{Type: "message", Payload: msg})
	s.redis.Publish(ctx, "chat:"+username, string(data))
}
