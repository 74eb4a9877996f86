package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"relay-backend/internal/middleware"
	"relay-backend/internal/models"
	"relay-backend/internal/services"
)

const defaultHistoryLimit = 10

type ChatHandler struct {
	mockChat *services.ChatService
	chat     *services.ChatService
}

func NewChatHandler(mockChat, chat *services.ChatService) *ChatHandler {
	return &ChatHandler{
		mockChat: mockChat,
		chat:     chat,
	}
}

// GetMockMessages returns the tail of the shared demo log. Public.
func (h *ChatHandler) GetMockMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid limit", r))
			return
		}
		limit = n
	}

	messages, err := h.mockChat.History(r.Context(), "", limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendMockMessage relays a message through the mock provider and the
// shared demo log.
func (h *ChatHandler) SendMockMessage(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.mockChat)
}

// GetMessages returns the authenticated user's full persisted history.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	messages, err := h.chat.History(r.Context(), username, 0)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendMessage relays a message through the configured AI provider and the
// user's persisted history.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.chat)
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request, svc *services.ChatService) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	username := middleware.GetUsername(r.Context())
	reply, err := svc.Send(r.Context(), username, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply.Content})
}
