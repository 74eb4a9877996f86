package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"relay-backend/internal/middleware"
	"relay-backend/internal/models"
	"relay-backend/internal/repository"
	"relay-backend/internal/services"
)

// AuthHandler mints websocket feed tokens for clients that already passed
// basic auth.
type AuthHandler struct {
	jwtAuth *middleware.JWTAuth
}

func NewAuthHandler(jwtAuth *middleware.JWTAuth) *AuthHandler {
	return &AuthHandler{jwtAuth: jwtAuth}
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())

	token, err := h.jwtAuth.GenerateAccessToken(username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to mint token", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
	case errors.Is(err, services.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", "Too many requests. Please try again later.", r))
	case errors.Is(err, repository.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORAGE_ERROR", "Storage is unavailable", r))
	case errors.Is(err, services.ErrProvider):
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "Failed to get AI response", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Unexpected error", r))
	}
}
