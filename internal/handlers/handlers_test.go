package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relay-backend/internal/auth"
	"relay-backend/internal/middleware"
	"relay-backend/internal/models"
	"relay-backend/internal/ratelimit"
	"relay-backend/internal/repository"
	"relay-backend/internal/services"
)

func newTestHandler(limit int) (*ChatHandler, *repository.MemoryMessageRepo) {
	store := repository.NewMemoryMessageRepo(nil)
	limiter := ratelimit.NewLimiter(limit, time.Minute)
	mockChat := services.NewChatService(store, services.NewMockProvider(), limiter, nil, defaultHistoryLimit)
	return NewChatHandler(mockChat, mockChat), store
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("test_user", "test_password")
	return req
}

func gated(h http.HandlerFunc) http.Handler {
	ba := middleware.NewBasicAuth(auth.NewVerifier("test_user", "test_password"))
	return ba.Middleware(h)
}

func TestSendMockMessage_FullExchange(t *testing.T) {
	h, store := newTestHandler(3)

	body, _ := json.Marshal(models.ChatRequest{Message: "hi"})
	rr := httptest.NewRecorder()
	gated(h.SendMockMessage).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/mock/messages", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Reply != "Hello! How can I assist you today?" {
		t.Errorf("Unexpected reply %q", resp.Reply)
	}

	messages, _ := store.History(context.Background(), "", 10)
	if len(messages) != 2 {
		t.Errorf("Expected user message and reply in the shared log, got %d", len(messages))
	}
}

func TestSendMockMessage_BadCredentials(t *testing.T) {
	h, _ := newTestHandler(3)

	body, _ := json.Marshal(models.ChatRequest{Message: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mock/messages", bytes.NewReader(body))
	req.SetBasicAuth("test_user", "wrong_password")

	rr := httptest.NewRecorder()
	gated(h.SendMockMessage).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestSendMockMessage_ValidationBeforeRateLimit(t *testing.T) {
	h, _ := newTestHandler(1)

	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":""}`},
		{"whitespace message", `{"message":"   "}`},
		{"missing field", `{}`},
		{"malformed json", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			gated(h.SendMockMessage).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/mock/messages", []byte(tc.body)))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
		})
	}

	// None of the invalid requests consumed the single-token budget.
	body, _ := json.Marshal(models.ChatRequest{Message: "hi"})
	rr := httptest.NewRecorder()
	gated(h.SendMockMessage).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/mock/messages", body))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected valid request to still pass, got %d", rr.Code)
	}
}

func TestSendMockMessage_RateLimited(t *testing.T) {
	h, _ := newTestHandler(3)
	body, _ := json.Marshal(models.ChatRequest{Message: "hi"})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		gated(h.SendMockMessage).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/mock/messages", body))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected request %d to pass, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	gated(h.SendMockMessage).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/mock/messages", body))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on the 4th request, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("Expected RATE_LIMITED error code, got %q", resp.Error.Code)
	}
}

func TestGetMockMessages(t *testing.T) {
	var seed []models.ChatMessage
	for i := 0; i < 12; i++ {
		seed = append(seed, models.ChatMessage{Role: models.RoleUser, Content: "seeded"})
	}
	store := repository.NewMemoryMessageRepo(seed)
	limiter := ratelimit.NewLimiter(3, time.Minute)
	mockChat := services.NewChatService(store, services.NewMockProvider(), limiter, nil, defaultHistoryLimit)
	h := NewChatHandler(mockChat, mockChat)

	tests := []struct {
		name   string
		target string
		status int
		count  int
	}{
		{"default limit", "/api/v1/mock/messages", http.StatusOK, 10},
		{"explicit limit", "/api/v1/mock/messages?limit=3", http.StatusOK, 3},
		{"limit above size", "/api/v1/mock/messages?limit=50", http.StatusOK, 12},
		{"invalid limit", "/api/v1/mock/messages?limit=zero", http.StatusBadRequest, 0},
		{"negative limit", "/api/v1/mock/messages?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()
			h.GetMockMessages(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if tc.status != http.StatusOK {
				return
			}

			var messages []models.ChatMessage
			if err := json.NewDecoder(rr.Body).Decode(&messages); err != nil {
				t.Fatalf("Failed to decode messages: %v", err)
			}
			if len(messages) != tc.count {
				t.Errorf("Expected %d messages, got %d", tc.count, len(messages))
			}
		})
	}
}

func TestGetMessages_EmptyHistoryIsEmptyArray(t *testing.T) {
	h, _ := newTestHandler(3)

	rr := httptest.NewRecorder()
	gated(h.GetMessages).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/messages", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if body := bytes.TrimSpace(rr.Body.Bytes()); !bytes.Equal(body, []byte("[]")) {
		t.Errorf("Expected empty JSON array, got %s", body)
	}
}

func TestToken_RequiresAuth(t *testing.T) {
	jwtAuth := middleware.NewJWTAuth("test-secret")
	h := NewAuthHandler(jwtAuth)

	rr := httptest.NewRecorder()
	gated(h.Token).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/auth/token", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}
	if resp["token"] == "" {
		t.Error("Expected a non-empty token")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
	rr = httptest.NewRecorder()
	gated(h.Token).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rr.Code)
	}
}
