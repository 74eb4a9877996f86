package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"relay-backend/internal/handlers"
	"relay-backend/internal/middleware"
	"relay-backend/internal/ratelimit"
	"relay-backend/internal/websocket"
)

func New(
	basicAuth *middleware.BasicAuth,
	chatHandler *handlers.ChatHandler,
	authHandler *handlers.AuthHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Token endpoint limiter (10 req/min per IP)
	tokenLimiter := ratelimit.NewLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Mock chat (shared demo log) ────
		r.Route("/mock/messages", func(r chi.Router) {
			r.Get("/", chatHandler.GetMockMessages) // Public

			r.Group(func(r chi.Router) {
				r.Use(basicAuth.Middleware)
				r.Post("/", chatHandler.SendMockMessage)
			})
		})

		// ──── Persistent per-user chat ────
		r.Route("/messages", func(r chi.Router) {
			r.Use(basicAuth.Middleware)
			r.Get("/", chatHandler.GetMessages)
			r.Post("/", chatHandler.SendMessage)
		})

		// ──── Websocket feed tokens ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(tokenLimiter))
			r.Group(func(r chi.Router) {
				r.Use(basicAuth.Middleware)
				r.Post("/token", authHandler.Token)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
