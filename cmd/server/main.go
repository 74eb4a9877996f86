package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relay-backend/internal/auth"
	"relay-backend/internal/config"
	"relay-backend/internal/database"
	"relay-backend/internal/handlers"
	"relay-backend/internal/middleware"
	"relay-backend/internal/ratelimit"
	"relay-backend/internal/repository"
	"relay-backend/internal/router"
	"relay-backend/internal/services"
	"relay-backend/internal/websocket"
)

func main() {
	log.Println("Starting chat relay backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Stores ────
	messageRepo := repository.NewMessageRepo(pool)

	var mockRepo *repository.MemoryMessageRepo
	if cfg.MockSeedPath != "" {
		mockRepo, err = repository.NewMemoryMessageRepoFromFile(cfg.MockSeedPath)
		if err != nil {
			log.Fatalf("✗ Mock seed load failed: %v", err)
		}
		log.Printf("✓ Mock log seeded from %s", cfg.MockSeedPath)
	} else {
		mockRepo = repository.NewMemoryMessageRepo(nil)
	}

	// ──── Step 5: Initialize AI Provider ────
	var provider services.Provider
	switch cfg.Provider {
	case "openai":
		provider = services.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "gemini":
		gemini, err := services.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		provider = gemini
	case "mock":
		provider = services.NewMockProvider()
	default:
		log.Fatalf("✗ Unknown provider %q", cfg.Provider)
	}
	log.Printf("✓ AI provider ready (%s)", cfg.Provider)

	// ──── Initialize Services ────
	var verifier *auth.Verifier
	if cfg.BasicAuthPasswordHash != "" {
		verifier = auth.NewVerifierWithHash(cfg.BasicAuthUsername, cfg.BasicAuthPasswordHash)
	} else {
		verifier = auth.NewVerifier(cfg.BasicAuthUsername, cfg.BasicAuthPassword)
	}
	basicAuth := middleware.NewBasicAuth(verifier)
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	// Both gates share one limiter, so a user has a single budget across
	// the mock and persistent routes.
	limiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	mockChat := services.NewChatService(mockRepo, services.NewMockProvider(), limiter, redisClients.Publish, cfg.MockHistoryLimit)
	chat := services.NewChatService(messageRepo, provider, limiter, redisClients.Publish, 0)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(mockChat, chat)
	authHandler := handlers.NewAuthHandler(jwtAuth)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(basicAuth, chatHandler, authHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chat relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
