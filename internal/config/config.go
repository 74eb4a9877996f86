package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT (websocket feed tokens)
	JWTSecret string

	// Basic auth identity. PasswordHash (bcrypt) wins over Password when set.
	BasicAuthUsername     string
	BasicAuthPassword     string
	BasicAuthPasswordHash string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// AI provider
	Provider     string // mock | openai | gemini
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string

	// Mock store
	MockHistoryLimit int
	MockSeedPath     string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		DatabaseURL:           mustGetEnv("DATABASE_URL"),
		RedisURL:              mustGetEnv("REDIS_URL"),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		BasicAuthUsername:     getEnvOrDefault("BASIC_AUTH_USERNAME", "test_user"),
		BasicAuthPassword:     getEnvOrDefault("BASIC_AUTH_PASSWORD", "test_password"),
		BasicAuthPasswordHash: getEnvOrDefault("BASIC_AUTH_PASSWORD_HASH", ""),
		RateLimitRequests:     getEnvAsIntOrDefault("RATE_LIMIT_REQUESTS", 3),
		RateLimitWindow:       time.Duration(getEnvAsIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		Provider:              getEnvOrDefault("PROVIDER", "mock"),
		OpenAIAPIKey:          getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", ""),
		GeminiAPIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
		MockHistoryLimit:      getEnvAsIntOrDefault("MOCK_HISTORY_LIMIT", 10),
		MockSeedPath:          getEnvOrDefault("MOCK_SEED_PATH", ""),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
