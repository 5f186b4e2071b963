// Package config loads this proxy's configuration from the environment,
// with a .env fallback for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every value the proxy's adapters and HTTP server need.
type Config struct {
	// Server
	Addr            string
	Env             string
	GracefulTimeout time.Duration

	// Upstream chat-completion provider
	UpstreamBaseURL string
	UpstreamAPIKey  string

	// Exact-match tier (Redis)
	RedisURL string

	// Semantic-match tier (Qdrant)
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	// Embedding service
	EmbeddingURL string

	// Plain-text request log; empty disables it
	RequestLogPath string

	LogLevel string
}

// Load reads configuration from the environment and an optional .env
// file. UpstreamAPIKey is the only required value — its absence is a
// startup failure the caller must treat as fatal; the process must
// never accept traffic without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("UPSTREAM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("config: UPSTREAM_API_KEY is required")
	}

	gracefulSec := getEnvInt("GRACEFUL_TIMEOUT_SEC", 15)

	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		Env:             getEnv("ENV", "development"),
		GracefulTimeout: time.Duration(gracefulSec) * time.Second,
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://api.openai.com/v1"),
		UpstreamAPIKey:  apiKey,
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:    getEnv("QDRANT_API_KEY", ""),
		EmbeddingURL:    getEnv("EMBEDDING_URL", "http://localhost:8001/embed"),
		RequestLogPath:  getEnv("REQUEST_LOG_PATH", "./requests.log"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// IsDevelopment reports whether the proxy is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
