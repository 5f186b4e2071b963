package config_test

import (
	"os"
	"testing"

	"github.com/relaycache/llmproxy/config"
)

func TestLoadRequiresUpstreamAPIKey(t *testing.T) {
	os.Unsetenv("UPSTREAM_API_KEY")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected Load to fail without UPSTREAM_API_KEY")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("UPSTREAM_API_KEY", "sk-test")
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	os.Setenv("ENV", "test")
	defer func() {
		os.Unsetenv("UPSTREAM_API_KEY")
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("ENV")
	}()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UpstreamAPIKey != "sk-test" {
		t.Fatalf("expected UPSTREAM_API_KEY to be loaded, got %q", cfg.UpstreamAPIKey)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Fatalf("expected REDIS_URL to be loaded, got %q", cfg.RedisURL)
	}
	if cfg.Env != "test" || cfg.IsDevelopment() {
		t.Fatalf("expected ENV=test and IsDevelopment()=false, got env=%q", cfg.Env)
	}
}

func TestLoadDefaults(t *testing.T) {
	os.Setenv("UPSTREAM_API_KEY", "sk-test")
	os.Unsetenv("REDIS_URL")
	os.Unsetenv("ADDR")
	defer os.Unsetenv("UPSTREAM_API_KEY")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default Addr :8080, got %q", cfg.Addr)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("expected default RedisURL, got %q", cfg.RedisURL)
	}
	if cfg.QdrantPort != 6334 {
		t.Errorf("expected default QdrantPort 6334, got %d", cfg.QdrantPort)
	}
}
