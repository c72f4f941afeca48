package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.PubSubName != "taskpubsub" {
		t.Errorf("Expected pubsub name taskpubsub, got %s", cfg.PubSubName)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("Expected server port 8080, got %s", cfg.ServerPort)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("Expected idempotency TTL 24h, got %s", cfg.IdempotencyTTL)
	}
	if cfg.IdempotencyMaxSize != 10000 {
		t.Errorf("Expected idempotency max size 10000, got %d", cfg.IdempotencyMaxSize)
	}
	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("Expected default backend URL, got %s", cfg.BackendURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PUBSUB_NAME", "custom-bus")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("IDEMPOTENCY_MAX_SIZE", "5")
	t.Setenv("CONSUMER_ENDPOINTS", "http://audit:5003, http://notify:5001")
	t.Setenv("DEBUG_MODE", "true")

	cfg := Load()

	if cfg.PubSubName != "custom-bus" {
		t.Errorf("Expected pubsub name custom-bus, got %s", cfg.PubSubName)
	}
	if cfg.IdempotencyTTL != time.Minute {
		t.Errorf("Expected idempotency TTL 1m, got %s", cfg.IdempotencyTTL)
	}
	if cfg.IdempotencyMaxSize != 5 {
		t.Errorf("Expected idempotency max size 5, got %d", cfg.IdempotencyMaxSize)
	}
	if len(cfg.ConsumerEndpoints) != 2 || cfg.ConsumerEndpoints[1] != "http://notify:5001" {
		t.Errorf("Unexpected consumer endpoints: %v", cfg.ConsumerEndpoints)
	}
	if !cfg.DebugMode {
		t.Error("Expected debug mode enabled")
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("IDEMPOTENCY_MAX_SIZE", "not-a-number")

	cfg := Load()
	if cfg.IdempotencyMaxSize != 10000 {
		t.Errorf("Expected fallback to default 10000, got %d", cfg.IdempotencyMaxSize)
	}
}
