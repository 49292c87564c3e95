package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8000")
	}
	if cfg.Client.EndpointURL != "http://localhost:8000" {
		t.Fatalf("Client.EndpointURL = %q", cfg.Client.EndpointURL)
	}
	if cfg.Client.Timeout != 60*time.Second {
		t.Fatalf("Client.Timeout = %v, want 60s", cfg.Client.Timeout)
	}
	if cfg.Session.DefaultPersonaName != "지찡" {
		t.Fatalf("Session.DefaultPersonaName = %q", cfg.Session.DefaultPersonaName)
	}
	if cfg.Session.MarkFailedTurns {
		t.Fatal("Session.MarkFailedTurns should default to false")
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.4 {
		t.Fatalf("AI.Temperature = %v, want 0.4", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 512 {
		t.Fatalf("AI.MaxTokens = %v, want 512", cfg.AI.MaxTokens)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnvEmpty(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CHAT_ENDPOINT_URL", "http://chat.internal:8000")
	t.Setenv("CHAT_TIMEOUT_SECONDS", "5")
	t.Setenv("CHAT_MARK_FAILED", "true")
	t.Setenv("PERSONA_DEFAULT_NAME", "Mimi")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Client.EndpointURL != "http://chat.internal:8000" || cfg.Client.Timeout != 5*time.Second {
		t.Fatalf("unexpected client config: %+v", cfg.Client)
	}
	if !cfg.Session.MarkFailedTurns || cfg.Session.DefaultPersonaName != "Mimi" {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI should be enabled with API key and model")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"CHAT_TIMEOUT_SECONDS": "0",
		"CHAT_MARK_FAILED":     "sometimes",
		"ARK_TEMPERATURE":      "warm",
		"PORT":                 "80 80",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setEnvEmpty(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() expected error for %s=%q", key, value)
			}
		})
	}
}

func setEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"ARK_API_KEY",
		"ARK_ACCESS_KEY",
		"ARK_SECRET_KEY",
		"Model",
		"ARK_BASE_URL",
		"ARK_REGION",
		"ARK_TEMPERATURE",
		"ARK_TOP_P",
		"ARK_MAX_TOKENS",
		"CHAT_ENDPOINT_URL",
		"CHAT_TIMEOUT_SECONDS",
		"CHAT_MARK_FAILED",
		"PERSONA_DEFAULT_NAME",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
