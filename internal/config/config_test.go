package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"RELIGHT_PORT", "RELIGHT_MODEL", "RELIGHT_SESSION_TTL", "RELIGHT_MAX_UPLOAD_BYTES", "RELIGHT_REQUESTS_PER_MINUTE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Model)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultSessionTTL, cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("expected default upload cap %d, got %d", DefaultMaxUploadBytes, cfg.MaxUploadBytes)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RELIGHT_PORT", "9090")
	t.Setenv("RELIGHT_MODEL", "some-other-model")
	t.Setenv("RELIGHT_SESSION_TTL", "5m")
	t.Setenv("RELIGHT_REQUESTS_PER_MINUTE", "3")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.Model != "some-other-model" {
		t.Errorf("expected model override, got %q", cfg.Model)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("expected 5m TTL, got %v", cfg.SessionTTL)
	}
	if cfg.RequestsPerMinute != 3 {
		t.Errorf("expected 3 rpm, got %d", cfg.RequestsPerMinute)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RELIGHT_PORT", "not-a-number")
	t.Setenv("RELIGHT_SESSION_TTL", "soon")

	cfg := Load()
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port for invalid value, got %d", cfg.Port)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("expected default TTL for invalid value, got %v", cfg.SessionTTL)
	}
}
