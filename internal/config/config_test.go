package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const defaultMaxFileSize int64 = 50 * 1024 * 1024

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "SERVER_PORT", "MAX_FILE_SIZE", "MIN_FILE_SIZE", "LOG_LEVEL",
		"MODEL_PROVIDER", "SYNTHESIS_TIMEOUT_SECONDS", "SYNTHESIS_MAX_RETRIES", "STORE_BACKEND",
		"ENABLE_RATE_LIMITING", "CORS_ALLOWED_ORIGINS", "PDF_DECODER", "IMAGE_BASE_URL",
		"RATE_LIMIT_BACKEND", "SQLITE_PATH", "GEMINI_API_KEY", "OPENAI_API_KEY", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetMinFileSize() != 100 {
		t.Fatalf("expected default min file size 100, got %d", cfg.GetMinFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetModelProvider() != "none" {
		t.Fatalf("expected default model provider none, got %s", cfg.GetModelProvider())
	}
	if cfg.GetSynthesisTimeout() != 120*time.Second {
		t.Fatalf("expected default synthesis timeout 120s, got %s", cfg.GetSynthesisTimeout())
	}
	if cfg.GetSynthesisMaxRetries() != 2 {
		t.Fatalf("expected default max retries 2, got %d", cfg.GetSynthesisMaxRetries())
	}
	if cfg.GetSynthesisMaxChars() != 800000 {
		t.Fatalf("expected default max chars 800000, got %d", cfg.GetSynthesisMaxChars())
	}
	if !cfg.GetRateLimitingEnabled() {
		t.Fatalf("expected rate limiting enabled by default")
	}
	if cfg.GetStoreBackend() != "memory" {
		t.Fatalf("expected default store backend memory, got %s", cfg.GetStoreBackend())
	}
	if cfg.GetPDFDecoder() != "fitz" {
		t.Fatalf("expected default pdf decoder fitz, got %s", cfg.GetPDFDecoder())
	}
	if cfg.GetImageBaseURL() != "https://image.pollinations.ai" {
		t.Fatalf("unexpected image base url %s", cfg.GetImageBaseURL())
	}
	if len(cfg.GetCORSAllowedOrigins()) != 3 {
		t.Fatalf("expected 3 default cors origins, got %v", cfg.GetCORSAllowedOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL_PROVIDER", "Gemini")
	t.Setenv("SYNTHESIS_TIMEOUT_SECONDS", "30")
	t.Setenv("ENABLE_RATE_LIMITING", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("IMAGE_BASE_URL", "http://localhost:9999/")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetModelProvider() != "gemini" {
		t.Fatalf("expected model provider gemini, got %s", cfg.GetModelProvider())
	}
	if cfg.GetSynthesisTimeout() != 30*time.Second {
		t.Fatalf("expected synthesis timeout 30s, got %s", cfg.GetSynthesisTimeout())
	}
	if cfg.GetRateLimitingEnabled() {
		t.Fatalf("expected rate limiting disabled")
	}
	origins := cfg.GetCORSAllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", origins)
	}
	if cfg.GetImageBaseURL() != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.GetImageBaseURL())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("SYNTHESIS_TIMEOUT_SECONDS", "-5")
	t.Setenv("ENABLE_RATE_LIMITING", "maybe")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetSynthesisTimeout() != 120*time.Second {
		t.Fatalf("expected default synthesis timeout, got %s", cfg.GetSynthesisTimeout())
	}
	if !cfg.GetRateLimitingEnabled() {
		t.Fatalf("expected invalid bool to fall back to enabled")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "store_backend: sqlite\nsqlite_path: /tmp/jobs.db\nsynthesis_max_retries: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SYNTHESIS_MAX_RETRIES", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetStoreBackend() != "sqlite" {
		t.Fatalf("expected store backend sqlite from file, got %s", cfg.GetStoreBackend())
	}
	if cfg.GetSQLitePath() != "/tmp/jobs.db" {
		t.Fatalf("expected sqlite path from file, got %s", cfg.GetSQLitePath())
	}
	if cfg.GetSynthesisMaxRetries() != 1 {
		t.Fatalf("expected env to win over file, got %d", cfg.GetSynthesisMaxRetries())
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
	if cfg == nil || cfg.GetServerPort() != "8080" {
		t.Fatalf("expected defaults alongside the error")
	}
}
