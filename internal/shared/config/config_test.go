package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"KV_BACKEND", "LLM_PROVIDER", "LLM_MODEL", "LLM_TIMEOUT_SECONDS", "OBJECT_STORE", "ENV", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.KVBackend != "sqlite" {
		t.Fatalf("expected sqlite backend, got %q", cfg.KVBackend)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMModel == "" {
		t.Fatalf("expected default model for gemini")
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local object store, got %q", cfg.ObjectStoreType)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("KV_BACKEND", " PG ")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "-3")
	t.Setenv("ENV", "prod")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, ")

	cfg := Load()
	if cfg.KVBackend != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.KVBackend)
	}
	if cfg.LLMProvider != "openai" || cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("unexpected provider/model %q/%q", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("invalid timeout should fall back to default, got %s", cfg.LLMTimeout)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if len(cfg.CORSAllowOrigin) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowOrigin)
	}
	if len(cfg.TrustedProxies) != 1 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies %v", cfg.TrustedProxies)
	}
}

func TestNewViperReadsEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nMAINT_TEST_A=file\nexport MAINT_TEST_B=\"quoted\"\nPORT=9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MAINT_TEST_A", "process")
	t.Setenv("PORT", "")
	os.Unsetenv("MAINT_TEST_B")
	t.Cleanup(func() { os.Unsetenv("MAINT_TEST_B") })

	v := NewViper(path, filepath.Join(dir, "missing.env"))

	if got := v.GetString("MAINT_TEST_A"); got != "process" {
		t.Fatalf("expected process value to win, got %q", got)
	}
	if got := os.Getenv("MAINT_TEST_B"); got != "quoted" {
		t.Fatalf("expected file value exported to the environment, got %q", got)
	}
	if cfg := FromViper(v); cfg.Port != "9090" {
		t.Fatalf("expected port from env file, got %q", cfg.Port)
	}
}
