package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadResolvesEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
environment: production
environments:
  development:
    backendUrl: http://localhost:8080
  production:
    backendUrl: https://api.example.com/
    frontendUrl: https://quiz.example.com/
results:
  pollInterval: 2s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_ENV", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ep, err := cfg.Endpoints()
	if err != nil {
		t.Fatalf("endpoints: %v", err)
	}
	if ep.BackendURL != "https://api.example.com" || ep.FrontendURL != "https://quiz.example.com" {
		t.Fatalf("unexpected endpoints %+v", ep)
	}
	if got := TTLDuration(cfg.Results.PollInterval, 0); got != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", got)
	}
	if cfg.Results.PageSize != 10 {
		t.Fatalf("expected default page size to survive, got %d", cfg.Results.PageSize)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QUIZ_ENV", "")
	t.Setenv("BACKEND_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ep, err := cfg.Endpoints()
	if err != nil {
		t.Fatalf("endpoints: %v", err)
	}
	if ep.Name != "development" || ep.BackendURL != "http://localhost:8080" {
		t.Fatalf("unexpected defaults %+v", ep)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("QUIZ_ENV", "staging")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.Endpoints(); err == nil {
		t.Fatalf("expected unknown environment error")
	}

	t.Setenv("QUIZ_ENV", "development")
	t.Setenv("BACKEND_URL", "http://backend:9000/")
	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	ep, err := cfg.Endpoints()
	if err != nil || ep.BackendURL != "http://backend:9000" {
		t.Fatalf("expected backend override, got %+v %v", ep, err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad value, got %s", got)
	}
}
