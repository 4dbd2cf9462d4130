package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "REDIS_ADDR", "REDIS_PASSWORD", "GROK_API_KEY", "IRR_SOLVER",
		"CACHE_TTL", "RATE_LIMIT_WINDOW", "RATE_LIMIT_CAPACITY", "OCR_ENABLED", "LOG_DEVELOPMENT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {

	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":8080" || cfg.Cache.Backend != "memory" || cfg.Solver.Strategy != "newton" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Solver.Tolerance != 1e-5 || cfg.Solver.MaxIterations != 1000 || cfg.Solver.InitialGuess != 0.10 {
		t.Errorf("unexpected solver defaults %+v", cfg.Solver)
	}
	if len(cfg.Sensitivity.Perturbations) != 5 {
		t.Errorf("expected 5-point default grid, got %v", cfg.Sensitivity.Perturbations)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "app.yaml")
	yaml := `
server:
  addr: ":9000"
cache:
  ttl: 5m
solver:
  strategy: hybrid
sensitivity:
  perturbations: [-0.2, 0, 0.2]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("RATE_LIMIT_CAPACITY", "3")
	t.Setenv("OCR_ENABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("env must override file, got %s", cfg.Server.Addr)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %s", cfg.Cache.TTL)
	}
	if cfg.Solver.Strategy != "hybrid" {
		t.Errorf("expected hybrid, got %s", cfg.Solver.Strategy)
	}
	if len(cfg.Sensitivity.Perturbations) != 3 {
		t.Errorf("expected file grid, got %v", cfg.Sensitivity.Perturbations)
	}
	if cfg.RateLimit.Capacity != 3 || !cfg.Extraction.OCREnabled {
		t.Errorf("env overrides not applied: %+v %+v", cfg.RateLimit, cfg.Extraction)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("fields absent from the file keep defaults")
	}
}

func TestLoad_RedisAddrSelectsRedis(t *testing.T) {

	clearEnv(t)
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("expected redis backend, got %+v", cfg.Cache)
	}
}

func TestLoad_Invalid(t *testing.T) {

	clearEnv(t)
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"CACHE_TTL": "soon"}, "CACHE_TTL"},
		{"bad bool", map[string]string{"OCR_ENABLED": "maybe"}, "OCR_ENABLED"},
		{"unknown solver", map[string]string{"IRR_SOLVER": "secant"}, "solver.strategy"},
		{"zero capacity", map[string]string{"RATE_LIMIT_CAPACITY": "0"}, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("expected parse error")
	}
}
