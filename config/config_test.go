package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "engine.yaml", `
name: posture-engine
version: 1.0.0
store:
  uri: bolt://localhost:7687
  query_timeout: 10s
delta:
  redis_url: redis://localhost:6379
  push_interval: 15s
registry:
  endpoints:
    - localhost:2379
  ttl: 20
search:
  max_depth: 4
  depth_ceiling: 8
  step_budget: 5000
  max_paths: 10
  timeout: 2s
log_level: debug
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "posture-engine" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if got := cfg.Store.GetQueryTimeout(); got != 10*time.Second {
		t.Errorf("GetQueryTimeout = %v", got)
	}
	if got := cfg.Delta.GetPushInterval(); got != 15*time.Second {
		t.Errorf("GetPushInterval = %v", got)
	}
	if cfg.Registry.TTL != 20 {
		t.Errorf("Registry.TTL = %d", cfg.Registry.TTL)
	}
	if cfg.Search.MaxDepth != 4 || cfg.Search.StepBudget != 5000 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if got := cfg.Search.GetTimeout(); got != 2*time.Second {
		t.Errorf("GetTimeout = %v", got)
	}
	if cfg.GetLogLevel() != "debug" {
		t.Errorf("GetLogLevel = %q", cfg.GetLogLevel())
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "engine.yaml", "name: minimal\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Store.GetQueryTimeout(); got != 30*time.Second {
		t.Errorf("default GetQueryTimeout = %v", got)
	}
	if got := cfg.Delta.GetPushInterval(); got != 30*time.Second {
		t.Errorf("default GetPushInterval = %v", got)
	}
	if got := cfg.Search.GetTimeout(); got != 0 {
		t.Errorf("default GetTimeout = %v", got)
	}
	if cfg.GetLogLevel() != "info" {
		t.Errorf("default GetLogLevel = %q", cfg.GetLogLevel())
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "engine.yaml", `
delta:
  push_interval: not-a-duration
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Delta.GetPushInterval(); got != 30*time.Second {
		t.Errorf("invalid duration should fall back to default, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"store without uri", Config{Store: &StoreConfig{}}, true},
		{"depth above ceiling", Config{Search: &SearchConfig{MaxDepth: 12, DepthCeiling: 10}}, true},
		{"negative depth", Config{Search: &SearchConfig{MaxDepth: -1}}, true},
		{"bad log level", Config{LogLevel: "verbose"}, true},
		{"valid", Config{Store: &StoreConfig{URI: "bolt://x"}, LogLevel: "warn"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "engine.yaml", "name: parent\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(nested)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if cfg.Name != "parent" {
		t.Errorf("Name = %q", cfg.Name)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory without engine.yaml")
	}
}
