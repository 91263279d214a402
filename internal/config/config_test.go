package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Resolver.MaxRedirectDepth != 10 {
		t.Fatalf("max_redirect_depth = %d", cfg.Resolver.MaxRedirectDepth)
	}
	if cfg.Resolver.UserAgent != "linkweaver/0.1" {
		t.Fatalf("user_agent = %q", cfg.Resolver.UserAgent)
	}
	if !cfg.Resolver.StripTrackingParams {
		t.Fatalf("strip_tracking_params should default on")
	}
	if cfg.FetchTimeout() != 2500*time.Millisecond {
		t.Fatalf("fetch timeout = %s", cfg.FetchTimeout())
	}
	if cfg.DB.Table != "resolutions" {
		t.Fatalf("db.table = %q", cfg.DB.Table)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte(`server:
  port: 9090
resolver:
  max_redirect_depth: 3
  user_agent: "custom-agent/1.0"
download:
  allowed_content_types:
    - application/pdf
    - text/html
`)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Resolver.MaxRedirectDepth != 3 {
		t.Fatalf("max_redirect_depth = %d", cfg.Resolver.MaxRedirectDepth)
	}
	if cfg.Resolver.UserAgent != "custom-agent/1.0" {
		t.Fatalf("user_agent = %q", cfg.Resolver.UserAgent)
	}
	if len(cfg.Download.AllowedContentTypes) != 2 {
		t.Fatalf("allowed_content_types = %v", cfg.Download.AllowedContentTypes)
	}
	// Untouched sections keep their defaults.
	if cfg.Resolver.FetchTimeoutMs != 2500 {
		t.Fatalf("fetch_timeout_ms = %d", cfg.Resolver.FetchTimeoutMs)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "zero depth", mutate: func(c *Config) { c.Resolver.MaxRedirectDepth = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Resolver.FetchTimeoutMs = 0 }, wantErr: true},
		{name: "negative cache", mutate: func(c *Config) { c.Resolver.CacheCapacity = -1 }, wantErr: true},
		{name: "zero cache disables memoization", mutate: func(c *Config) { c.Resolver.CacheCapacity = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{
				Server:   ServerConfig{Port: 8080},
				Resolver: ResolverConfig{MaxRedirectDepth: 10, FetchTimeoutMs: 2500, CacheCapacity: 256},
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
