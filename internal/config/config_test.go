// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Server.BaseURL == "" {
		t.Error("default base URL should not be empty")
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
}

func TestSaveAndLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://api.example.com"
	cfg.Session.Email = "user@example.com"
	cfg.Session.Token = "tok-123"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	// Token-bearing file must not be world readable.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	loaded := Default()
	if err := LoadFrom(loaded, path); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Server.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", loaded.Server.BaseURL)
	}
	if loaded.Session.Token != "tok-123" {
		t.Errorf("Token = %q", loaded.Session.Token)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONSIGLIERE_SERVER_URL", "http://override:9000")
	t.Setenv("CONSIGLIERE_TOKEN", "env-token")
	t.Setenv("CONSIGLIERE_VERBOSE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:9000" {
		t.Errorf("BaseURL = %q, env override not applied", cfg.Server.BaseURL)
	}
	if cfg.Session.Token != "env-token" {
		t.Errorf("Token = %q, env override not applied", cfg.Session.Token)
	}
	if !cfg.Logging.Verbose {
		t.Error("Verbose should be set by CONSIGLIERE_VERBOSE=true")
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/api"},
		{"no scheme", "localhost:8000"},
		{"bad scheme", "ftp://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.BaseURL = tt.url
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted %q", tt.url)
			}
		})
	}
}

func TestValidateRejectsUnknownTheme(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "solarized"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject unknown theme")
	}
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.SidebarWidth <= 0 {
		t.Error("SidebarWidth should be defaulted")
	}
}

func TestCachePathOverride(t *testing.T) {
	cfg := Default()
	cfg.Cache.Path = "/tmp/custom.db"
	got, err := cfg.CachePath()
	if err != nil {
		t.Fatalf("CachePath: %v", err)
	}
	if got != "/tmp/custom.db" {
		t.Errorf("CachePath = %q", got)
	}
}

func TestLoggedIn(t *testing.T) {
	cfg := Default()
	if cfg.LoggedIn() {
		t.Error("fresh config should not be logged in")
	}
	cfg.Session.Token = "t"
	if !cfg.LoggedIn() {
		t.Error("config with token should be logged in")
	}
}
