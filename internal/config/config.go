// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// Consigliere terminal client.
//
// Configuration lives in TOML at ~/.consigliere/config.toml, with built-in
// defaults and environment variable overrides:
//
//	CONSIGLIERE_SERVER_URL  backend base URL
//	CONSIGLIERE_TOKEN       bearer token (overrides the stored session)
//	CONSIGLIERE_VERBOSE     enable debug logging ("1"/"true")
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/consigliere-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	Version string `toml:"version"`

	// Server is the backend connection configuration.
	Server ServerConfig `toml:"server"`

	// Session is the stored authentication state.
	Session SessionConfig `toml:"session"`

	// UI configuration.
	UI UIConfig `toml:"ui"`

	// Cache configuration for the local sqlite mirror.
	Cache CacheConfig `toml:"cache"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	// Relative image paths in step payloads resolve against it.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for transient REST failures.
	MaxRetries int `toml:"max_retries"`
	// RequestsPerSec paces outgoing REST requests (0 = unpaced).
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// SessionConfig is the persisted authentication state. The token is written
// by the login command and cleared by logout.
type SessionConfig struct {
	Email string `toml:"email"`
	Token string `toml:"token"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark" or "light"; it selects the glamour style as well.
	Theme string `toml:"theme"`
	// SidebarWidth is the chat list width in columns.
	SidebarWidth int `toml:"sidebar_width"`
	// PanelWidth is the step detail panel width in columns.
	PanelWidth int `toml:"panel_width"`
}

// CacheConfig controls the local sqlite mirror of chats and dossiers.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	// Path overrides the default cache location (~/.consigliere/cache.db).
	Path string `toml:"path"`
}

// LoggingConfig controls the debug log.
type LoggingConfig struct {
	Verbose bool `toml:"verbose"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSecs:    30,
			MaxRetries:     3,
			RequestsPerSec: 10,
		},
		UI: UIConfig{
			Theme:        "dark",
			SidebarWidth: 30,
			PanelWidth:   44,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// Dir returns the configuration directory (~/.consigliere).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".consigliere"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the configuration from disk, falling back to defaults when the
// file does not exist, and applies environment overrides on top.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFrom(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFrom decodes TOML from an explicit path into cfg.
func LoadFrom(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Save persists the configuration. The file holds a bearer token, so it is
// written 0600 and atomically.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo persists the configuration to an explicit path.
func SaveTo(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0o600)
}

// =============================================================================
// OVERRIDES / VALIDATION
// =============================================================================

// ApplyEnvOverrides applies environment variables on top of loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CONSIGLIERE_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("CONSIGLIERE_TOKEN"); v != "" {
		c.Session.Token = v
	}
	if v := os.Getenv("CONSIGLIERE_VERBOSE"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.Verbose = true
	}
}

// setDefaults fills zero values that TOML decoding may have left behind.
func (c *Config) setDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Server.MaxRetries <= 0 {
		c.Server.MaxRetries = def.Server.MaxRetries
	}
	if c.Server.RequestsPerSec <= 0 {
		c.Server.RequestsPerSec = def.Server.RequestsPerSec
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if c.UI.PanelWidth <= 0 {
		c.UI.PanelWidth = def.UI.PanelWidth
	}
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not an absolute URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("server.base_url must use http or https")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q: must be dark or light", c.UI.Theme)
	}
	return nil
}

// CachePath resolves the sqlite cache location.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// LoggedIn reports whether a bearer token is available.
func (c *Config) LoggedIn() bool {
	return c.Session.Token != ""
}

// =============================================================================
// SINGLETON
// =============================================================================

var (
	globalConfig *Config
	globalOnce   sync.Once
	globalMu     sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first access.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalMu.Lock()
		globalConfig = cfg
		globalMu.Unlock()
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration. Used by the reload watcher
// and by tests.
func SetGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}
