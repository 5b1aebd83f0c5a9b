// Package config loads the server configuration.
//
// Values are layered, lowest precedence first:
//  1. defaults (Default)
//  2. a YAML file, if one is given or MDJ_CONFIG names one
//  3. environment variables prefixed MDJ_, e.g. MDJ_PORT=9090
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// DBPath is the SQLite database file; ":memory:" for a throwaway store.
	DBPath string `koanf:"db_path"`

	// JWTSecret signs session tokens and derives the key that seals stored
	// GitHub tokens. Generate with: openssl rand -hex 32
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTTL is how long a session cookie stays valid.
	SessionTTL time.Duration `koanf:"session_ttl"`

	GitHubClientID     string `koanf:"github_client_id"`
	GitHubClientSecret string `koanf:"github_client_secret"`
	GitHubCallbackURL  string `koanf:"github_callback_url"`

	// GitHubAPIURL overrides the REST base URL (GitHub Enterprise). Empty
	// means api.github.com.
	GitHubAPIURL string `koanf:"github_api_url"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StatsWindowDays is the trailing window of GET /api/github/stats.
	StatsWindowDays int `koanf:"stats_window_days"`

	// EventsPageSize is how many events are requested from GitHub (max 100).
	EventsPageSize int `koanf:"events_page_size"`
}

// Default returns a Config with every default filled in.
func Default() *Config {
	return &Config{
		Port:            8080,
		DBPath:          "data/mydevjourney.db",
		SessionTTL:      30 * 24 * time.Hour,
		LogLevel:        "info",
		StatsWindowDays: 30,
		EventsPageSize:  100,
	}
}

// Validate checks the values every command needs.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	}
	if c.StatsWindowDays < 1 {
		return fmt.Errorf("%w: stats_window_days must be at least 1", ErrInvalidConfig)
	}
	if c.EventsPageSize < 1 || c.EventsPageSize > 100 {
		return fmt.Errorf("%w: events_page_size must be between 1 and 100", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateServer checks the extra values the HTTP server needs for sign-in.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("%w: jwt_secret must be at least 32 characters", ErrInvalidConfig)
	}
	if c.GitHubClientID == "" || c.GitHubClientSecret == "" {
		return fmt.Errorf("%w: github_client_id and github_client_secret are required", ErrInvalidConfig)
	}
	return nil
}

// CallbackURL returns the OAuth callback, defaulting to localhost on Port.
func (c *Config) CallbackURL() string {
	if c.GitHubCallbackURL != "" {
		return c.GitHubCallbackURL
	}
	return fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Port)
}

// SlogLevel returns LogLevel as a slog.Level. Validate has already
// rejected unknown names, so this falls back to info silently.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, name)
}
