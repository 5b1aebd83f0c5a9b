package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mydevjourney/internal/config"
)

// clearEnv unsets every MDJ_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MDJ_CONFIG", "MDJ_PORT", "MDJ_DB_PATH", "MDJ_JWT_SECRET", "MDJ_SESSION_TTL",
		"MDJ_GITHUB_CLIENT_ID", "MDJ_GITHUB_CLIENT_SECRET", "MDJ_GITHUB_CALLBACK_URL",
		"MDJ_GITHUB_API_URL", "MDJ_LOG_LEVEL", "MDJ_STATS_WINDOW_DAYS", "MDJ_EVENTS_PAGE_SIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/mydevjourney.db", cfg.DBPath)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.StatsWindowDays)
	assert.Equal(t, 100, cfg.EventsPageSize)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.CallbackURL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MDJ_PORT", "9090")
	t.Setenv("MDJ_DB_PATH", ":memory:")
	t.Setenv("MDJ_SESSION_TTL", "12h")
	t.Setenv("MDJ_GITHUB_CLIENT_ID", "client-id")
	t.Setenv("MDJ_LOG_LEVEL", "debug")
	t.Setenv("MDJ_STATS_WINDOW_DAYS", "7")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "client-id", cfg.GitHubClientID)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 7, cfg.StatsWindowDays)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: 7070\ngithub_callback_url: https://journey.example.com/auth/github/callback\nevents_page_size: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("MDJ_CONFIG", path)
	t.Setenv("MDJ_EVENTS_PAGE_SIZE", "25") // env beats file

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "https://journey.example.com/auth/github/callback", cfg.CallbackURL())
	assert.Equal(t, 25, cfg.EventsPageSize)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrLoadConfig))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "MDJ_PORT", "70000"},
		{"zero window", "MDJ_STATS_WINDOW_DAYS", "0"},
		{"page too large", "MDJ_EVENTS_PAGE_SIZE", "500"},
		{"unknown level", "MDJ_LOG_LEVEL", "chatty"},
		{"negative ttl", "MDJ_SESSION_TTL", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load("")
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := config.Default()
	assert.ErrorIs(t, cfg.ValidateServer(), config.ErrInvalidConfig)

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.ErrorIs(t, cfg.ValidateServer(), config.ErrInvalidConfig, "github credentials still missing")

	cfg.GitHubClientID = "id"
	cfg.GitHubClientSecret = "secret"
	assert.NoError(t, cfg.ValidateServer())
}
