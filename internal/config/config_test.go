package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFileNoEnv(t *testing.T) {
	l := &Loader{}
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().TMDBRateLimit, cfg.TMDBRateLimit)
	assert.Empty(t, l.ConsumedEnvKeys())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "secret-key")
	t.Setenv("TMDB_RATE_LIMIT_RPS", "10")

	l := &Loader{}
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.TMDBAPIKey)
	assert.Equal(t, 10.0, cfg.TMDBRateLimit)
	assert.Contains(t, l.ConsumedEnvKeys(), "TMDB_API_KEY")
	assert.Contains(t, l.ConsumedEnvKeys(), "TMDB_RATE_LIMIT_RPS")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb_base_url: https://file.example\n"), 0o600))

	t.Setenv("TMDB_BASE_URL", "https://env.example")

	l := &Loader{}
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.TMDBBaseURL)
}

func TestLoad_FileOverridesDefaultsWhenNoEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl_hours: 48\n"), 0o600))

	l := &Loader{}
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
}

func TestLoad_RejectsUnknownYAMLFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_real_field: true\n"), 0o600))

	l := &Loader{}
	_, err := l.Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidatesRateLimitPositive(t *testing.T) {
	t.Setenv("TMDB_RATE_LIMIT_RPS", "-5")
	l := &Loader{}
	_, err := l.Load("")
	assert.Error(t, err)
}

func TestMasked_RedactsAPIKey(t *testing.T) {
	cfg := Config{TMDBAPIKey: "abc123"}
	masked := cfg.Masked()
	assert.Equal(t, "***redacted***", masked.TMDBAPIKey)
	assert.Equal(t, "abc123", cfg.TMDBAPIKey, "original must be unmodified")
}
