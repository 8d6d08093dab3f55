// Package config loads AniVault's runtime configuration with precedence
// ENV > YAML file > built-in defaults, tracking which environment
// variables were actually consumed for diagnostics.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/anivault/anivault/internal/core/urlutil"
	"gopkg.in/yaml.v3"
)

// Config is the engine's full runtime configuration.
type Config struct {
	TMDBAPIKey      string
	TMDBBaseURL     string
	TMDBRateLimit   float64
	TMDBConcurrency int
	CacheDir        string
	CacheTTL        time.Duration
	LogLevel        string
	DataDir         string
}

// fileConfig mirrors the YAML file's on-disk shape. CacheTTLHours is a plain
// integer in the file; Config.CacheTTL is the parsed time.Duration used at
// runtime, so the two are kept separate rather than unmarshaling directly
// into a time.Duration field (which would take the YAML int as nanoseconds).
type fileConfig struct {
	TMDBAPIKey      *string  `yaml:"tmdb_api_key"`
	TMDBBaseURL     *string  `yaml:"tmdb_base_url"`
	TMDBRateLimit   *float64 `yaml:"tmdb_rate_limit_rps"`
	TMDBConcurrency *int     `yaml:"tmdb_concurrent_requests"`
	CacheDir        *string  `yaml:"cache_dir"`
	CacheTTLHours   *int     `yaml:"cache_ttl_hours"`
	LogLevel        *string  `yaml:"log_level"`
	DataDir         *string  `yaml:"data_dir"`
}

func (fc fileConfig) applyTo(cfg *Config) {
	if fc.TMDBAPIKey != nil {
		cfg.TMDBAPIKey = *fc.TMDBAPIKey
	}
	if fc.TMDBBaseURL != nil {
		cfg.TMDBBaseURL = *fc.TMDBBaseURL
	}
	if fc.TMDBRateLimit != nil {
		cfg.TMDBRateLimit = *fc.TMDBRateLimit
	}
	if fc.TMDBConcurrency != nil {
		cfg.TMDBConcurrency = *fc.TMDBConcurrency
	}
	if fc.CacheDir != nil {
		cfg.CacheDir = *fc.CacheDir
	}
	if fc.CacheTTLHours != nil {
		cfg.CacheTTL = time.Duration(*fc.CacheTTLHours) * time.Hour
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
}

// Defaults returns the built-in configuration baseline.
func Defaults() Config {
	return Config{
		TMDBBaseURL:     "https://api.themoviedb.org/3",
		TMDBRateLimit:   35,
		TMDBConcurrency: 4,
		CacheDir:        "./.anivault/cache",
		CacheTTL:        14 * 24 * time.Hour,
		LogLevel:        "info",
		DataDir:         "./.anivault/data",
	}
}

// Loader assembles a Config from a YAML file and the environment, tracking
// every environment variable it consumed so callers can log it.
type Loader struct {
	Environ         func() []string
	consumedEnvKeys []string
}

// NewLoader builds a Loader backed by the real OS environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// ConsumedEnvKeys returns the environment variable names that influenced the
// last Load call, in the order they were read.
func (l *Loader) ConsumedEnvKeys() []string {
	return l.consumedEnvKeys
}

// Load reads defaults, overlays a strict YAML file (if path is non-empty and
// exists), then overlays recognized environment variables.
func (l *Loader) Load(path string) (Config, error) {
	l.consumedEnvKeys = nil
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			b, err := os.ReadFile(path)
			if err != nil {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
			var fc fileConfig
			dec := yaml.NewDecoder(bytes.NewReader(b))
			dec.KnownFields(true)
			if err := dec.Decode(&fc); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
			fc.applyTo(&cfg)
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	l.overlayEnv(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) overlayEnv(cfg *Config) {
	if v := l.lookup("TMDB_API_KEY"); v != "" {
		cfg.TMDBAPIKey = v
	}
	if v := l.lookup("TMDB_BASE_URL"); v != "" {
		cfg.TMDBBaseURL = v
	}
	if v := l.lookup("TMDB_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TMDBRateLimit = f
		}
	}
	if v := l.lookup("TMDB_CONCURRENT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TMDBConcurrency = n
		}
	}
	if v := l.lookup("ANIVAULT_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := l.lookup("ANIVAULT_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTL = time.Duration(n) * time.Hour
		}
	}
	if v := l.lookup("ANIVAULT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := l.lookup("ANIVAULT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
}

// lookup reads key from the environment, recording it as consumed whenever
// it is set, even to an empty string. An unset key yields "" and is not
// recorded.
func (l *Loader) lookup(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return ""
	}
	l.consumedEnvKeys = append(l.consumedEnvKeys, key)
	return v
}

func validate(cfg Config) error {
	if cfg.TMDBRateLimit <= 0 {
		return fmt.Errorf("config: tmdb_rate_limit_rps must be positive, got %v", cfg.TMDBRateLimit)
	}
	if cfg.TMDBConcurrency < 1 {
		return fmt.Errorf("config: tmdb_concurrent_requests must be >= 1, got %d", cfg.TMDBConcurrency)
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("config: cache_dir must not be empty")
	}
	return nil
}

// Masked returns a copy of cfg with the API key redacted and the base URL's
// userinfo/query stripped, safe for logging.
func (cfg Config) Masked() Config {
	cp := cfg
	if cp.TMDBAPIKey != "" {
		cp.TMDBAPIKey = "***redacted***"
	}
	if cp.TMDBBaseURL != "" {
		cp.TMDBBaseURL = urlutil.SanitizeURL(cp.TMDBBaseURL)
	}
	return cp
}
