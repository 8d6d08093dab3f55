package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/cache"
	"github.com/anivault/anivault/internal/config"
	sqlitex "github.com/anivault/anivault/internal/persistence/sqlite"
	"github.com/anivault/anivault/internal/ratelimit"
	"github.com/anivault/anivault/internal/tmdbclient"
)

// engine bundles the stateful components shared by match/organize/cache.
type engine struct {
	cfg     config.Config
	cache   *cache.Store
	runtime *ratelimit.Runtime
	tmdb    *tmdbclient.Client
}

func newEngine(cfg config.Config) (*engine, error) {
	store, err := cache.Open(filepath.Join(cfg.CacheDir, "cache.db"), sqlitex.DefaultConfig())
	if err != nil {
		return nil, err
	}

	rt := ratelimit.NewRuntime("tmdb")
	if cfg.TMDBRateLimit > 0 {
		rt.Bucket.SetRate(cfg.TMDBRateLimit)
	}
	if cfg.TMDBConcurrency > 0 {
		rt.Sem.Resize(cfg.TMDBConcurrency)
	}

	client := tmdbclient.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey, store, rt)

	return &engine{cfg: cfg, cache: store, runtime: rt, tmdb: client}, nil
}

func (e *engine) Close() error {
	return e.cache.Close()
}

// fail prints a usage-level failure and returns a generic nonzero code, for
// errors that never reach the typed apperr taxonomy (flag parsing, etc).
func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return 1
}

// failErr prints err and maps it to its sysexits-style exit code via the
// apperr taxonomy when err carries one, else falls back to 1.
func failErr(context string, err error) int {
	fmt.Fprintf(os.Stderr, "%s: %v\n", context, err)
	if err == nil {
		return 0
	}
	return apperr.ExitCode(err)
}
