// Package main is the anivaultd entry point: it wires the engine core
// (config, cache, rate-limit runtime, TMDB client, pipeline, grouping,
// enrichment, organizer, journal) and dispatches the CLI surface described
// in the core's external interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anivault/anivault/internal/config"
	"github.com/anivault/anivault/internal/log"
	"github.com/anivault/anivault/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(64)
	}

	log.Configure(log.Config{Level: "info", Service: "anivault", Version: version.Version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var code int
	switch cmd {
	case "scan":
		code = runScan(ctx, args)
	case "match":
		code = runMatch(ctx, args)
	case "organize":
		code = runOrganize(ctx, args)
	case "rollback":
		code = runRollback(ctx, args)
	case "cache":
		code = runCache(ctx, args)
	case "serve":
		code = runServe(ctx, args)
	case "-h", "--help", "help":
		printUsage()
		code = 0
	case "-version", "--version", "version":
		fmt.Printf("anivaultd %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		code = 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		code = 64
	}

	os.Exit(code)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: anivaultd <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  scan <path>        scan a directory tree and parse filenames")
	fmt.Fprintln(os.Stderr, "  match <path>       scan, group, and enrich against TMDB")
	fmt.Fprintln(os.Stderr, "  organize <path>    build (and optionally execute) a reorganization plan")
	fmt.Fprintln(os.Stderr, "  rollback <plan-id> reverse a previously executed plan")
	fmt.Fprintln(os.Stderr, "  cache status|clear|verify inspect, purge, or integrity-check the TMDB response cache")
	fmt.Fprintln(os.Stderr, "  serve              run the diagnostics HTTP surface")
}

// loadConfig resolves the config file path from --config, applies
// ENV > File > Defaults precedence, and re-levels the logger once the
// effective log_level is known.
func loadConfig(fs *flag.FlagSet) (config.Config, error) {
	configPath := fs.Lookup("config").Value.String()
	if configPath == "" {
		if dataDir := os.Getenv("ANIVAULT_DATA_DIR"); dataDir != "" {
			if auto := filepath.Join(dataDir, "config.yaml"); fileExists(auto) {
				configPath = auto
			}
		}
	}
	loader := config.NewLoader()
	cfg, err := loader.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if cfg.LogLevel != "" {
		_ = log.SetLevel(cfg.LogLevel)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
