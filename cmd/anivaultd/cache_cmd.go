package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	sqlitex "github.com/anivault/anivault/internal/persistence/sqlite"
)

func runCache(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: anivaultd cache status|clear|verify")
		return 64
	}

	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	sub := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 64
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return fail("config error: %v", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return failErr("engine init error", err)
	}
	defer eng.Close()

	switch sub {
	case "status":
		stats, err := eng.cache.Stats(ctx)
		if err != nil {
			return failErr("cache status error", err)
		}
		fmt.Printf("entries=%d hits=%d misses=%d expired=%d total_size=%d\n",
			stats.Entries, stats.Hits, stats.Misses, stats.ExpiredCount, stats.TotalSize)
		return 0

	case "clear":
		count, err := eng.cache.PurgeExpired(ctx)
		if err != nil {
			return failErr("cache clear error", err)
		}
		fmt.Printf("purged %d entries\n", count)
		return 0

	case "verify":
		problems, err := sqlitex.VerifyIntegrity(filepath.Join(cfg.CacheDir, "cache.db"), "quick")
		if err != nil {
			return failErr("cache verify error", err)
		}
		if len(problems) == 0 {
			fmt.Println("cache.db: ok")
			return 0
		}
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		return 74

	default:
		fmt.Fprintf(os.Stderr, "unknown cache subcommand: %s\n", sub)
		return 64
	}
}
