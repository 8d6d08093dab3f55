package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anivault/anivault/internal/journal"
)

func runRollback(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("rollback", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return 64
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: anivaultd rollback <plan-id>")
		return 64
	}
	planID := fs.Arg(0)

	cfg, err := loadConfig(fs)
	if err != nil {
		return fail("config error: %v", err)
	}

	count, err := journal.Reverse(filepath.Join(cfg.CacheDir, "journal"), planID)
	if err != nil {
		if err == journal.ErrJournalMissing {
			fmt.Fprintf(os.Stderr, "journal for plan %s not found\n", planID)
			return 66
		}
		return failErr("rollback error", err)
	}

	fmt.Printf("reversed %d operations\n", count)
	return 0
}
