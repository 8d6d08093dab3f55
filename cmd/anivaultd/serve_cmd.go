package main

import (
	"context"
	"flag"

	"github.com/anivault/anivault/internal/diag"
	"github.com/anivault/anivault/internal/log"
)

func runServe(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	addr := fs.String("addr", ":8080", "diagnostics HTTP listen address")
	if err := fs.Parse(args); err != nil {
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

	s := &diag.Server{Cache: eng.cache, Runtime: eng.runtime}

	log.WithComponent("serve").Info().Str("addr", *addr).Msg("diagnostics server starting")
	if err := diag.Serve(ctx, *addr, s); err != nil {
		return failErr("serve error", err)
	}
	return 0
}
