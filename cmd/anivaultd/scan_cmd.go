package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/anivault/anivault/internal/log"
	"github.com/anivault/anivault/internal/pipeline"
)

func runScan(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	workers := fs.Int("workers", 0, "worker goroutine count (0 = default)")
	format := fs.String("format", "text", "output format: text|json")
	if err := fs.Parse(args); err != nil {
		return 64
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: anivaultd scan <path>")
		return 64
	}
	root := fs.Arg(0)

	var opts []pipeline.Option
	if *workers > 0 {
		opts = append(opts, pipeline.WithWorkers(*workers))
	}
	p := pipeline.New(opts...)

	result, err := p.Run(ctx, root)
	if err != nil {
		log.WithComponent("scan").Error().Err(err).Msg("scan failed")
		return 74
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result.Files)
	} else {
		for _, f := range result.Files {
			fmt.Printf("%s\ttitle=%q season=%d episode=%d confidence=%.2f\n",
				f.Path, f.Parse.Title, f.Parse.Season, f.Parse.Episode, f.Parse.Confidence)
		}
	}

	if result.Cancelled {
		return 2
	}
	return 0
}
