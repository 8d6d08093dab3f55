package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/anivault/anivault/internal/enrich"
	"github.com/anivault/anivault/internal/grouping"
	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/pipeline"
)

func runMatch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return 64
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: anivaultd match <path>")
		return 64
	}
	root := fs.Arg(0)

	cfg, err := loadConfig(fs)
	if err != nil {
		return fail("config error: %v", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return failErr("engine init error", err)
	}
	defer eng.Close()

	scanResult, err := pipeline.New().Run(ctx, root)
	if err != nil {
		return failErr("scan error", err)
	}

	groups := grouping.NewOrchestrator().Group(scanResult.Files)

	enricher := enrich.New(eng.tmdb)
	enriched, err := enrich.EnrichAll(ctx, enricher, groups)
	if err != nil {
		return failErr("enrich error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(enriched)

	lowest := lowestConfidence(enriched)
	switch lowest {
	case model.EnrichStatusLowConfidence:
		return 3
	case model.EnrichStatusNotFound, model.EnrichStatusError:
		return 69
	default:
		return 0
	}
}

// lowestConfidence reports the worst EnrichStatus across all groups, with
// matched as the best-case floor.
func lowestConfidence(groups []model.Group) model.EnrichStatus {
	worst := model.EnrichStatusMatched
	rank := map[model.EnrichStatus]int{
		model.EnrichStatusMatched:       0,
		model.EnrichStatusLowConfidence: 1,
		model.EnrichStatusNotFound:      2,
		model.EnrichStatusError:         3,
	}
	for _, g := range groups {
		if g.Enriched == nil {
			continue
		}
		if rank[g.Enriched.Status] > rank[worst] {
			worst = g.Enriched.Status
		}
	}
	return worst
}
