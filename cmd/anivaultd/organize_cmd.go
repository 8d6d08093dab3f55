package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anivault/anivault/internal/enrich"
	"github.com/anivault/anivault/internal/grouping"
	"github.com/anivault/anivault/internal/journal"
	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/organizer"
	"github.com/anivault/anivault/internal/pipeline"
)

func runOrganize(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("organize", flag.ContinueOnError)
	fs.String("config", "", "path to config file")
	targetRoot := fs.String("target", "", "destination root directory")
	dryRun := fs.Bool("dry-run", false, "construct and print the plan without executing it")
	byResolution := fs.Bool("by-resolution", false, "insert a resolution sub-folder for mixed-quality groups")
	conflictPolicy := fs.String("conflict-policy", "skip", "skip|overwrite|suffix")
	operation := fs.String("operation", "move", "move|copy|link")
	if err := fs.Parse(args); err != nil {
		return 64
	}
	if fs.NArg() != 1 || *targetRoot == "" {
		fmt.Fprintln(os.Stderr, "usage: anivaultd organize <path> --target <dir> [--dry-run] [--by-resolution] [--conflict-policy skip|overwrite|suffix] [--operation move|copy|link]")
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
	enriched, err := enrich.EnrichAll(ctx, enrich.New(eng.tmdb), groups)
	if err != nil {
		return failErr("enrich error", err)
	}

	opts := organizer.Options{
		TargetRoot:     *targetRoot,
		DryRun:         *dryRun,
		ByResolution:   *byResolution,
		ConflictPolicy: model.ConflictPolicy(*conflictPolicy),
		Operation:      model.PlanItemAction(*operation),
	}
	plan := organizer.BuildPlan("run-"+filepath.Base(root), enriched, opts)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(plan)

	for _, item := range plan.Items {
		if item.Action == model.ActionSkip && item.ConflictPolicy == model.ConflictSkip && item.Reason != "" {
			return 65
		}
	}

	if *dryRun {
		return 0
	}

	jr, err := journal.Open(filepath.Join(cfg.CacheDir, "journal"), plan.ID)
	if err != nil {
		return failErr("journal open error", err)
	}
	defer jr.Close()

	if err := organizer.Execute(ctx, jr, *targetRoot, plan); err != nil {
		return failErr("execute error", err)
	}

	return 0
}
