package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/anivault/anivault/internal/model"
	"github.com/google/uuid"
)

func defaultExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BuildPlan translates a set of enriched Groups into a deterministic Plan.
// Destination paths are sorted (season, episode, path) within each group,
// matching the ordering guarantee the rest of the engine relies on.
func BuildPlan(runID string, groups []model.Group, opts Options) model.Plan {
	exists := opts.ExistsFunc
	if exists == nil {
		exists = defaultExists
	}
	conflictPolicy := opts.conflictPolicy()
	operation := opts.operation()

	plan := model.Plan{
		ID:        uuid.NewString(),
		RunID:     runID,
		CreatedAt: time.Now(),
		DryRun:    opts.DryRun,
	}

	claimed := make(map[string]bool)

	for _, g := range groups {
		members := make([]model.ScannedFile, len(g.Members))
		copy(members, g.Members)
		sort.Slice(members, func(i, j int) bool {
			if members[i].Parse.Season != members[j].Parse.Season {
				return members[i].Parse.Season < members[j].Parse.Season
			}
			if members[i].Parse.Episode != members[j].Parse.Episode {
				return members[i].Parse.Episode < members[j].Parse.Episode
			}
			return members[i].Path < members[j].Path
		})

		for _, f := range members {
			relDest := DestinationPath(g, f, opts)
			absDest := filepath.Join(opts.TargetRoot, relDest)

			item := model.PlanItem{
				SourcePath:     f.Path,
				DestPath:       absDest,
				Action:         operation,
				ConflictPolicy: conflictPolicy,
				Metadata:       g.Enriched,
			}

			item = resolveConflict(item, exists, claimed)
			claimed[item.DestPath] = true
			plan.Items = append(plan.Items, item)
		}
	}

	return plan
}

// resolveConflict applies the configured conflict policy when DestPath
// already exists on disk or has already been claimed by an earlier item in
// this same plan.
func resolveConflict(item model.PlanItem, exists func(string) bool, claimed map[string]bool) model.PlanItem {
	if !exists(item.DestPath) && !claimed[item.DestPath] {
		return item
	}

	switch item.ConflictPolicy {
	case model.ConflictOverwrite:
		item.Reason = "destination exists; overwrite requested"
		return item

	case model.ConflictSuffix:
		dir := filepath.Dir(item.DestPath)
		ext := filepath.Ext(item.DestPath)
		base := strings.TrimSuffix(filepath.Base(item.DestPath), ext)
		for i := 1; ; i++ {
			candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
			if !exists(candidate) && !claimed[candidate] {
				item.DestPath = candidate
				item.Reason = fmt.Sprintf("destination existed; suffixed -%d", i)
				return item
			}
		}

	default: // ConflictSkip
		item.Action = model.ActionSkip
		item.Reason = "destination exists; skip policy"
		return item
	}
}
