package organizer

import (
	"fmt"
	"path/filepath"

	"github.com/anivault/anivault/internal/model"
)

// Options configures plan construction.
type Options struct {
	TargetRoot     string
	DryRun         bool
	ByResolution   bool
	ConflictPolicy model.ConflictPolicy
	Operation      model.PlanItemAction // move|copy|link; defaults to move
	ExistsFunc     func(path string) bool // overridable for tests; defaults to os.Stat
}

func (o Options) conflictPolicy() model.ConflictPolicy {
	if o.ConflictPolicy == "" {
		return model.ConflictSkip
	}
	return o.ConflictPolicy
}

func (o Options) operation() model.PlanItemAction {
	if o.Operation == "" {
		return model.ActionMove
	}
	return o.Operation
}

// mediaKind returns "series" or "movies" for the category directory.
func mediaKind(g model.Group) string {
	if g.Enriched != nil && g.Enriched.MediaType == "movie" {
		return "movies"
	}
	if len(g.Members) > 0 && g.Members[0].Parse.HasEpisodeInfo() {
		return "series"
	}
	return "movies"
}

// canonicalTitle prefers the enriched TMDB title, falling back to the
// group's own title when enrichment didn't match.
func canonicalTitle(g model.Group) string {
	if g.Enriched != nil && g.Enriched.Status == model.EnrichStatusMatched && g.Enriched.CanonicalName != "" {
		return g.Enriched.CanonicalName
	}
	return g.Title
}

// hasMixedResolutions reports whether a group's members carry more than one
// distinct, nonempty Quality tag.
func hasMixedResolutions(g model.Group) bool {
	seen := make(map[string]bool)
	for _, f := range g.Members {
		if f.Parse.Quality == "" {
			continue
		}
		seen[f.Parse.Quality] = true
	}
	return len(seen) > 1
}

// canonicalBasename renders a member's destination filename from the
// group's canonical title rather than preserving the original release
// name: "Title - S01E24 - 1080p.mkv" for episodic members, "Title
// (year).ext" for movies with a known year, else just "Title.ext".
func canonicalBasename(g model.Group, f model.ScannedFile) string {
	title := canonicalTitle(g)
	ext := filepath.Ext(f.Path)

	if f.Parse.Season > 0 && f.Parse.Episode > 0 {
		base := fmt.Sprintf("%s - S%02dE%02d", title, f.Parse.Season, f.Parse.Episode)
		if f.Parse.Quality != "" {
			base += " - " + f.Parse.Quality
		}
		return base + ext
	}

	if g.Enriched != nil && g.Enriched.Year > 0 {
		return fmt.Sprintf("%s (%d)%s", title, g.Enriched.Year, ext)
	}
	return title + ext
}

// DestinationPath builds the sanitized destination path (relative to
// opts.TargetRoot) for one group member.
func DestinationPath(g model.Group, f model.ScannedFile, opts Options) string {
	parts := []string{mediaKind(g), SanitizeFilename(canonicalTitle(g))}

	if f.Parse.Season > 0 {
		parts = append(parts, fmt.Sprintf("Season %02d", f.Parse.Season))
	}

	if opts.ByResolution && hasMixedResolutions(g) && f.Parse.Quality != "" {
		parts = append(parts, SanitizeFilename(f.Parse.Quality))
	}

	parts = append(parts, SanitizeFilename(canonicalBasename(g, f)))

	return filepath.Join(parts...)
}
