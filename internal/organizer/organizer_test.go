package organizer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anivault/anivault/internal/journal"
	"github.com/anivault/anivault/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename_ReplacesForbiddenChars(t *testing.T) {
	got := SanitizeFilename(`My:Show / "Title"?.mkv`)
	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, `"`)
	assert.NotContains(t, got, "?")
}

func TestSanitizeFilename_TrimsTrailingDotsAndSpaces(t *testing.T) {
	got := SanitizeFilename("Show Title. . ")
	assert.Equal(t, "Show Title", got)
}

func TestSanitizeFilename_CapsAtMaxBytes(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), maxFilenameBytes)
}

func seriesGroup() model.Group {
	return model.Group{
		ID:    "g1",
		Title: "My Show",
		Members: []model.ScannedFile{
			{Path: "/src/My.Show.S01E01.1080p.mkv", Parse: model.ParseResult{Title: "My Show", Season: 1, Episode: 1, Quality: "1080p"}},
			{Path: "/src/My.Show.S01E02.1080p.mkv", Parse: model.ParseResult{Title: "My Show", Season: 1, Episode: 2, Quality: "1080p"}},
		},
	}
}

func TestDestinationPath_IncludesSeasonFolder(t *testing.T) {
	g := seriesGroup()
	opts := Options{TargetRoot: "/target"}
	dest := DestinationPath(g, g.Members[0], opts)
	assert.Equal(t, filepath.Join("series", "My Show", "Season 01", "My Show - S01E01 - 1080p.mkv"), dest)
}

func TestDestinationPath_UsesEnrichedCanonicalName(t *testing.T) {
	g := seriesGroup()
	g.Enriched = &model.EnrichedMetadata{Status: model.EnrichStatusMatched, CanonicalName: "My Official Show"}
	dest := DestinationPath(g, g.Members[0], Options{TargetRoot: "/target"})
	assert.Contains(t, dest, "My Official Show")
}

func TestDestinationPath_CanonicalizesBasenameToTitleSeasonEpisodeQuality(t *testing.T) {
	g := model.Group{
		Title: "Jujutsu Kaisen",
		Members: []model.ScannedFile{
			{
				Path:  "/src/[SubsPlease] Jujutsu Kaisen - 24 (1080p) [E82B1F6A].mkv",
				Parse: model.ParseResult{Title: "Jujutsu Kaisen", Season: 1, Episode: 24, Quality: "1080p"},
			},
		},
	}
	dest := DestinationPath(g, g.Members[0], Options{TargetRoot: "/target"})
	assert.Equal(t, filepath.Join("series", "Jujutsu Kaisen", "Season 01", "Jujutsu Kaisen - S01E24 - 1080p.mkv"), dest)
}

func TestBuildPlan_SkipsExistingDestinationByDefault(t *testing.T) {
	g := seriesGroup()
	opts := Options{
		TargetRoot: "/target",
		ExistsFunc: func(path string) bool { return true },
	}
	plan := BuildPlan("run-1", []model.Group{g}, opts)
	require.Len(t, plan.Items, 2)
	for _, item := range plan.Items {
		assert.Equal(t, model.ActionSkip, item.Action)
	}
}

func TestBuildPlan_SuffixesOnConflictWhenPolicySet(t *testing.T) {
	g := seriesGroup()
	opts := Options{
		TargetRoot:     "/target",
		ConflictPolicy: model.ConflictSuffix,
		// Every planned destination exists; its "-1" variant does not.
		ExistsFunc: func(path string) bool { return !strings.HasSuffix(path, "-1.mkv") },
	}
	plan := BuildPlan("run-1", []model.Group{g}, opts)
	require.Len(t, plan.Items, 2)
	assert.Contains(t, plan.Items[0].DestPath, "-1")
}

func TestBuildPlan_DeduplicatesWithinSamePlan(t *testing.T) {
	g := model.Group{
		Title: "My Show",
		Members: []model.ScannedFile{
			{Path: "/src/a.mkv", Parse: model.ParseResult{Title: "My Show"}},
			{Path: "/src/b.mkv", Parse: model.ParseResult{Title: "My Show"}},
		},
	}
	opts := Options{TargetRoot: "/target", ConflictPolicy: model.ConflictSuffix, ExistsFunc: func(string) bool { return false }}
	plan := BuildPlan("run-1", []model.Group{g}, opts)
	require.Len(t, plan.Items, 2)
	assert.NotEqual(t, plan.Items[0].DestPath, plan.Items[1].DestPath)
}

func TestExecute_MovesFilesAndJournals(t *testing.T) {
	tmp := t.TempDir()
	srcDir := filepath.Join(tmp, "src")
	targetRoot := filepath.Join(tmp, "target")
	require.NoError(t, os.MkdirAll(srcDir, 0o750))
	require.NoError(t, os.MkdirAll(targetRoot, 0o750))

	srcFile := filepath.Join(srcDir, "My.Show.S01E01.mkv")
	require.NoError(t, os.WriteFile(srcFile, []byte("data"), 0o600))

	g := model.Group{
		Title: "My Show",
		Members: []model.ScannedFile{
			{Path: srcFile, Parse: model.ParseResult{Title: "My Show", Season: 1, Episode: 1}},
		},
	}
	opts := Options{TargetRoot: targetRoot, ExistsFunc: func(string) bool { return false }}
	plan := BuildPlan("run-1", []model.Group{g}, opts)

	jr, err := journal.Open(filepath.Join(tmp, "journal"), plan.ID)
	require.NoError(t, err)
	defer jr.Close()

	require.NoError(t, Execute(context.Background(), jr, targetRoot, plan))

	assert.NoFileExists(t, srcFile)
	assert.FileExists(t, plan.Items[0].DestPath)

	entries, err := journal.Read(filepath.Join(tmp, "journal"), plan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Success)
}

func TestExecute_CopyLeavesSourceInPlace(t *testing.T) {
	tmp := t.TempDir()
	srcDir := filepath.Join(tmp, "src")
	targetRoot := filepath.Join(tmp, "target")
	require.NoError(t, os.MkdirAll(srcDir, 0o750))
	require.NoError(t, os.MkdirAll(targetRoot, 0o750))

	srcFile := filepath.Join(srcDir, "My.Show.S01E01.mkv")
	require.NoError(t, os.WriteFile(srcFile, []byte("data"), 0o600))

	g := model.Group{
		Title: "My Show",
		Members: []model.ScannedFile{
			{Path: srcFile, Parse: model.ParseResult{Title: "My Show", Season: 1, Episode: 1}},
		},
	}
	opts := Options{TargetRoot: targetRoot, Operation: model.ActionCopy, ExistsFunc: func(string) bool { return false }}
	plan := BuildPlan("run-1", []model.Group{g}, opts)

	jr, err := journal.Open(filepath.Join(tmp, "journal"), plan.ID)
	require.NoError(t, err)
	defer jr.Close()

	require.NoError(t, Execute(context.Background(), jr, targetRoot, plan))

	assert.FileExists(t, srcFile)
	assert.FileExists(t, plan.Items[0].DestPath)
}

func TestBuildPlan_AttachesGroupMetadataToItem(t *testing.T) {
	g := seriesGroup()
	g.Enriched = &model.EnrichedMetadata{Status: model.EnrichStatusMatched, CanonicalName: "My Official Show"}
	opts := Options{TargetRoot: "/target", ExistsFunc: func(string) bool { return false }}
	plan := BuildPlan("run-1", []model.Group{g}, opts)
	require.NotEmpty(t, plan.Items)
	require.NotNil(t, plan.Items[0].Metadata)
	assert.Equal(t, "My Official Show", plan.Items[0].Metadata.CanonicalName)
}
