package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o600))
	}
}

func TestRun_ScansOnlyRecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Show.S01E01.mkv", "Show.S01E02.mp4", "readme.txt", "notes.nfo")

	p := New()
	res, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, res.Files, 2)
	assert.False(t, res.Cancelled)
}

func TestRun_RecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Season 1")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writeFixture(t, dir, "top.mkv")
	writeFixture(t, sub, "nested.mkv")

	p := New()
	res, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, res.Files, 2)
}

func TestRun_ParsesEachScannedFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Attack.on.Titan.S04E16.1080p.mkv")

	p := New()
	res, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, 4, res.Files[0].Parse.Season)
	assert.Equal(t, 16, res.Files[0].Parse.Episode)
}

func TestRun_RespectsCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFixture(t, dir, filepathBase(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(WithWorkers(1), WithQueueCapacity(1))
	res, err := p.Run(ctx, dir)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
}

func TestWithExtensions_OverridesDefaultSet(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.mkv", "b.custom")

	p := New(WithExtensions([]string{".custom"}))
	res, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Equal(t, "b.custom", filepath.Base(res.Files[0].Path))
}

func filepathBase(i int) string {
	return time.Now().Format("20060102") + "_" + string(rune('a'+i%26)) + ".mkv"
}
