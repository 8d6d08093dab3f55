// Package pipeline walks a directory tree and produces ScannedFile records
// through a bounded producer/worker/collector graph, so memory use stays
// independent of tree size.
package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anivault/anivault/internal/log"
	"github.com/anivault/anivault/internal/metrics"
	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/parser"
)

// defaultExtensions are the media file extensions recognized by the scanner.
var defaultExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true, ".ts": true,
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the parser worker pool size.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueCapacity sets the bounded queue capacity between stages.
func WithQueueCapacity(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.queueCapacity = n
		}
	}
}

// WithExtensions overrides the set of recognized media extensions.
func WithExtensions(exts []string) Option {
	return func(p *Pipeline) {
		set := make(map[string]bool, len(exts))
		for _, e := range exts {
			set[strings.ToLower(e)] = true
		}
		p.extensions = set
	}
}

// Pipeline walks a directory and parses matching filenames concurrently.
type Pipeline struct {
	workers       int
	queueCapacity int
	extensions    map[string]bool
}

// New builds a Pipeline with defaults: 4 workers, queue capacity 1024, the
// default media extension set.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		workers:       4,
		queueCapacity: 1024,
		extensions:    defaultExtensions,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of a scan: the records produced plus whether the
// run was cut short by cancellation.
type Result struct {
	Files     []model.ScannedFile
	Cancelled bool
}

// Run walks root, parses recognized files, and returns the collected
// records. On context cancellation, producers stop enqueuing and workers
// drain the items already in flight; a partial Result is returned with
// Cancelled=true rather than an error.
func (p *Pipeline) Run(ctx context.Context, root string) (Result, error) {
	paths := make(chan string, p.queueCapacity)
	filesCh := make(chan model.ScannedFile, p.queueCapacity)

	var walkErr error
	var producerWG sync.WaitGroup
	producerWG.Add(1)
	go func() {
		defer producerWG.Done()
		defer close(paths)
		walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				log.L().Warn().Str(log.FieldPath, path).Err(err).Msg("stat failed, skipping")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !p.extensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			select {
			case paths <- path:
			case <-ctx.Done():
				return filepath.SkipAll
			}
			return nil
		})
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			p.worker(ctx, paths, filesCh)
		}()
	}

	go func() {
		workerWG.Wait()
		close(filesCh)
	}()

	var files []model.ScannedFile
	for f := range filesCh {
		files = append(files, f)
	}
	producerWG.Wait()

	if walkErr != nil && walkErr != filepath.SkipAll {
		return Result{Files: files, Cancelled: ctx.Err() != nil}, walkErr
	}
	return Result{Files: files, Cancelled: ctx.Err() != nil}, nil
}

func (p *Pipeline) worker(ctx context.Context, paths <-chan string, out chan<- model.ScannedFile) {
	for path := range paths {
		select {
		case <-ctx.Done():
			return
		default:
		}

		info, err := statFile(path)
		if err != nil {
			log.L().Warn().Str(log.FieldPath, path).Err(err).Msg("stat failed, skipping")
			continue
		}

		result := parser.Parse(filepath.Base(path))
		metrics.RecordFileScanned()
		metrics.RecordParseOutcome(result.Provenance)

		sf := model.ScannedFile{
			Path:       path,
			Size:       info.size,
			ModifiedAt: info.modTime,
			Parse:      result,
		}

		select {
		case out <- sf:
		case <-ctx.Done():
			return
		}
	}
}
