// Package ingest turns a document folder into the flat chunk collection the
// vector index is built from.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/raglet/raglet/internal/discover"
	"github.com/raglet/raglet/internal/extract"
	"github.com/raglet/raglet/internal/splitter"
)

// ErrEmptyKnowledgeBase reports that discovery and extraction produced no
// chunks at all. Non-fatal; the caller decides whether to run without an
// index.
var ErrEmptyKnowledgeBase = errors.New("no extractable documents found")

// DefaultBatchSize bounds how many files are processed concurrently.
const DefaultBatchSize = 5

// Pipeline discovers, extracts, and splits documents in bounded batches.
type Pipeline struct {
	split     *splitter.Splitter
	batchSize int
	logger    *slog.Logger
}

// New creates a Pipeline using the given splitter. A non-positive batchSize
// falls back to DefaultBatchSize.
func New(split *splitter.Splitter, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		split:     split,
		batchSize: batchSize,
		logger:    slog.Default(),
	}
}

// Run walks root for files matching the allowed extensions and returns all
// their chunks in discovery order. Files within a batch are extracted and
// split concurrently; batches run sequentially to bound open file handles
// and memory. A file that fails extraction contributes zero chunks and is
// logged, never aborting the run. Returns ErrEmptyKnowledgeBase when the
// aggregate is empty.
func (p *Pipeline) Run(ctx context.Context, root string, allowed map[string]bool) ([]splitter.Chunk, error) {
	paths, err := discover.Files(root, allowed)
	if err != nil {
		return nil, err
	}

	var all []splitter.Chunk
	for start := 0; start < len(paths); start += p.batchSize {
		end := min(start+p.batchSize, len(paths))
		batch := paths[start:end]

		// Per-file slots keep discovery order stable regardless of which
		// goroutine finishes first.
		results := make([][]splitter.Chunk, len(batch))
		g, gCtx := errgroup.WithContext(ctx)
		for i, path := range batch {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				chunks, err := p.processFile(path)
				if err != nil {
					p.logger.Warn("skipping file", "path", path, "error", err)
					return nil
				}
				results[i] = chunks
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, chunks := range results {
			all = append(all, chunks...)
		}
	}

	if len(all) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}
	return all, nil
}

func (p *Pipeline) processFile(path string) ([]splitter.Chunk, error) {
	text, err := extract.Text(path)
	if err != nil {
		return nil, err
	}
	return p.split.Chunks(text, filepath.Base(path)), nil
}
