// Package index owns the vector index lifecycle: building it from an
// ingestion run, restoring it from its SQLite snapshot, similarity queries,
// and deduplicated incremental appends.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raglet/raglet/internal/splitter"
)

// ChatSource is the provenance tag for records appended from conversation
// turns rather than ingested files.
const ChatSource = "chat"

// ErrNotReady reports a query against an index that was never built or
// loaded. Callers must treat it as "no context available", not a hard error.
var ErrNotReady = errors.New("vector index not ready")

// State describes the index lifecycle.
type State int

const (
	// StateAbsent means no index exists; retrieval degrades to no-context.
	StateAbsent State = iota
	// StateLoaded means the index was restored from its persisted snapshot.
	StateLoaded
	// StateBuilt means the index was freshly constructed and persisted.
	StateBuilt
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateBuilt:
		return "built"
	default:
		return "absent"
	}
}

// Embedder generates an embedding vector for a single text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Stats is a read-only snapshot of the index, safe in any state.
type Stats struct {
	Records     int
	FileSources int
	State       State
}

// Index is the single shared mutable resource of the process. Appends are
// serialized by the mutex; queries see either a fully-pre-append or a
// fully-post-append snapshot because every mutation commits in one SQLite
// transaction.
type Index struct {
	mu       sync.RWMutex
	state    State
	store    *Store
	embedder Embedder
	logger   *slog.Logger
}

// New creates an Index over the given store and embedder. The index starts
// ABSENT; call Load or Build to make it queryable.
func New(store *Store, embedder Embedder) *Index {
	return &Index{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}
}

// Load restores the index from the persisted snapshot. It reports false when
// the snapshot holds no records, leaving the index ABSENT; no re-embedding
// happens either way.
func (ix *Index) Load(ctx context.Context) (bool, error) {
	count, err := ix.store.Count()
	if err != nil {
		return false, fmt.Errorf("counting persisted records: %w", err)
	}
	if count == 0 {
		return false, nil
	}

	ix.mu.Lock()
	ix.state = StateLoaded
	ix.mu.Unlock()

	ix.logger.Info("vector index loaded", "records", count)
	return true, nil
}

// embedConcurrency bounds parallel embedding calls so a large build does not
// overwhelm the model server.
const embedConcurrency = 4

// Build embeds the given chunks, persists them, and moves the index to
// BUILT. An empty chunk set leaves the index ABSENT without error; the
// caller already knows the knowledge base is empty.
func (ix *Index) Build(ctx context.Context, chunks []splitter.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	start := time.Now()
	records := make([]Record, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, c := range chunks {
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gCtx, c.Content)
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			records[i] = Record{
				ID:        uuid.New().String(),
				Source:    c.Source,
				Content:   c.Content,
				Embedding: vec,
				CreatedAt: time.Now().UTC(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.store.Insert(records); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	ix.state = StateBuilt

	ix.logger.Info("vector index built",
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Query embeds the text and returns up to k records ranked by cosine
// similarity, highest first. Fails with ErrNotReady while the index is
// ABSENT.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]ScoredRecord, error) {
	ix.mu.RLock()
	state := ix.state
	ix.mu.RUnlock()
	if state == StateAbsent {
		return nil, ErrNotReady
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return ix.store.Search(vec, k)
}

// Append adds one record for the given content under the source tag. The
// content hash dedups repeat appends: an identical content is a silent
// no-op, as is content that is empty after trimming. The updated index is
// persisted before returning.
func (ix *Index) Append(ctx context.Context, content, source string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	hash := contentHash(content)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	exists, err := ix.store.HasHash(hash)
	if err != nil {
		return fmt.Errorf("checking for duplicate: %w", err)
	}
	if exists {
		ix.logger.Debug("skipping duplicate append", "source", source, "hash", hash[:12])
		return nil
	}

	vec, err := ix.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding appended content: %w", err)
	}

	rec := Record{
		ID:          uuid.New().String(),
		Source:      source,
		Content:     content,
		ContentHash: hash,
		Embedding:   vec,
		CreatedAt:   time.Now().UTC(),
	}
	if err := ix.store.Insert([]Record{rec}); err != nil {
		return fmt.Errorf("persisting appended record: %w", err)
	}

	// First append into an otherwise empty-but-opened index makes it
	// queryable.
	if ix.state == StateAbsent {
		ix.state = StateBuilt
	}
	return nil
}

// Stats returns record counts; zero counts when nothing is indexed yet.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	state := ix.state
	ix.mu.RUnlock()

	records, err := ix.store.Count()
	if err != nil {
		ix.logger.Warn("counting records failed", "error", err)
	}
	files, err := ix.store.CountFileSources()
	if err != nil {
		ix.logger.Warn("counting file sources failed", "error", err)
	}
	return Stats{Records: records, FileSources: files, State: state}
}

// State returns the current lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// contentHash returns the hex sha256 digest of the exact content bytes.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
