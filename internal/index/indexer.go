// Package index ties the walker, chunker, embedder and store together into
// the indexing and retrieval engine behind the CLI and the MCP server.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codescope/internal/chunker"
	"codescope/internal/chunker/languages"
	"codescope/internal/embedder"
	"codescope/internal/store"
)

// ProgressFunc is invoked as files move through the pipeline. It may be
// called from multiple goroutines.
type ProgressFunc func(processed, total, chunks int)

// Config carries the knobs for an Indexer.
type Config struct {
	// DBPath is the SQLite database file. The parent directory must exist.
	DBPath string
	// Workers bounds the read and chunk stages. Zero means NumCPU.
	Workers int
	// Ignores are extra glob patterns applied on top of the workspace
	// ignore file.
	Ignores []string
	// Retry applies to embedding calls. The zero value selects defaults.
	Retry embedder.RetryConfig
	// OnProgress, when set, receives pipeline progress updates.
	OnProgress ProgressFunc
}

// Indexer owns the store and embedder for one workspace index and exposes
// the four engine operations: index, search, context and status.
type Indexer struct {
	store   *store.SQLiteStore
	emb     embedder.Embedder
	chunker *chunker.ASTChunker
	cfg     Config
	lock    indexLock
}

// Result reports the outcome of a completed indexing pass.
type Result struct {
	IndexedFiles int
	SkippedFiles int
	DeletedFiles int
	ChunkCount   int
	Errors       []FileError
	Duration     time.Duration
}

func New(cfg Config, emb embedder.Embedder) (*Indexer, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.Retry == (embedder.RetryConfig{}) {
		cfg.Retry = embedder.DefaultRetryConfig()
	}
	reg := chunker.NewRegistry()
	languages.RegisterAll(reg)
	return &Indexer{
		store:   st,
		emb:     emb,
		chunker: chunker.NewASTChunker(reg),
		cfg:     cfg,
	}, nil
}

// IndexDirectory walks root and brings the index up to date with it. Files
// whose content hash is unchanged are skipped unless force is set. Stored
// files that no longer exist under root are removed. Only one pass may run
// at a time; a concurrent call returns ErrIndexInProgress.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string, force bool) (*Result, error) {
	if !ix.lock.tryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer ix.lock.release()

	start := time.Now()

	prevModel, err := ix.store.GetMeta(store.MetaEmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("read embedding model: %w", err)
	}
	if prevModel != "" && prevModel != ix.emb.Model() {
		// Vectors from different models are not comparable.
		slog.Info("embedding model changed, rebuilding index",
			"previous", prevModel, "current", ix.emb.Model())
		if err := ix.store.DeleteAll(); err != nil {
			return nil, fmt.Errorf("clear stale index: %w", err)
		}
	}

	res, seen, err := ix.runPipeline(ctx, root, force)
	if res != nil {
		res.Duration = time.Since(start)
	}
	if err != nil {
		return res, err
	}

	// Reap records for files deleted from the workspace. Skipped here on
	// error: a failed walk must not look like a mass deletion.
	stored, err := ix.store.ListFiles()
	if err != nil {
		return res, fmt.Errorf("list indexed files: %w", err)
	}
	for _, f := range stored {
		if seen[f.Path] {
			continue
		}
		if err := ix.store.DeleteFile(f.Path); err != nil {
			res.Errors = append(res.Errors, FileError{Path: f.Path, Kind: ErrKindStore, Err: err})
			continue
		}
		res.DeletedFiles++
		slog.Debug("removed deleted file from index", "path", f.Path)
	}

	if err := ix.store.SetMeta(store.MetaEmbeddingModel, ix.emb.Model()); err != nil {
		return res, fmt.Errorf("record embedding model: %w", err)
	}
	if err := ix.store.SetMeta(store.MetaLastIndexedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return res, fmt.Errorf("record index time: %w", err)
	}

	res.Duration = time.Since(start)
	slog.Info("indexing pass complete",
		"indexed", res.IndexedFiles,
		"skipped", res.SkippedFiles,
		"deleted", res.DeletedFiles,
		"chunks", res.ChunkCount,
		"errors", len(res.Errors),
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// Stats reports chunk and file counts plus per-language and per-kind
// breakdowns.
func (ix *Indexer) Stats() (*store.IndexStats, error) {
	return ix.store.Stats()
}

// Clear drops every indexed file and chunk.
func (ix *Indexer) Clear() error {
	if !ix.lock.tryAcquire() {
		return ErrIndexInProgress
	}
	defer ix.lock.release()
	return ix.store.DeleteAll()
}

func (ix *Indexer) Close() error {
	return ix.store.Close()
}
