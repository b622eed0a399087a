package index

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"codescope/internal/chunker"
	"codescope/internal/embedder"
	"codescope/internal/store"
	"codescope/internal/walker"
)

// embedBatchSize bounds the number of chunk texts sent to the embedder in
// one call.
const embedBatchSize = 32

type fileWork struct {
	info walker.FileInfo
	hash string
	src  []byte
}

type chunkedFile struct {
	fileWork
	chunks []chunker.RawChunk
}

type embeddedFile struct {
	chunkedFile
	vectors [][]float32
}

// runPipeline streams files through read, chunk, embed and store stages.
// Per-file failures are collected on the result; only context cancellation
// aborts the run. The returned set holds the relative path of every file
// encountered during the walk, changed or not.
func (ix *Indexer) runPipeline(ctx context.Context, root string, force bool) (*Result, map[string]bool, error) {
	workers := ix.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	res := &Result{}
	seen := make(map[string]bool)
	var mu sync.Mutex // guards res and seen

	var total, processed, chunkTotal atomic.Int64
	report := func() {
		if ix.cfg.OnProgress != nil {
			ix.cfg.OnProgress(int(processed.Load()), int(total.Load()), int(chunkTotal.Load()))
		}
	}
	addErr := func(fe FileError) {
		mu.Lock()
		res.Errors = append(res.Errors, fe)
		mu.Unlock()
		slog.Warn("file failed", "path", fe.Path, "stage", fe.Kind, "error", fe.Err)
	}
	skip := func() {
		mu.Lock()
		res.SkippedFiles++
		mu.Unlock()
	}

	fileCh, skippedCh, walkErrCh := walker.Walk(root, ix.cfg.Ignores)

	var skipDone sync.WaitGroup
	skipDone.Add(1)
	go func() {
		defer skipDone.Done()
		for sf := range skippedCh {
			skip()
			slog.Debug("file skipped", "path", sf.RelPath, "reason", sf.Reason)
		}
	}()

	workCh := make(chan fileWork, workers)
	chunkCh := make(chan chunkedFile, workers)
	embedCh := make(chan embeddedFile, workers)

	g := &errgroup.Group{}

	// Read stage: load content, hash it, drop unchanged and binary files.
	var readers sync.WaitGroup
	for range workers {
		readers.Add(1)
		g.Go(func() error {
			defer readers.Done()
			for fi := range fileCh {
				if ctx.Err() != nil {
					continue // drain
				}
				total.Add(1)
				mu.Lock()
				seen[fi.RelPath] = true
				mu.Unlock()

				src, err := os.ReadFile(fi.Path)
				if err != nil {
					addErr(FileError{Path: fi.RelPath, Kind: ErrKindRead, Err: err})
					processed.Add(1)
					report()
					continue
				}
				if bytes.IndexByte(src, 0) >= 0 {
					skip()
					processed.Add(1)
					report()
					continue
				}
				hash := store.HashContent(src)
				if !force {
					prev, err := ix.store.GetFileHash(fi.RelPath)
					if err == nil && prev == hash {
						skip()
						processed.Add(1)
						report()
						continue
					}
				}
				workCh <- fileWork{info: fi, hash: hash, src: src}
			}
			return nil
		})
	}
	go func() {
		readers.Wait()
		close(workCh)
	}()

	// Chunk stage: tree-sitter extraction with a line-based fallback for
	// unknown languages and files the grammar rejects.
	var chunkers sync.WaitGroup
	for range workers {
		chunkers.Add(1)
		g.Go(func() error {
			defer chunkers.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					continue
				}
				chunks, err := ix.chunker.Chunk(w.info.RelPath, w.info.Language, w.src)
				if err != nil {
					var perr *chunker.ParseError
					if !errors.As(err, &perr) {
						addErr(FileError{Path: w.info.RelPath, Kind: ErrKindParse, Err: err})
						processed.Add(1)
						report()
						continue
					}
					addErr(FileError{Path: w.info.RelPath, Kind: ErrKindParse, Err: err})
					chunks = chunker.FallbackChunk(w.src)
				}
				if chunks == nil {
					chunks = chunker.FallbackChunk(w.src)
				}
				if len(chunks) == 0 {
					skip()
					processed.Add(1)
					report()
					continue
				}
				chunkCh <- chunkedFile{fileWork: w, chunks: chunks}
			}
			return nil
		})
	}
	go func() {
		chunkers.Wait()
		close(chunkCh)
	}()

	// Embed stage: single worker so remote embedders see bounded
	// concurrency, batched with retry.
	g.Go(func() error {
		defer close(embedCh)
		for cf := range chunkCh {
			if ctx.Err() != nil {
				continue
			}
			vectors, err := ix.embedChunks(ctx, cf)
			if err != nil {
				addErr(FileError{Path: cf.info.RelPath, Kind: ErrKindEmbed, Err: err})
				skip()
				processed.Add(1)
				report()
				continue
			}
			embedCh <- embeddedFile{chunkedFile: cf, vectors: vectors}
		}
		return nil
	})

	// Store stage: one transaction per file, so a crash never leaves a
	// file half indexed. Cancellation is honored between files.
	g.Go(func() error {
		for ef := range embedCh {
			if ctx.Err() != nil {
				continue
			}
			if err := ix.storeFile(ef); err != nil {
				addErr(FileError{Path: ef.info.RelPath, Kind: ErrKindStore, Err: err})
				processed.Add(1)
				report()
				continue
			}
			mu.Lock()
			res.IndexedFiles++
			res.ChunkCount += len(ef.chunks)
			mu.Unlock()
			chunkTotal.Add(int64(len(ef.chunks)))
			processed.Add(1)
			report()
		}
		return nil
	})

	err := g.Wait()
	skipDone.Wait()
	if werr := <-walkErrCh; werr != nil && err == nil {
		err = werr
	}
	if err == nil {
		err = ctx.Err()
	}
	return res, seen, err
}

func (ix *Indexer) embedChunks(ctx context.Context, cf chunkedFile) ([][]float32, error) {
	texts := make([]string, len(cf.chunks))
	for i, c := range cf.chunks {
		texts[i] = embedder.ChunkText(c.Kind, c.Name, cf.info.RelPath, c.Content, c.Docstring)
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch := texts[start:end]
		vecs, err := embedder.Retry(ctx, ix.cfg.Retry, func() ([][]float32, error) {
			return ix.emb.Embed(ctx, batch)
		})
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vecs...)
	}
	return vectors, nil
}

func (ix *Indexer) storeFile(ef embeddedFile) error {
	chunks := make([]store.Chunk, len(ef.chunks))
	for i, rc := range ef.chunks {
		chunks[i] = store.Chunk{
			ID:          store.ChunkID(ef.info.RelPath, rc.StartLine, rc.EndLine, rc.Name),
			FilePath:    ef.info.RelPath,
			Language:    ef.info.Language,
			Kind:        rc.Kind,
			Name:        rc.Name,
			StartLine:   rc.StartLine,
			EndLine:     rc.EndLine,
			Content:     rc.Content,
			Docstring:   rc.Docstring,
			ContentHash: store.HashContent([]byte(rc.Content)),
			Embedding:   ef.vectors[i],
		}
	}
	rec := store.FileRecord{
		Path:      ef.info.RelPath,
		Hash:      ef.hash,
		Language:  ef.info.Language,
		SizeBytes: ef.info.Size,
		Chunks:    len(chunks),
	}
	return ix.store.ReplaceFileChunks(rec, chunks)
}
