package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Chunk is the unit of retrieval: a semantically meaningful source fragment
// with its embedding and metadata.
type Chunk struct {
	ID          string
	FilePath    string
	Language    string
	Kind        string
	Name        string
	StartLine   int
	EndLine     int
	Content     string
	Docstring   string
	ContentHash string
	Embedding   []float32
}

// FileRecord is the per-file bookkeeping row. Its hash is the whole-file
// content hash used for change detection.
type FileRecord struct {
	Path      string
	Hash      string
	Language  string
	IndexedAt time.Time
	SizeBytes int64
	Chunks    int
}

// SearchResult pairs a chunk with its cosine similarity score in [-1, 1].
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Filters is a conjunction of optional metadata predicates applied as a
// pre-filter during similarity search.
type Filters struct {
	Language string
	Kind     string
}

// IndexStats summarizes the index contents.
type IndexStats struct {
	ChunkCount    int
	FileCount     int
	ByLanguage    map[string]int
	ByKind        map[string]int
	LastIndexedAt time.Time
}

// Meta keys.
const (
	MetaEmbeddingModel = "embedding_model"
	MetaLastIndexedAt  = "last_indexed_at"
)

// ChunkID derives the stable chunk identifier from the chunk's file path,
// span, and name.
func ChunkID(path string, startLine, endLine int, name string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%d:%s", path, startLine, endLine, name))
	return hex.EncodeToString(h[:16])
}

// HashContent returns the content hash used for change detection, for both
// whole files and individual chunks.
func HashContent(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
