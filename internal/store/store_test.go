package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 8

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// unitVec returns an 8-dim unit vector pointing at axis i.
func unitVec(i int) []float32 {
	v := make([]float32, testDim)
	v[i%testDim] = 1
	return v
}

func testChunk(path, kind, name string, start, end int, vec []float32) Chunk {
	content := "content of " + name
	return Chunk{
		ID:          ChunkID(path, start, end, name),
		FilePath:    path,
		Language:    "python",
		Kind:        kind,
		Name:        name,
		StartLine:   start,
		EndLine:     end,
		Content:     content,
		ContentHash: HashContent([]byte(content)),
		Embedding:   vec,
	}
}

func seedFile(t *testing.T, s *SQLiteStore, path string, chunks ...Chunk) {
	t.Helper()
	rec := FileRecord{Path: path, Hash: "hash-" + path, Language: "python", Chunks: len(chunks)}
	require.NoError(t, s.ReplaceFileChunks(rec, chunks))
}

func TestReplaceFileChunksRoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "foo", 1, 5, unitVec(0)),
		testChunk("a.py", "class", "Bar", 7, 20, unitVec(1)),
	)

	got, err := s.ChunksForFile("a.py")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "foo", got[0].Name)
	assert.Equal(t, "Bar", got[1].Name)

	hash, err := s.GetFileHash("a.py")
	require.NoError(t, err)
	assert.Equal(t, "hash-a.py", hash)
}

func TestReplaceFileChunksDropsStaleChunks(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "foo", 1, 5, unitVec(0)),
		testChunk("a.py", "function", "gone", 10, 15, unitVec(2)),
	)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "foo", 1, 6, unitVec(0)),
	)

	got, err := s.ChunksForFile("a.py")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "foo", got[0].Name)
	assert.Equal(t, 6, got[0].EndLine)
}

func TestUpsertChunkLastWriteWins(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py")

	c := testChunk("a.py", "function", "foo", 1, 5, unitVec(0))
	require.NoError(t, s.UpsertChunk(c))
	c.Content = "updated body"
	c.ContentHash = HashContent([]byte(c.Content))
	require.NoError(t, s.UpsertChunk(c))

	got, err := s.ChunksForFile("a.py")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated body", got[0].Content)
}

func TestDeleteFileCascades(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py", testChunk("a.py", "function", "foo", 1, 5, unitVec(0)))
	seedFile(t, s, "b.py", testChunk("b.py", "function", "bar", 1, 5, unitVec(1)))

	require.NoError(t, s.DeleteFile("a.py"))

	got, err := s.ChunksForFile("a.py")
	require.NoError(t, err)
	assert.Empty(t, got)

	hash, err := s.GetFileHash("a.py")
	require.NoError(t, err)
	assert.Empty(t, hash)

	got, err = s.ChunksForFile("b.py")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "exact", 1, 5, unitVec(0)),
		testChunk("a.py", "function", "orthogonal", 10, 15, unitVec(1)),
	)

	results, err := s.Search(unitVec(0), 10, 0.5, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "exact", results[0].Chunk.Name)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestSearchThresholdExcludes(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "orthogonal", 1, 5, unitVec(1)),
	)

	results, err := s.Search(unitVec(0), 10, 0.3, Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(unitVec(0), 10, -1, Filters{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchFilters(t *testing.T) {
	s := openTestStore(t)
	goChunk := testChunk("m.go", "function", "handler", 1, 5, unitVec(0))
	goChunk.Language = "go"
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "pyfunc", 1, 5, unitVec(0)),
		testChunk("a.py", "class", "PyClass", 10, 20, unitVec(0)),
	)
	rec := FileRecord{Path: "m.go", Hash: "h", Language: "go", Chunks: 1}
	require.NoError(t, s.ReplaceFileChunks(rec, []Chunk{goChunk}))

	results, err := s.Search(unitVec(0), 10, 0.5, Filters{Language: "go"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "handler", results[0].Chunk.Name)

	results, err = s.Search(unitVec(0), 10, 0.5, Filters{Kind: "class"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "PyClass", results[0].Chunk.Name)

	results, err = s.Search(unitVec(0), 10, 0.5, Filters{Language: "python", Kind: "function"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pyfunc", results[0].Chunk.Name)
}

func TestSearchLimit(t *testing.T) {
	s := openTestStore(t)
	chunks := make([]Chunk, 5)
	for i := range chunks {
		chunks[i] = testChunk("a.py", "function", string(rune('a'+i)), i*10+1, i*10+5, unitVec(0))
	}
	seedFile(t, s, "a.py", chunks...)

	results, err := s.Search(unitVec(0), 2, 0.5, Filters{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchEmptyIndex(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search(unitVec(0), 10, 0.3, Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindByNamePrefersExactMatch(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "parse", 1, 5, unitVec(0)),
		testChunk("a.py", "function", "parse_header", 10, 15, unitVec(1)),
	)

	got, err := s.FindByName("parse")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "parse", got[0].Name)
}

func TestFindByNameSubstringFallback(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "parse_header", 10, 15, unitVec(1)),
		testChunk("a.py", "function", "reparse", 20, 25, unitVec(2)),
	)

	got, err := s.FindByName("PARSE")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.FindByName("nonexistent")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	goChunk := testChunk("m.go", "method", "Serve", 1, 5, unitVec(0))
	goChunk.Language = "go"
	seedFile(t, s, "a.py",
		testChunk("a.py", "function", "foo", 1, 5, unitVec(0)),
		testChunk("a.py", "class", "Bar", 10, 20, unitVec(1)),
	)
	require.NoError(t, s.ReplaceFileChunks(FileRecord{Path: "m.go", Hash: "h", Language: "go"}, []Chunk{goChunk}))
	require.NoError(t, s.SetMeta(MetaLastIndexedAt, "2026-08-30T10:00:00Z"))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ChunkCount)
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 2, stats.ByLanguage["python"])
	assert.Equal(t, 1, stats.ByLanguage["go"])
	assert.Equal(t, 1, stats.ByKind["function"])
	assert.Equal(t, 1, stats.ByKind["class"])
	assert.Equal(t, 1, stats.ByKind["method"])
	assert.False(t, stats.LastIndexedAt.IsZero())
}

func TestDeleteAll(t *testing.T) {
	s := openTestStore(t)
	seedFile(t, s, "a.py", testChunk("a.py", "function", "foo", 1, 5, unitVec(0)))

	require.NoError(t, s.DeleteAll())

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.ChunkCount)
	assert.Zero(t, stats.FileCount)
}

func TestMetaRoundTrip(t *testing.T) {
	s := openTestStore(t)

	v, err := s.GetMeta("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMeta("embedding_model", "local-hash"))
	require.NoError(t, s.SetMeta("embedding_model", "nomic-embed-text"))

	v, err = s.GetMeta("embedding_model")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", v)
}

func TestChunkIDStable(t *testing.T) {
	a := ChunkID("a.py", 1, 5, "foo")
	b := ChunkID("a.py", 1, 5, "foo")
	c := ChunkID("a.py", 1, 6, "foo")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
