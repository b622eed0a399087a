package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDeterministic(t *testing.T) {
	e := NewLocal(0)
	a, err := e.EmbedQuery(context.Background(), "parse the config file")
	require.NoError(t, err)
	b, err := e.EmbedQuery(context.Background(), "parse the config file")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLocalDimension(t *testing.T) {
	e := NewLocal(0)
	assert.Equal(t, DefaultDimension, e.Dimension())

	vec, err := e.EmbedQuery(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimension)

	small := NewLocal(64)
	vec, err = small.EmbedQuery(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, vec, 64)
}

func TestLocalUnitNorm(t *testing.T) {
	e := NewLocal(0)
	vec, err := e.EmbedQuery(context.Background(), "func handler(w http.ResponseWriter)")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestLocalSimilarTextsScoreHigher(t *testing.T) {
	e := NewLocal(0)
	ctx := context.Background()

	base := mustVec(t, e, ctx, "open database connection")
	near := mustVec(t, e, ctx, "open the database connection pool")
	far := mustVec(t, e, ctx, "render html template")

	assert.Greater(t, dot(base, near), dot(base, far))
}

func mustVec(t *testing.T, e *Local, ctx context.Context, text string) []float32 {
	t.Helper()
	v, err := e.EmbedQuery(ctx, text)
	require.NoError(t, err)
	return v
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestLocalBatch(t *testing.T) {
	e := NewLocal(0)
	vecs, err := e.Embed(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	single, _ := e.EmbedQuery(context.Background(), "two")
	assert.Equal(t, single, vecs[1])
}

func TestLocalEmptyText(t *testing.T) {
	e := NewLocal(0)
	vec, err := e.EmbedQuery(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimension)
	for _, v := range vec {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestChunkText(t *testing.T) {
	text := ChunkText("function", "parse", "src/parser.py", "def parse():\n    pass", "Parses input.")
	assert.Contains(t, text, "src/parser.py")
	assert.Contains(t, text, "function: parse")
	assert.Contains(t, text, "def parse():")
	assert.Contains(t, text, "Parses input.")

	bare := ChunkText("module", "", "a.txt", "content", "")
	assert.Contains(t, bare, "content")
	assert.NotContains(t, bare, "\n\n\n")
}
