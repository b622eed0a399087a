package embedder

import (
	"context"
	"fmt"
	"strings"
)

// Embedder turns text into fixed-dimension vectors. Implementations must be
// deterministic: the same text always yields the same vector.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension is the length of every vector this embedder produces.
	Dimension() int
	// Model names the underlying embedding model.
	Model() string
}

// ChunkText builds the text that is embedded for a chunk: a short synthetic
// header (kind, name, file path) ahead of the verbatim content, with the
// docstring appended. The header biases retrieval toward structural intent
// and must be applied identically on every indexing pass. Queries are
// embedded bare, without this header.
func ChunkText(kind, name, path, content, docstring string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// File: %s\n", path)
	if name != "" {
		fmt.Fprintf(&b, "// %s: %s\n", kind, name)
	} else {
		fmt.Fprintf(&b, "// %s\n", kind)
	}
	b.WriteString(content)
	if docstring != "" {
		b.WriteString("\n")
		b.WriteString(docstring)
	}
	return b.String()
}
