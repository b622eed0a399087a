package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimension matches the small sentence-transformer models this engine
// was tuned against.
const DefaultDimension = 384

// Local is a deterministic, dependency-free embedder: each token is hashed
// into a dimension with a hashed sign, and the resulting bag-of-tokens vector
// is L2-normalized. Cosine similarity between two vectors then reflects token
// overlap. It is the default provider and the one the tests run against.
type Local struct {
	dim int
}

// NewLocal creates a local embedder with the given dimensionality.
func NewLocal(dim int) *Local {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Local{dim: dim}
}

func (e *Local) Dimension() int { return e.dim }

func (e *Local) Model() string { return "local-hash" }

func (e *Local) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = e.vector(t)
	}
	return vecs, nil
}

func (e *Local) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *Local) vector(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % uint32(e.dim))
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// tokenize lowercases and splits on non-alphanumeric runes, so "class Bar:"
// and "class definition" share the "class" token.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
