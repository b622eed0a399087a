package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Chunk kinds. KindModule is only produced by the fallback splitter and by
// oversized-chunk fragments of unnamed blocks.
const (
	KindModule   = "module"
	KindImport   = "import"
	KindFunction = "function"
	KindClass    = "class"
	KindMethod   = "method"
	KindVariable = "variable"
)

// Kinds lists every valid chunk kind.
func Kinds() []string {
	return []string{KindModule, KindImport, KindFunction, KindClass, KindMethod, KindVariable}
}

// ValidKind reports whether k is a known chunk kind.
func ValidKind(k string) bool {
	switch k {
	case KindModule, KindImport, KindFunction, KindClass, KindMethod, KindVariable:
		return true
	}
	return false
}

// ParseError reports a file the registered grammar could not parse. The caller
// is expected to fall back to the heuristic splitter rather than fail the run.
type ParseError struct {
	Path     string
	Language string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.Path, e.Language, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RawChunk is a chunk extracted from a source file before embedding. Content
// is the verbatim source text of the span.
type RawChunk struct {
	Name      string
	Kind      string
	StartLine int
	EndLine   int
	Content   string
	Docstring string
}

// ASTChunker parses source files with tree-sitter and extracts semantic
// chunks according to each language's registered query.
type ASTChunker struct {
	registry *Registry
}

// NewASTChunker creates a chunker backed by the given registry.
func NewASTChunker(r *Registry) *ASTChunker {
	return &ASTChunker{registry: r}
}

// Chunk parses the source and returns semantic chunks. If no grammar is
// registered for the language it returns (nil, nil) and the caller should use
// FallbackChunk. A *ParseError means the source is malformed for the grammar;
// the caller should also fall back, not abort.
func (c *ASTChunker) Chunk(path, lang string, src []byte) ([]RawChunk, error) {
	spec := c.registry.Get(lang)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &ParseError{Path: path, Language: lang, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseError{Path: path, Language: lang, Err: fmt.Errorf("source contains syntax errors")}
	}

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", lang, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var captures []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var chunkNode *sitter.Node
		var kind, name string
		for _, cap := range m.Captures {
			capName := q.CaptureNameForId(cap.Index)
			switch {
			case strings.HasPrefix(capName, "chunk."):
				chunkNode = cap.Node
				kind = strings.TrimPrefix(capName, "chunk.")
			case capName == "name":
				name = cap.Node.Content(src)
			}
		}
		if chunkNode == nil || !ValidKind(kind) {
			continue
		}
		var doc string
		if spec.Docstring != nil {
			doc = spec.Docstring(chunkNode, src)
		}
		captures = append(captures, capture{
			kind:      kind,
			name:      name,
			doc:       doc,
			startLine: int(chunkNode.StartPoint().Row) + 1,
			endLine:   int(chunkNode.EndPoint().Row) + 1,
			startByte: chunkNode.StartByte(),
			endByte:   chunkNode.EndByte(),
		})
	}

	// A class chunk may contain its method chunks, but two chunks of the
	// same kind must never overlap.
	captures = dedupSameKind(captures)
	// Contiguous import statements collapse into one import chunk.
	captures = mergeImports(captures)

	sort.Slice(captures, func(i, j int) bool {
		if captures[i].startLine != captures[j].startLine {
			return captures[i].startLine < captures[j].startLine
		}
		return captures[i].endLine > captures[j].endLine
	})

	lines := strings.Split(string(src), "\n")
	var chunks []RawChunk
	for _, cap := range captures {
		chunk := RawChunk{
			Name:      cap.name,
			Kind:      cap.kind,
			StartLine: cap.startLine,
			EndLine:   cap.endLine,
			Content:   lineSpan(lines, cap.startLine, cap.endLine),
			Docstring: cap.doc,
		}
		chunks = append(chunks, splitOversized(chunk)...)
	}
	return chunks, nil
}

type capture struct {
	kind      string
	name      string
	doc       string
	startLine int
	endLine   int
	startByte uint32
	endByte   uint32
}

// dedupSameKind removes captures that overlap an earlier capture of the same
// kind, keeping the outer (larger) node. Overlap across kinds is preserved, so
// a method chunk may sit inside its class chunk.
func dedupSameKind(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].kind != caps[j].kind {
			return caps[i].kind < caps[j].kind
		}
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var result []capture
	var lastKind string
	var lastEnd uint32
	for _, c := range caps {
		if c.kind != lastKind {
			lastKind = c.kind
			lastEnd = 0
		}
		if c.startByte >= lastEnd {
			result = append(result, c)
			lastEnd = c.endByte
		}
	}
	return result
}

// mergeImports collapses import captures whose spans are adjacent or
// contiguous into a single capture per block.
func mergeImports(caps []capture) []capture {
	var imports, rest []capture
	for _, c := range caps {
		if c.kind == KindImport {
			imports = append(imports, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(imports) <= 1 {
		return caps
	}

	sort.Slice(imports, func(i, j int) bool { return imports[i].startLine < imports[j].startLine })
	merged := []capture{imports[0]}
	for _, c := range imports[1:] {
		last := &merged[len(merged)-1]
		if c.startLine <= last.endLine+1 {
			if c.endLine > last.endLine {
				last.endLine = c.endLine
				last.endByte = c.endByte
			}
			continue
		}
		merged = append(merged, c)
	}
	return append(rest, merged...)
}

// lineSpan returns the exact source text for a 1-based inclusive line range.
func lineSpan(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
