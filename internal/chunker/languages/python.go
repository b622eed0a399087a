package languages

import (
	"strings"

	"codescope/internal/chunker"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *chunker.Registry) {
	r.Register("python", &chunker.LanguageSpec{
		Language: python.GetLanguage(),
		Query: `
			(module (import_statement) @chunk.import)
			(module (import_from_statement) @chunk.import)
			(module (function_definition name: (identifier) @name) @chunk.function)
			(module (decorated_definition definition: (function_definition name: (identifier) @name)) @chunk.function)
			(module (class_definition name: (identifier) @name) @chunk.class)
			(module (decorated_definition definition: (class_definition name: (identifier) @name)) @chunk.class)
			(class_definition body: (block (function_definition name: (identifier) @name) @chunk.method))
			(class_definition body: (block (decorated_definition definition: (function_definition name: (identifier) @name)) @chunk.method))
			(module (expression_statement (assignment)) @chunk.variable)
		`,
		Docstring: pythonDocstring,
	})
}

// pythonDocstring returns the leading string literal of a function or class
// body, with quote markers stripped.
func pythonDocstring(n *sitter.Node, src []byte) string {
	if n.Type() == "decorated_definition" {
		n = n.ChildByFieldName("definition")
		if n == nil {
			return ""
		}
	}
	if n.Type() != "function_definition" && n.Type() != "class_definition" {
		return ""
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return trimStringQuotes(str.Content(src))
}

func trimStringQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
