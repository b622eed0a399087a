package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/javascript"
)

func RegisterJavaScript(r *chunker.Registry) {
	r.Register("javascript", &chunker.LanguageSpec{
		Language: javascript.GetLanguage(),
		Query: `
			(program (import_statement) @chunk.import)
			(program (function_declaration name: (identifier) @name) @chunk.function)
			(program (export_statement declaration: (function_declaration name: (identifier) @name)) @chunk.function)
			(program (class_declaration name: (identifier) @name) @chunk.class)
			(program (export_statement declaration: (class_declaration name: (identifier) @name)) @chunk.class)
			(class_declaration body: (class_body (method_definition name: (property_identifier) @name) @chunk.method))
			(program (lexical_declaration) @chunk.variable)
			(program (variable_declaration) @chunk.variable)
		`,
	})
}
