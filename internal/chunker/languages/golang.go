package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/golang"
)

func RegisterGo(r *chunker.Registry) {
	r.Register("go", &chunker.LanguageSpec{
		Language: golang.GetLanguage(),
		Query: `
			(source_file (import_declaration) @chunk.import)
			(source_file (function_declaration name: (identifier) @name) @chunk.function)
			(source_file (method_declaration name: (field_identifier) @name) @chunk.method)
			(source_file (type_declaration (type_spec name: (type_identifier) @name)) @chunk.class)
			(source_file (const_declaration) @chunk.variable)
			(source_file (var_declaration) @chunk.variable)
		`,
	})
}
