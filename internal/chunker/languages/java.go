package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/java"
)

func RegisterJava(r *chunker.Registry) {
	r.Register("java", &chunker.LanguageSpec{
		Language: java.GetLanguage(),
		Query: `
			(program (import_declaration) @chunk.import)
			(program (class_declaration name: (identifier) @name) @chunk.class)
			(program (interface_declaration name: (identifier) @name) @chunk.class)
			(program (enum_declaration name: (identifier) @name) @chunk.class)
			(class_declaration body: (class_body (method_declaration name: (identifier) @name) @chunk.method))
			(class_declaration body: (class_body (constructor_declaration name: (identifier) @name) @chunk.method))
		`,
	})
}
