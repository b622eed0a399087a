package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func RegisterTypeScript(r *chunker.Registry) {
	r.Register("typescript", &chunker.LanguageSpec{
		Language: typescript.GetLanguage(),
		Query: `
			(program (import_statement) @chunk.import)
			(program (function_declaration name: (identifier) @name) @chunk.function)
			(program (export_statement declaration: (function_declaration name: (identifier) @name)) @chunk.function)
			(program (class_declaration name: (type_identifier) @name) @chunk.class)
			(program (export_statement declaration: (class_declaration name: (type_identifier) @name)) @chunk.class)
			(program (interface_declaration name: (type_identifier) @name) @chunk.class)
			(program (export_statement declaration: (interface_declaration name: (type_identifier) @name)) @chunk.class)
			(program (type_alias_declaration name: (type_identifier) @name) @chunk.class)
			(class_declaration body: (class_body (method_definition name: (property_identifier) @name) @chunk.method))
			(program (lexical_declaration) @chunk.variable)
			(program (variable_declaration) @chunk.variable)
		`,
	})
}
