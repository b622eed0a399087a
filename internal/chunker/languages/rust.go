package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/rust"
)

func RegisterRust(r *chunker.Registry) {
	r.Register("rust", &chunker.LanguageSpec{
		Language: rust.GetLanguage(),
		Query: `
			(source_file (use_declaration) @chunk.import)
			(source_file (function_item name: (identifier) @name) @chunk.function)
			(source_file (struct_item name: (type_identifier) @name) @chunk.class)
			(source_file (enum_item name: (type_identifier) @name) @chunk.class)
			(source_file (trait_item name: (type_identifier) @name) @chunk.class)
			(source_file (impl_item type: (type_identifier) @name) @chunk.class)
			(impl_item body: (declaration_list (function_item name: (identifier) @name) @chunk.method))
			(source_file (const_item name: (identifier) @name) @chunk.variable)
			(source_file (static_item name: (identifier) @name) @chunk.variable)
		`,
	})
}
