package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/c"
)

func RegisterC(r *chunker.Registry) {
	r.Register("c", &chunker.LanguageSpec{
		Language: c.GetLanguage(),
		Query: `
			(translation_unit (preproc_include) @chunk.import)
			(translation_unit (function_definition declarator: (function_declarator declarator: (identifier) @name)) @chunk.function)
			(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @chunk.class
			(translation_unit (declaration) @chunk.variable)
		`,
	})
}
