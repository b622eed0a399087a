package languages

import (
	"codescope/internal/chunker"

	"github.com/smacker/go-tree-sitter/cpp"
)

func RegisterCpp(r *chunker.Registry) {
	r.Register("cpp", &chunker.LanguageSpec{
		Language: cpp.GetLanguage(),
		Query: `
			(translation_unit (preproc_include) @chunk.import)
			(translation_unit (function_definition declarator: (function_declarator declarator: (identifier) @name)) @chunk.function)
			(class_specifier name: (type_identifier) @name body: (field_declaration_list)) @chunk.class
			(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @chunk.class
			(class_specifier body: (field_declaration_list (function_definition declarator: (function_declarator declarator: (field_identifier) @name)) @chunk.method))
			(translation_unit (declaration) @chunk.variable)
		`,
	})
}
