package chunker

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec defines the tree-sitter grammar and extraction query for a
// language.
type LanguageSpec struct {
	Language *sitter.Language
	// Query is a tree-sitter S-expression query that captures extractable
	// definitions. The outer node of each pattern must carry a capture whose
	// name encodes the chunk kind (@chunk.function, @chunk.class,
	// @chunk.method, @chunk.import, @chunk.variable); @name names the
	// definition's identifier and is optional.
	Query string
	// Docstring extracts leading documentation for a captured node, if the
	// grammar exposes any. May be nil.
	Docstring func(node *sitter.Node, src []byte) string
}

// Registry maps language names to grammar specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*LanguageSpec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*LanguageSpec)}
}

// Register adds a language spec under the given language name.
func (r *Registry) Register(lang string, spec *LanguageSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[lang] = spec
}

// Get returns the spec for a language, or nil when no grammar is registered.
func (r *Registry) Get(lang string) *LanguageSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.specs[lang]
}

// Languages returns the names of all registered languages.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.specs))
	for lang := range r.specs {
		langs = append(langs, lang)
	}
	return langs
}
