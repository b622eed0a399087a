package languages

import "codescope/internal/chunker"

// RegisterAll registers every supported grammar on the registry.
func RegisterAll(r *chunker.Registry) {
	RegisterPython(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	RegisterJava(r)
	RegisterGo(r)
	RegisterRust(r)
	RegisterCpp(r)
	RegisterC(r)
}
