package walker

import (
	"path/filepath"
	"strings"
)

// Language names used throughout the engine. Files whose extension is not in
// the table are kept with LangUnknown so the fallback chunker can still
// process them.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangJava       = "java"
	LangGo         = "go"
	LangRust       = "rust"
	LangCpp        = "cpp"
	LangC          = "c"
	LangUnknown    = "unknown"
)

// extensionToLanguage maps file extensions (without dot) to language names.
var extensionToLanguage = map[string]string{
	"py":   LangPython,
	"pyi":  LangPython,
	"js":   LangJavaScript,
	"jsx":  LangJavaScript,
	"mjs":  LangJavaScript,
	"cjs":  LangJavaScript,
	"ts":   LangTypeScript,
	"tsx":  LangTypeScript,
	"mts":  LangTypeScript,
	"java": LangJava,
	"go":   LangGo,
	"rs":   LangRust,
	"cpp":  LangCpp,
	"cc":   LangCpp,
	"cxx":  LangCpp,
	"hpp":  LangCpp,
	"hxx":  LangCpp,
	"c":    LangC,
	"h":    LangC,
}

// Languages returns every language name the scanner can detect, excluding
// LangUnknown.
func Languages() []string {
	return []string{
		LangPython, LangJavaScript, LangTypeScript, LangJava,
		LangGo, LangRust, LangCpp, LangC,
	}
}

// DetectLanguage returns the language for a file path based on its extension.
func DetectLanguage(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return LangUnknown
}
