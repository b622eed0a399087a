package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path     string // absolute path
	RelPath  string // slash-separated, relative to the walk root
	Language string
	Size     int64
}

// SkippedFile is a file the scanner saw but did not emit.
type SkippedFile struct {
	RelPath string
	Reason  string
}

// MaxFileSize is the largest file the scanner will emit (1 MiB). Larger files
// are reported on the skipped channel instead of failing the walk.
const MaxFileSize = 1 << 20

// DefaultIgnores are used when no .codescopeignore file exists.
var DefaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	".idea",
	".vscode",
	".codescope",
	"dist",
	"build",
	"target",
}

// Walk traverses the directory tree rooted at root and sends discovered files
// on the returned channel, each classified by language. Unknown extensions are
// retained with LangUnknown rather than dropped. Ignore patterns come from
// .codescopeignore (or the defaults) plus any extra patterns from the caller;
// patterns support ** globs.
func Walk(root string, extraIgnores []string) (<-chan FileInfo, <-chan SkippedFile, <-chan error) {
	files := make(chan FileInfo, 64)
	skipped := make(chan SkippedFile, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(skipped)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		ignores := loadIgnorePatterns(absRoot)
		ignores = append(ignores, extraIgnores...)

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are skipped, not fatal
			}

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				rel, _ := filepath.Rel(absRoot, path)
				if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if d.Name() == ".codescopeignore" {
				return nil
			}

			rel, _ := filepath.Rel(absRoot, path)
			relPath := filepath.ToSlash(rel)
			if matchesIgnore(d.Name(), relPath, ignores) {
				return nil
			}

			info, err := d.Info()
			if err != nil || info.Size() == 0 {
				return nil
			}
			if info.Size() > MaxFileSize {
				skipped <- SkippedFile{RelPath: relPath, Reason: "exceeds size limit"}
				return nil
			}

			files <- FileInfo{
				Path:     path,
				RelPath:  relPath,
				Language: DetectLanguage(path),
				Size:     info.Size(),
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, skipped, errs
}

// loadIgnorePatterns reads .codescopeignore from the workspace root. If the
// file doesn't exist, it creates one with the default patterns.
func loadIgnorePatterns(root string) []string {
	ignorePath := filepath.Join(root, ".codescopeignore")

	f, err := os.Open(ignorePath)
	if err != nil {
		writeDefaultIgnoreFile(ignorePath)
		return append([]string(nil), DefaultIgnores...)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return append([]string(nil), DefaultIgnores...)
	}
	return patterns
}

func writeDefaultIgnoreFile(path string) {
	var b strings.Builder
	b.WriteString("# Paths excluded from indexing, one pattern per line.\n")
	b.WriteString("# Supports exact names and ** globs.\n\n")
	for _, p := range DefaultIgnores {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	// Best-effort; the in-memory defaults still apply if this fails.
	os.WriteFile(path, []byte(b.String()), 0o644)
}

// matchesIgnore checks a name or relative path against the ignore patterns.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if name == p {
			return true
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if ok, err := doublestar.PathMatch(p, relPath); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
