package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, root string, extra []string) (map[string]FileInfo, []SkippedFile) {
	t.Helper()
	files, skipped, errCh := Walk(root, extra)

	got := make(map[string]FileInfo)
	var skips []SkippedFile
	done := make(chan struct{})
	go func() {
		for sf := range skipped {
			skips = append(skips, sf)
		}
		close(done)
	}()
	for fi := range files {
		got[fi.RelPath] = fi
	}
	<-done
	require.NoError(t, <-errCh)
	return got, skips
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.py", LangPython},
		{"types.pyi", LangPython},
		{"app.jsx", LangJavaScript},
		{"lib.mjs", LangJavaScript},
		{"index.tsx", LangTypeScript},
		{"Server.java", LangJava},
		{"main.go", LangGo},
		{"lib.rs", LangRust},
		{"engine.cc", LangCpp},
		{"engine.hpp", LangCpp},
		{"util.h", LangC},
		{"README.md", LangUnknown},
		{"Makefile", LangUnknown},
		{"UPPER.PY", LangPython},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestWalkSkipsDefaultIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = 1\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, "__pycache__/x.pyc", "junk")
	writeFile(t, root, "src/app.py", "x = 1\n")

	got, _ := collect(t, root, nil)

	assert.Contains(t, got, "main.go")
	assert.Contains(t, got, filepath.Join("src", "app.py"))
	for rel := range got {
		assert.NotContains(t, rel, "node_modules")
		assert.NotContains(t, rel, ".git")
		assert.NotContains(t, rel, "vendor")
		assert.NotContains(t, rel, "__pycache__")
	}
}

func TestWalkKeepsUnknownLanguageFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "plain text\n")

	got, _ := collect(t, root, nil)

	require.Contains(t, got, "notes.txt")
	assert.Equal(t, LangUnknown, got["notes.txt"].Language)
}

func TestWalkReportsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", strings.Repeat("x", MaxFileSize+1))
	writeFile(t, root, "small.py", "x = 1\n")

	got, skips := collect(t, root, nil)

	assert.NotContains(t, got, "big.py")
	assert.Contains(t, got, "small.py")
	require.Len(t, skips, 1)
	assert.Equal(t, "big.py", skips[0].RelPath)
	assert.Contains(t, skips[0].Reason, "size")
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".codescopeignore", "generated\n*.gen.go\n")
	writeFile(t, root, "generated/api.go", "package api\n")
	writeFile(t, root, "types.gen.go", "package types\n")
	writeFile(t, root, "main.go", "package main\n")

	got, _ := collect(t, root, nil)

	assert.Contains(t, got, "main.go")
	assert.NotContains(t, got, "types.gen.go")
	for rel := range got {
		assert.NotContains(t, rel, "generated")
	}
}

func TestWalkCreatesIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	collect(t, root, nil)

	_, err := os.Stat(filepath.Join(root, ".codescopeignore"))
	assert.NoError(t, err)
}

func TestWalkExtraIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", "x = 1\n")
	writeFile(t, root, "drop.py", "y = 2\n")

	got, _ := collect(t, root, []string{"drop.py"})

	assert.Contains(t, got, "keep.py")
	assert.NotContains(t, got, "drop.py")
}

func TestWalkRelPathsAreRelative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.go", "package c\n")

	got, _ := collect(t, root, nil)

	rel := filepath.Join("a", "b", "c.go")
	require.Contains(t, got, rel)
	assert.Equal(t, filepath.Join(root, rel), got[rel].Path)
	assert.Greater(t, got[rel].Size, int64(0))
}
