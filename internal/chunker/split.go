package chunker

import (
	"fmt"
	"strings"
)

// MaxChunkLines caps chunk spans to keep them embeddable. Longer chunks are
// split at line boundaries, preferring a blank line near the window end as the
// closest thing to a statement boundary.
const MaxChunkLines = 200

// splitOversized splits a chunk whose span exceeds MaxChunkLines. Fragments
// keep the parent name with a positional suffix (name#1, name#2, ...).
func splitOversized(c RawChunk) []RawChunk {
	total := c.EndLine - c.StartLine + 1
	if total <= MaxChunkLines {
		return []RawChunk{c}
	}

	lines := strings.Split(c.Content, "\n")
	var out []RawChunk
	part := 1
	for i := 0; i < len(lines); {
		end := splitPoint(lines, i)
		frag := RawChunk{
			Name:      fragmentName(c.Name, part),
			Kind:      c.Kind,
			StartLine: c.StartLine + i,
			EndLine:   c.StartLine + end - 1,
			Content:   strings.Join(lines[i:end], "\n"),
		}
		if part == 1 {
			frag.Docstring = c.Docstring
		}
		out = append(out, frag)
		i = end
		part++
	}
	return out
}

// splitPoint returns the exclusive end index for a fragment starting at i.
// It prefers the last blank line in the back half of the window.
func splitPoint(lines []string, i int) int {
	end := i + MaxChunkLines
	if end >= len(lines) {
		return len(lines)
	}
	for j := end - 1; j > i+MaxChunkLines/2; j-- {
		if strings.TrimSpace(lines[j]) == "" {
			return j + 1
		}
	}
	return end
}

func fragmentName(name string, part int) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s#%d", name, part)
}
