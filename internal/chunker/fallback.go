package chunker

import (
	"regexp"
	"strings"
)

// markerRe matches lines that likely begin a new definition, used to cut
// fallback chunks at plausible boundaries.
var markerRe = regexp.MustCompile(`^\s*(def |class |func |fn |function |public |private |protected |static |struct |impl |module )`)

// FallbackChunk splits source into module-kind chunks by grouping contiguous
// non-blank line runs separated by blank-line gaps or definition markers. It
// is used for languages with no registered grammar and for files the grammar
// rejects.
func FallbackChunk(src []byte) []RawChunk {
	lines := strings.Split(string(src), "\n")

	var chunks []RawChunk
	start := -1       // 0-based index of the current block's first line
	lastNonBlank := 0 // 0-based index of the last non-blank line seen
	blankRun := 0

	flush := func() {
		if start < 0 || lastNonBlank < start {
			return
		}
		chunks = append(chunks, RawChunk{
			Kind:      KindModule,
			StartLine: start + 1,
			EndLine:   lastNonBlank + 1,
			Content:   lineSpan(lines, start+1, lastNonBlank+1),
		})
		start = -1
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			continue
		}
		if start >= 0 {
			gap := blankRun >= 2
			marker := blankRun >= 1 && markerRe.MatchString(line)
			full := i-start >= MaxChunkLines
			if gap || marker || full {
				flush()
			}
		}
		if start < 0 {
			start = i
		}
		blankRun = 0
		lastNonBlank = i
	}
	flush()

	return chunks
}
