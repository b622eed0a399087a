package index

import (
	"fmt"

	"codescope/internal/store"
)

// maxRelated bounds how many sibling chunks accompany the primary matches.
const maxRelated = 3

// Context groups the chunks matching an identifier with nearby chunks from
// the same file.
type Context struct {
	Primary []store.Chunk
	Related []store.Chunk
}

// GetContext looks up chunks by symbol name, exact matches first and
// case-insensitive substring matches otherwise. When includeRelated is set,
// up to maxRelated other chunks from the first match's file are attached.
func (ix *Indexer) GetContext(identifier string, includeRelated bool) (*Context, error) {
	matches, err := ix.store.FindByName(identifier)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", identifier, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%q: %w", identifier, ErrNotFound)
	}

	out := &Context{Primary: matches}
	if !includeRelated {
		return out, nil
	}

	primary := make(map[string]bool, len(matches))
	for _, m := range matches {
		primary[m.ID] = true
	}
	siblings, err := ix.store.ChunksForFile(matches[0].FilePath)
	if err != nil {
		return nil, fmt.Errorf("load siblings for %s: %w", matches[0].FilePath, err)
	}
	for _, s := range siblings {
		if primary[s.ID] {
			continue
		}
		out.Related = append(out.Related, s)
		if len(out.Related) == maxRelated {
			break
		}
	}
	return out, nil
}
