package index

import (
	"context"
	"fmt"
	"slices"

	"codescope/internal/chunker"
	"codescope/internal/store"
	"codescope/internal/walker"
)

const (
	DefaultLimit     = 10
	DefaultThreshold = 0.3
)

// Quality classes describe how well the result set matched the query, based
// on the mean similarity of the returned chunks.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityModerate  = "moderate"
	QualityBroad     = "broad"
	QualityNone      = "none"
)

// SearchOptions narrows a search. Zero Limit selects DefaultLimit; a zero
// Threshold is honored as-is, so callers wanting the usual cutoff pass
// DefaultThreshold.
type SearchOptions struct {
	Limit     int
	Threshold float64
	Language  string
	Kind      string
}

// SearchResponse is the full answer to a search: the ranked chunks plus an
// aggregate quality signal.
type SearchResponse struct {
	Results       []store.SearchResult
	ResultCount   int
	AvgSimilarity float64
	QualityClass  string
}

// Search embeds the query and returns the chunks most similar to it,
// restricted by the options. Filters are validated before the query runs;
// an unsupported value yields ErrInvalidFilter.
func (ix *Indexer) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	if err := validateFilters(opts); err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	vec, err := ix.emb.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := ix.store.Search(vec, opts.Limit, opts.Threshold, store.Filters{
		Language: opts.Language,
		Kind:     opts.Kind,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	resp := &SearchResponse{
		Results:     results,
		ResultCount: len(results),
	}
	if len(results) > 0 {
		var sum float64
		for _, r := range results {
			sum += r.Score
		}
		resp.AvgSimilarity = sum / float64(len(results))
	}
	resp.QualityClass = classifyQuality(resp.AvgSimilarity, len(results))
	return resp, nil
}

func validateFilters(opts SearchOptions) error {
	if opts.Language != "" && opts.Language != walker.LangUnknown &&
		!slices.Contains(walker.Languages(), opts.Language) {
		return fmt.Errorf("language %q: %w", opts.Language, ErrInvalidFilter)
	}
	if opts.Kind != "" && !chunker.ValidKind(opts.Kind) {
		return fmt.Errorf("kind %q: %w", opts.Kind, ErrInvalidFilter)
	}
	return nil
}

func classifyQuality(mean float64, n int) string {
	switch {
	case n == 0:
		return QualityNone
	case mean >= 0.40:
		return QualityExcellent
	case mean >= 0.25:
		return QualityGood
	case mean >= 0.15:
		return QualityModerate
	default:
		return QualityBroad
	}
}
