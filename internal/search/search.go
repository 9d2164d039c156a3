// Package search finds occupations similar to free-text queries via
// embedding nearest-neighbor lookup.
package search

import (
	"context"
	"fmt"

	"github.com/jonathan/competency-model/internal/embedding"
	"github.com/jonathan/competency-model/internal/vecindex"
)

// JobMatch is one similar occupation, in the index's ranking order.
type JobMatch struct {
	JobID           string  `json:"job_id"`
	Score           float64 `json:"score"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	OnetSocCode     string  `json:"onet_soc_code"`
	CompetencyCount int     `json:"competency_count"`
}

// Searcher embeds queries and maps index matches to job results.
type Searcher struct {
	provider embedding.Provider
	index    vecindex.Index
}

// NewSearcher creates a searcher over the given provider and index.
func NewSearcher(provider embedding.Provider, index vecindex.Index) *Searcher {
	return &Searcher{provider: provider, index: index}
}

// Search returns at most k occupations similar to the query, ordered
// exactly as the index ranked them. No matches is an empty slice, not
// an error.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]JobMatch, error) {
	vectors, err := s.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}

	matches, err := s.index.Query(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	jobs := make([]JobMatch, 0, len(matches))
	for _, m := range matches {
		jobs = append(jobs, JobMatch{
			JobID:           m.ID,
			Score:           m.Score,
			Title:           metaString(m.Metadata, "title"),
			Description:     metaString(m.Metadata, "description"),
			OnetSocCode:     metaString(m.Metadata, "onet_soc_code"),
			CompetencyCount: metaInt(m.Metadata, "competency_count"),
		})
	}
	return jobs, nil
}

func metaString(metadata map[string]any, key string) string {
	if s, ok := metadata[key].(string); ok {
		return s
	}
	return ""
}

// metaInt reads an integer that JSON decoding may have turned into a float64.
func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
