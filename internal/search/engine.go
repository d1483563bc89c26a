// ABOUTME: SearchEngine turns natural-language queries into ranked results
// ABOUTME: Embeds queries with the index's pinned model and builds snippets
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/models"
)

// ErrInvalidArgument indicates a bad search parameter
var ErrInvalidArgument = errors.New("invalid argument")

// SnippetLimit caps snippet length in runes
const SnippetLimit = 500

// Engine performs semantic search against the embedding index
type Engine struct {
	index    *sqlite.Index
	embedder index.Embedder
}

// NewEngine creates a search engine over an index and embedder
func NewEngine(ix *sqlite.Index, embedder index.Embedder) *Engine {
	return &Engine{index: ix, embedder: embedder}
}

// Search embeds query and returns up to limit results ordered by descending
// similarity. An empty index yields an empty slice, not an error. The query
// is embedded with the same model that built the index; a mismatch fails
// loudly instead of silently degrading relevance.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidArgument)
	}

	count, err := e.index.Count()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrIndexUnavailable, err)
	}
	if count == 0 {
		return []models.SearchResult{}, nil
	}

	stored, err := e.index.EmbeddingModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrIndexUnavailable, err)
	}
	if stored != "" && stored != e.embedder.Model() {
		return nil, fmt.Errorf("%w: index built with %q, query embedder is %q; reindex required",
			index.ErrModelMismatch, stored, e.embedder.Model())
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	records, hits, err := e.index.Query(vector, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrIndexUnavailable, err)
	}

	results := make([]models.SearchResult, len(records))
	for i, rec := range records {
		results[i] = models.SearchResult{
			ChunkID:       rec.ChunkID,
			Score:         hits[i].Score,
			SourceID:      rec.SourceID,
			SequenceIndex: rec.SequenceIndex,
			Snippet:       snippet(rec.Text),
		}
	}
	return results, nil
}

// snippet truncates chunk text for display
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLimit {
		return text
	}
	return string(runes[:SnippetLimit-3]) + "..."
}
