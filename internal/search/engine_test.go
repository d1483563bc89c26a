// ABOUTME: Tests for the semantic search engine
// ABOUTME: Controls ranking with hand-placed vectors instead of a live embedder
package search

import (
	"context"
	"errors"
	"testing"

	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/models"
)

// stubEmbedder returns preassigned vectors per query text
type stubEmbedder struct {
	model   string
	vectors map[string][]float64
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func (s *stubEmbedder) Model() string {
	if s.model == "" {
		return "stub-model"
	}
	return s.model
}

func newTestEngine(t *testing.T) (*Engine, *sqlite.Index, *stubEmbedder) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ix := sqlite.NewIndex(db)
	emb := &stubEmbedder{vectors: make(map[string][]float64)}
	return NewEngine(ix, emb), ix, emb
}

func seed(t *testing.T, ix *sqlite.Index, id, source string, seq int, text string, vector []float64) {
	t.Helper()
	err := ix.Upsert(models.IndexRecord{
		ChunkID:       id,
		SourceID:      source,
		SequenceIndex: seq,
		ContentHash:   models.HashText(text),
		Text:          text,
		Vector:        vector,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestSearchInvalidArguments(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if _, err := e.Search(context.Background(), "query", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Search(limit=0) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Search(context.Background(), "query", -2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Search(limit=-2) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Search(context.Background(), "", 5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Search(empty query) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	e, _, _ := newTestEngine(t)

	results, err := e.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("Search() on empty index = %v, want empty slice", results)
	}
}

func TestSearchRankedAndLimited(t *testing.T) {
	e, ix, emb := newTestEngine(t)

	// Five chunks at decreasing similarity to the query direction
	vectors := [][]float64{
		{1, 0, 0},
		{0.9, 0.4, 0},
		{0.6, 0.8, 0},
		{0.2, 1, 0},
		{0, 1, 0},
	}
	ids := []string{"c0", "c1", "c2", "c3", "c4"}
	for i, v := range vectors {
		seed(t, ix, ids[i], "doc.md", i, "chunk text", v)
	}
	emb.vectors["the query"] = []float64{1, 0, 0}
	if err := ix.SetEmbeddingModel(emb.Model()); err != nil {
		t.Fatalf("SetEmbeddingModel() error = %v", err)
	}

	results, err := e.Search(context.Background(), "the query", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2 (limit)", len(results))
	}
	if results[0].ChunkID != "c0" || results[1].ChunkID != "c1" {
		t.Errorf("Search() order = %s, %s; want c0, c1", results[0].ChunkID, results[1].ChunkID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("Search() scores not descending: %f < %f", results[0].Score, results[1].Score)
	}
	if results[0].SourceID != "doc.md" || results[0].SequenceIndex != 0 {
		t.Errorf("result attribution = %+v, want doc.md seq 0", results[0])
	}
}

func TestSearchDeterministic(t *testing.T) {
	e, ix, emb := newTestEngine(t)

	// Identical vectors force score ties; ranking must still be stable
	for i, id := range []string{"z", "m", "a"} {
		seed(t, ix, id, "doc.md", i, "same", []float64{1, 1, 0})
	}
	emb.vectors["q"] = []float64{1, 1, 0}
	if err := ix.SetEmbeddingModel(emb.Model()); err != nil {
		t.Fatalf("SetEmbeddingModel() error = %v", err)
	}

	first, err := e.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := e.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Search() returned %d/%d results, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID {
			t.Errorf("result %d differs between runs: %s vs %s", i, first[i].ChunkID, second[i].ChunkID)
		}
	}
	for i, want := range []string{"a", "m", "z"} {
		if first[i].ChunkID != want {
			t.Errorf("tied result %d = %s, want %s", i, first[i].ChunkID, want)
		}
	}
}

func TestSearchModelMismatch(t *testing.T) {
	e, ix, _ := newTestEngine(t)

	seed(t, ix, "c0", "doc.md", 0, "text", []float64{1, 0, 0})
	if err := ix.SetEmbeddingModel("another-model"); err != nil {
		t.Fatalf("SetEmbeddingModel() error = %v", err)
	}

	_, err := e.Search(context.Background(), "query", 5)
	if !errors.Is(err, index.ErrModelMismatch) {
		t.Errorf("Search() error = %v, want ErrModelMismatch", err)
	}
}

func TestSearchSnippetTruncation(t *testing.T) {
	e, ix, emb := newTestEngine(t)

	long := make([]rune, SnippetLimit*2)
	for i := range long {
		long[i] = 'x'
	}
	seed(t, ix, "c0", "doc.md", 0, string(long), []float64{1, 0, 0})
	emb.vectors["q"] = []float64{1, 0, 0}
	if err := ix.SetEmbeddingModel(emb.Model()); err != nil {
		t.Fatalf("SetEmbeddingModel() error = %v", err)
	}

	results, err := e.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	snippet := results[0].Snippet
	if len([]rune(snippet)) != SnippetLimit {
		t.Errorf("snippet length = %d runes, want %d", len([]rune(snippet)), SnippetLimit)
	}
	if snippet[len(snippet)-3:] != "..." {
		t.Errorf("snippet does not end with ellipsis marker")
	}
}
