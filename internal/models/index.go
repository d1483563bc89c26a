// ABOUTME: Index records, search results, and reconciliation deltas
// ABOUTME: Shared between the embedding index, index manager, and search engine
package models

import "time"

// IndexRecord is one stored embedding with its source attribution.
// Records are added and removed as a set; they are never mutated in place.
type IndexRecord struct {
	ChunkID       string    `json:"chunk_id"`
	SourceID      string    `json:"source_id"`
	SequenceIndex int       `json:"sequence_index"`
	ContentHash   string    `json:"content_hash"`
	Text          string    `json:"text"`
	Vector        []float64 `json:"vector"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchResult is a ranked hit returned to the caller
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	Score         float64 `json:"score"`
	SourceID      string  `json:"source_id"`
	SequenceIndex int     `json:"sequence_index"`
	Snippet       string  `json:"snippet"`
}

// IndexDelta reports what a reconciliation pass changed. Failed maps a
// source to the reason it could not be indexed; failures never abort the
// rest of the pass.
type IndexDelta struct {
	RunID   string            `json:"run_id"`
	Added   []string          `json:"added"`
	Updated []string          `json:"updated"`
	Removed []string          `json:"removed"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Empty reports whether the pass changed nothing and nothing failed
func (d IndexDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0 && len(d.Failed) == 0
}

// DocumentInfo is the persisted last-known state of an indexed source
type DocumentInfo struct {
	SourceID    string    `json:"source_id"`
	ContentHash string    `json:"content_hash"`
	ChunkCount  int       `json:"chunk_count"`
	IndexedAt   time.Time `json:"indexed_at"`
}
