// ABOUTME: Chunk represents a bounded slice of document text for embedding
// ABOUTME: Content hashes give chunks a stable identity for incremental indexing
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk is one embeddable slice of a source document. Text includes up to
// Overlap bytes of context from the preceding chunk; the non-overlapping
// span [Start, End) partitions the source exactly across all chunks.
type Chunk struct {
	SourceID      string `json:"source_id"`
	SequenceIndex int    `json:"sequence_index"`
	Text          string `json:"text"`
	Overlap       int    `json:"overlap"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	ContentHash   string `json:"content_hash"`
}

// NewChunk builds a chunk and derives its content hash
func NewChunk(sourceID string, seq int, text string, overlap, start, end int) Chunk {
	return Chunk{
		SourceID:      sourceID,
		SequenceIndex: seq,
		Text:          text,
		Overlap:       overlap,
		Start:         start,
		End:           end,
		ContentHash:   HashText(text),
	}
}

// ID returns the stable chunk identity used by the embedding index.
// Source and sequence are mixed in so identical text appearing in two
// documents yields distinct records.
func (c Chunk) ID() string {
	return HashText(fmt.Sprintf("%s#%d#%s", c.SourceID, c.SequenceIndex, c.ContentHash))[:32]
}

// Span returns the non-overlapping portion of the chunk text
func (c Chunk) Span() string {
	return c.Text[c.Overlap:]
}

// HashText returns the hex sha256 fingerprint of text
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
