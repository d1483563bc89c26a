// ABOUTME: Boundary-aware text chunker with overlapping context windows
// ABOUTME: Prefers paragraph cuts, then sentence cuts, then hard rune-aligned cuts
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Thegod322/mddrag/internal/models"
)

// DefaultChunkSize is the default maximum chunk span in bytes
const DefaultChunkSize = 1000

// DefaultOverlap is the default context carried over between adjacent chunks
const DefaultOverlap = 200

const (
	paragraphSep = "\n\n"
	sentenceSep  = ". "
)

// Split cuts text into chunks whose non-overlapping spans are at most
// maxSize bytes and partition the input exactly. Each chunk after the first
// carries up to overlap bytes of trailing context from the previous span.
// Cuts land after paragraph breaks when possible, after sentence breaks
// otherwise, and on a rune boundary as a last resort.
func Split(sourceID, text string, maxSize, overlap int) ([]models.Chunk, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", maxSize, overlap)
	}
	if text == "" {
		return nil, nil
	}

	var chunks []models.Chunk
	start := 0
	for start < len(text) {
		end := cutPoint(text, start, maxSize)

		prefix := overlap
		if prefix > start {
			prefix = start
		}
		// The overlap start must land on a rune boundary too, or the
		// carried context begins mid-character
		for prefix > 0 && !utf8.RuneStart(text[start-prefix]) {
			prefix--
		}
		chunkText := text[start-prefix : end]

		chunks = append(chunks, models.NewChunk(sourceID, len(chunks), chunkText, prefix, start, end))
		start = end
	}

	return chunks, nil
}

// cutPoint picks the end of the span starting at start. The whole remainder
// fits when shorter than maxSize; otherwise the latest paragraph boundary
// within reach wins, then the latest sentence boundary, then a hard cut.
func cutPoint(text string, start, maxSize int) int {
	limit := start + maxSize
	if limit >= len(text) {
		return len(text)
	}

	if cut := lastBoundary(text, start, limit, paragraphSep); cut > start {
		return cut
	}
	if cut := lastBoundary(text, start, limit, sentenceSep); cut > start {
		return cut
	}

	// Hard cut, backed up to a rune boundary so multi-byte characters
	// never split across chunks
	cut := limit
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		cut = limit
	}
	return cut
}

// lastBoundary returns the position just after the last occurrence of sep
// that ends at or before limit, or -1 when none exists in (start, limit]
func lastBoundary(text string, start, limit int, sep string) int {
	window := text[start:limit]
	idx := strings.LastIndex(window, sep)
	if idx < 0 {
		return -1
	}
	return start + idx + len(sep)
}

// Reassemble joins the non-overlapping spans back into the original text.
// It exists as the inverse of Split and is used to verify chunk integrity.
func Reassemble(chunks []models.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Span())
	}
	return b.String()
}
