// ABOUTME: Durable embedding index backed by SQLite
// ABOUTME: Vectors stored as BLOBs, brute-force cosine similarity with stable tie-breaks
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Thegod322/mddrag/internal/models"
)

// Index is the persistent vector store. Writers (Upsert, Remove,
// RemoveSource) are serialized against each other and against readers, so
// a concurrent Query never observes a half-updated record.
type Index struct {
	db *DB
	mu sync.RWMutex
}

// NewIndex creates an Index over an open database
func NewIndex(db *DB) *Index {
	return &Index{db: db}
}

// Hit is one ranked entry returned by Query
type Hit struct {
	ChunkID string
	Score   float64
}

// Upsert inserts or atomically replaces the record for chunkID
func (ix *Index) Upsert(rec models.IndexRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.db.conn.Exec(`
		INSERT INTO chunks (id, source_id, sequence_index, content_hash, text, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			sequence_index = excluded.sequence_index,
			content_hash = excluded.content_hash,
			text = excluded.text,
			vector = excluded.vector
	`, rec.ChunkID, rec.SourceID, rec.SequenceIndex, rec.ContentHash, rec.Text, vectorToBlob(rec.Vector), time.Now())

	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", rec.ChunkID, err)
	}
	return nil
}

// Remove deletes the record for chunkID; removing an absent ID is a no-op
func (ix *Index) Remove(chunkID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.db.conn.Exec("DELETE FROM chunks WHERE id = ?", chunkID)
	return err
}

// Get retrieves a single record by chunk ID, or nil when absent
func (ix *Index) Get(chunkID string) (*models.IndexRecord, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var (
		rec  models.IndexRecord
		blob []byte
	)
	err := ix.db.conn.QueryRow(`
		SELECT id, source_id, sequence_index, content_hash, text, vector, created_at
		FROM chunks WHERE id = ?
	`, chunkID).Scan(&rec.ChunkID, &rec.SourceID, &rec.SequenceIndex, &rec.ContentHash, &rec.Text, &blob, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Vector = blobToVector(blob)
	return &rec, nil
}

// Query returns up to maxResults records ranked by descending cosine
// similarity to the query vector. Equal scores order by chunk ID so the
// ranking is fully deterministic.
func (ix *Index) Query(queryVector []float64, maxResults int) ([]models.IndexRecord, []Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rows, err := ix.db.conn.Query(`
		SELECT id, source_id, sequence_index, content_hash, text, vector FROM chunks
	`)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	type scored struct {
		rec   models.IndexRecord
		score float64
	}

	var results []scored
	for rows.Next() {
		var (
			rec  models.IndexRecord
			blob []byte
		)
		if err := rows.Scan(&rec.ChunkID, &rec.SourceID, &rec.SequenceIndex, &rec.ContentHash, &rec.Text, &blob); err != nil {
			return nil, nil, err
		}
		rec.Vector = blobToVector(blob)
		results = append(results, scored{rec: rec, score: CosineSimilarity(queryVector, rec.Vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].rec.ChunkID < results[j].rec.ChunkID
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	records := make([]models.IndexRecord, len(results))
	hits := make([]Hit, len(results))
	for i, s := range results {
		records[i] = s.rec
		hits[i] = Hit{ChunkID: s.rec.ChunkID, Score: s.score}
	}
	return records, hits, nil
}

// Count returns the number of stored records
func (ix *Index) Count() (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var n int
	err := ix.db.conn.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// ChunkIDsBySource returns the chunk IDs stored for a source, ordered by
// sequence index
func (ix *Index) ChunkIDsBySource(sourceID string) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rows, err := ix.db.conn.Query(`
		SELECT id FROM chunks WHERE source_id = ? ORDER BY sequence_index ASC
	`, sourceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats summarizes the index: total chunks and chunk counts per source
func (ix *Index) Stats() (int, map[string]int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rows, err := ix.db.conn.Query(`
		SELECT source_id, COUNT(*) FROM chunks GROUP BY source_id
	`)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = rows.Close() }()

	total := 0
	perSource := make(map[string]int)
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return 0, nil, err
		}
		perSource[source] = count
		total += count
	}
	return total, perSource, rows.Err()
}

// vectorToBlob converts a float64 slice to a little-endian binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
