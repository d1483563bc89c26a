// ABOUTME: Document metadata operations for incremental reindexing
// ABOUTME: Tracks last-known content hashes and the pinned embedding model
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Thegod322/mddrag/internal/models"
)

// metaKeyEmbeddingModel pins which embedding function produced the vectors
const metaKeyEmbeddingModel = "embedding_model"

// DocumentHashes returns the last-known content hash for every indexed source
func (ix *Index) DocumentHashes() (map[string]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rows, err := ix.db.conn.Query("SELECT source_id, content_hash FROM documents")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	hashes := make(map[string]string)
	for rows.Next() {
		var source, hash string
		if err := rows.Scan(&source, &hash); err != nil {
			return nil, err
		}
		hashes[source] = hash
	}
	return hashes, rows.Err()
}

// GetDocument returns the persisted state of one source, or nil when absent
func (ix *Index) GetDocument(sourceID string) (*models.DocumentInfo, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var info models.DocumentInfo
	err := ix.db.conn.QueryRow(`
		SELECT source_id, content_hash, chunk_count, indexed_at FROM documents WHERE source_id = ?
	`, sourceID).Scan(&info.SourceID, &info.ContentHash, &info.ChunkCount, &info.IndexedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// PutDocument records the indexed state of a source
func (ix *Index) PutDocument(sourceID, contentHash string, chunkCount int) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.db.conn.Exec(`
		INSERT INTO documents (source_id, content_hash, chunk_count, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at
	`, sourceID, contentHash, chunkCount, time.Now())
	if err != nil {
		return fmt.Errorf("put document %s: %w", sourceID, err)
	}
	return nil
}

// RemoveSource deletes a source's metadata and all of its chunks in one
// transaction, so readers see either the full document or none of it
func (ix *Index) RemoveSource(sourceID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.conn.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chunks WHERE source_id = ?", sourceID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("remove chunks for %s: %w", sourceID, err)
	}
	if _, err := tx.Exec("DELETE FROM documents WHERE source_id = ?", sourceID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("remove document %s: %w", sourceID, err)
	}
	return tx.Commit()
}

// Clear wipes all chunks and document metadata but keeps index_meta
func (ix *Index) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.conn.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM documents"); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// EmbeddingModel returns the pinned embedding model name, or "" when the
// index has never been written
func (ix *Index) EmbeddingModel() (string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var model string
	err := ix.db.conn.QueryRow(
		"SELECT value FROM index_meta WHERE key = ?", metaKeyEmbeddingModel,
	).Scan(&model)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model, nil
}

// SetEmbeddingModel pins the embedding model that produced the index
func (ix *Index) SetEmbeddingModel(model string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.db.conn.Exec(`
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, metaKeyEmbeddingModel, model)
	return err
}
