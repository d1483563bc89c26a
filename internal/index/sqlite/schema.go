// ABOUTME: SQLite schema for the embedding index and document metadata
// ABOUTME: Creates chunk, document, and index metadata tables
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Embedded chunks with their vectors and source attribution
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    source_id TEXT NOT NULL,
    sequence_index INTEGER NOT NULL DEFAULT 0,
    content_hash TEXT NOT NULL,
    text TEXT NOT NULL,
    vector BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Last-known content hash per indexed source document
CREATE TABLE IF NOT EXISTS documents (
    source_id TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Index-wide metadata, e.g. which embedding model produced the vectors
CREATE TABLE IF NOT EXISTS index_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_id);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
