// ABOUTME: IndexManager reconciles the embedding index with a document corpus
// ABOUTME: Hash-based change detection skips unchanged files entirely
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Thegod322/mddrag/internal/canvas"
	"github.com/Thegod322/mddrag/internal/chunker"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/models"
	"github.com/Thegod322/mddrag/internal/vault"
)

var (
	// ErrIndexUnavailable indicates the vector store is unreachable or corrupt
	ErrIndexUnavailable = errors.New("embedding index unavailable")
	// ErrModelMismatch indicates the index was built with a different embedding model
	ErrModelMismatch = errors.New("embedding model mismatch")
)

// Embedder turns text into vectors. The same embedder must serve indexing
// and querying; the index records its model name to enforce this.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// indexableExts lists the file types reconciliation picks up
var indexableExts = map[string]bool{
	".md":     true,
	".txt":    true,
	".rst":    true,
	".html":   true,
	".canvas": true,
}

// Manager orchestrates corpus walking, chunking, embedding, and index updates
type Manager struct {
	index     *sqlite.Index
	embedder  Embedder
	chunkSize int
	overlap   int
	verbose   bool
}

// NewManager creates a manager over an index and embedder with chunking
// defaults
func NewManager(ix *sqlite.Index, embedder Embedder) *Manager {
	return &Manager{
		index:     ix,
		embedder:  embedder,
		chunkSize: chunker.DefaultChunkSize,
		overlap:   chunker.DefaultOverlap,
	}
}

// SetChunking overrides the chunk size and overlap
func (m *Manager) SetChunking(size, overlap int) {
	m.chunkSize = size
	m.overlap = overlap
}

// SetVerbose enables per-file progress logging
func (m *Manager) SetVerbose(v bool) {
	m.verbose = v
}

// Reconcile aligns the index with the current contents of corpusRoot.
// Unchanged files are skipped without re-chunking or re-embedding; changed
// and new files are re-embedded; vanished files have their chunks removed.
// Individual file failures are recorded in the delta and do not abort the
// pass. Cancelling ctx stops between files, returning the partial delta.
func (m *Manager) Reconcile(ctx context.Context, corpusRoot string) (models.IndexDelta, error) {
	delta := models.IndexDelta{
		RunID:  fmt.Sprintf("reconcile_%s", uuid.New().String()[:8]),
		Failed: make(map[string]string),
	}

	if err := m.checkModel(); err != nil {
		if !errors.Is(err, ErrModelMismatch) {
			return delta, err
		}
		// Vectors from another model are unusable with this embedder:
		// rebuild from scratch rather than degrade silently
		log.Printf("Warning: index was built with a different embedding model, rebuilding (%v)", err)
		if err := m.index.Clear(); err != nil {
			return delta, fmt.Errorf("%w: clearing stale index: %v", ErrIndexUnavailable, err)
		}
	}
	if err := m.index.SetEmbeddingModel(m.embedder.Model()); err != nil {
		return delta, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	known, err := m.index.DocumentHashes()
	if err != nil {
		return delta, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	current, err := listCorpus(corpusRoot)
	if err != nil {
		return delta, err
	}

	for _, source := range current {
		if err := ctx.Err(); err != nil {
			return delta, err
		}

		data, err := os.ReadFile(filepath.Join(corpusRoot, filepath.FromSlash(source)))
		if err != nil {
			delta.Failed[source] = fmt.Sprintf("read: %v", err)
			delete(known, source)
			continue
		}

		hash := models.HashText(string(data))
		prev, seen := known[source]
		delete(known, source)
		if seen && prev == hash {
			continue // unchanged, skip entirely
		}

		if err := m.indexDocument(ctx, corpusRoot, source, string(data), hash, seen); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return delta, err
			}
			delta.Failed[source] = err.Error()
			continue
		}

		if seen {
			delta.Updated = append(delta.Updated, source)
		} else {
			delta.Added = append(delta.Added, source)
		}
	}

	// Anything left in known vanished from the corpus
	removed := make([]string, 0, len(known))
	for source := range known {
		removed = append(removed, source)
	}
	sort.Strings(removed)
	for _, source := range removed {
		if err := m.index.RemoveSource(source); err != nil {
			delta.Failed[source] = fmt.Sprintf("remove: %v", err)
			continue
		}
		delta.Removed = append(delta.Removed, source)
	}

	if m.verbose {
		log.Printf("[%s] reconcile: %d added, %d updated, %d removed, %d failed",
			delta.RunID, len(delta.Added), len(delta.Updated), len(delta.Removed), len(delta.Failed))
	}
	return delta, nil
}

// indexDocument chunks, embeds, and upserts one source document, replacing
// any chunks left from its previous content
func (m *Manager) indexDocument(ctx context.Context, corpusRoot, source, content, hash string, replace bool) error {
	text := content
	if strings.HasSuffix(source, canvas.CanvasExt) {
		// Canvas files are graphs, not prose: index the flattened structure
		parser := canvas.NewParser(corpusRoot, vault.NewResolver())
		doc, err := parser.Parse([]byte(content), source)
		if err != nil {
			return err
		}
		text = canvas.SummaryText(doc)
	}

	if strings.TrimSpace(text) == "" {
		// Nothing to embed; still record the hash so the file is skipped
		// next pass
		if replace {
			if err := m.index.RemoveSource(source); err != nil {
				return err
			}
		}
		return m.index.PutDocument(source, hash, 0)
	}

	chunks, err := chunker.Split(source, text, m.chunkSize, m.overlap)
	if err != nil {
		return err
	}

	records := make([]models.IndexRecord, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		vector, err := m.embedder.EmbedText(ctx, c.Text)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", c.SequenceIndex, err)
		}
		records = append(records, models.IndexRecord{
			ChunkID:       c.ID(),
			SourceID:      c.SourceID,
			SequenceIndex: c.SequenceIndex,
			ContentHash:   c.ContentHash,
			Text:          c.Text,
			Vector:        vector,
		})
	}

	// Old chunks go first so a changed document never leaves stale
	// vectors behind under rotated chunk IDs
	if replace {
		if err := m.index.RemoveSource(source); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := m.index.Upsert(rec); err != nil {
			return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
	}
	if m.verbose {
		log.Printf("indexed %s: %d chunks", source, len(records))
	}
	return m.index.PutDocument(source, hash, len(records))
}

// checkModel verifies the index was produced by this manager's embedder
func (m *Manager) checkModel() error {
	stored, err := m.index.EmbeddingModel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if stored != "" && stored != m.embedder.Model() {
		return fmt.Errorf("%w: index built with %q, embedder is %q", ErrModelMismatch, stored, m.embedder.Model())
	}
	return nil
}

// listCorpus returns the sorted vault-relative paths of all indexable files
// under root, skipping dot-directories (.obsidian, .git, index storage)
func listCorpus(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !indexableExts[filepath.Ext(d.Name())] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus %s: %w", root, err)
	}
	sort.Strings(sources)
	return sources, nil
}
