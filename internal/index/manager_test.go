// ABOUTME: Tests for corpus reconciliation against the embedding index
// ABOUTME: Uses a deterministic fake embedder so no network access is needed
package index

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Thegod322/mddrag/internal/index/sqlite"
)

// fakeEmbedder derives a deterministic vector from the text fingerprint
type fakeEmbedder struct {
	model string
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	f.calls++
	sum := sha256.Sum256([]byte(text))
	vector := make([]float64, 8)
	for i := range vector {
		vector[i] = float64(sum[i]) / 255.0
	}
	return vector, nil
}

func (f *fakeEmbedder) Model() string {
	if f.model == "" {
		return "fake-model"
	}
	return f.model
}

func newTestManager(t *testing.T) (*Manager, *sqlite.Index, *fakeEmbedder) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ix := sqlite.NewIndex(db)
	emb := &fakeEmbedder{}
	m := NewManager(ix, emb)
	m.SetChunking(200, 40)
	return m, ix, emb
}

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func TestReconcileFreshCorpus(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "Alpha document content.")
	writeCorpusFile(t, root, "sub/b.md", "Beta document content.")
	writeCorpusFile(t, root, "ignored.png", "binary")

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	sort.Strings(delta.Added)
	want := []string{"a.md", "sub/b.md"}
	if len(delta.Added) != 2 || delta.Added[0] != want[0] || delta.Added[1] != want[1] {
		t.Errorf("Reconcile() added = %v, want %v", delta.Added, want)
	}
	if len(delta.Updated) != 0 || len(delta.Removed) != 0 || len(delta.Failed) != 0 {
		t.Errorf("Reconcile() delta = %+v, want only additions", delta)
	}
	if delta.RunID == "" {
		t.Errorf("Reconcile() run ID is empty")
	}

	count, _ := ix.Count()
	if count == 0 {
		t.Errorf("Count() = 0 after reconcile, want indexed chunks")
	}
	model, _ := ix.EmbeddingModel()
	if model != "fake-model" {
		t.Errorf("EmbeddingModel() = %q, want fake-model", model)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	m, _, emb := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "Stable content that never changes.")

	if _, err := m.Reconcile(context.Background(), root); err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	callsAfterFirst := emb.calls

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if !delta.Empty() {
		t.Errorf("second Reconcile() delta = %+v, want empty", delta)
	}
	if emb.calls != callsAfterFirst {
		t.Errorf("second Reconcile() embedded %d more chunks, want 0 (unchanged files skipped)", emb.calls-callsAfterFirst)
	}
}

func TestReconcileDetectsChangeAndRemoval(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "stays.md", "Untouched content.")
	writeCorpusFile(t, root, "changes.md", "Original content.")
	writeCorpusFile(t, root, "vanishes.md", "Doomed content.")

	if _, err := m.Reconcile(context.Background(), root); err != nil {
		t.Fatalf("initial Reconcile() error = %v", err)
	}
	stayIDs, err := ix.ChunkIDsBySource("stays.md")
	if err != nil {
		t.Fatalf("ChunkIDsBySource() error = %v", err)
	}

	writeCorpusFile(t, root, "changes.md", "Rewritten content entirely.")
	if err := os.Remove(filepath.Join(root, "vanishes.md")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(delta.Added) != 0 {
		t.Errorf("added = %v, want none", delta.Added)
	}
	if len(delta.Updated) != 1 || delta.Updated[0] != "changes.md" {
		t.Errorf("updated = %v, want [changes.md]", delta.Updated)
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != "vanishes.md" {
		t.Errorf("removed = %v, want [vanishes.md]", delta.Removed)
	}

	// Chunks of the untouched file were not rewritten
	after, err := ix.ChunkIDsBySource("stays.md")
	if err != nil {
		t.Fatalf("ChunkIDsBySource() error = %v", err)
	}
	if len(after) != len(stayIDs) {
		t.Fatalf("stays.md chunk count changed: %d -> %d", len(stayIDs), len(after))
	}
	for i := range stayIDs {
		if after[i] != stayIDs[i] {
			t.Errorf("stays.md chunk %d rewritten: %s -> %s", i, stayIDs[i], after[i])
		}
	}

	// The vanished document left nothing behind
	gone, _ := ix.ChunkIDsBySource("vanishes.md")
	if len(gone) != 0 {
		t.Errorf("vanishes.md chunks remaining = %v, want none", gone)
	}
}

func TestReconcileIsolatesPerFileFailures(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "good.md", "Fine content.")
	// A canvas that is not valid JSON fails to index but must not abort the pass
	writeCorpusFile(t, root, "broken.canvas", "{not json")

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if len(delta.Added) != 1 || delta.Added[0] != "good.md" {
		t.Errorf("added = %v, want [good.md]", delta.Added)
	}
	if _, ok := delta.Failed["broken.canvas"]; !ok {
		t.Errorf("failed = %v, want entry for broken.canvas", delta.Failed)
	}

	ids, _ := ix.ChunkIDsBySource("good.md")
	if len(ids) == 0 {
		t.Errorf("good.md not indexed despite isolated failure")
	}
}

func TestReconcileEmbedderFailure(t *testing.T) {
	m, _, emb := newTestManager(t)
	emb.fail = true
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "Content.")

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v, want per-file failure instead", err)
	}
	if len(delta.Failed) != 1 {
		t.Errorf("failed = %v, want one entry", delta.Failed)
	}
	if len(delta.Added) != 0 {
		t.Errorf("added = %v, want none", delta.Added)
	}
}

func TestReconcileCancellation(t *testing.T) {
	m, _, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "Content.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Reconcile(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Reconcile() error = %v, want context.Canceled", err)
	}
}

func TestReconcileModelMismatchRebuilds(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "Content.")

	if _, err := m.Reconcile(context.Background(), root); err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	firstIDs, _ := ix.ChunkIDsBySource("a.md")

	// Same index, different embedder: the stale vectors must be rebuilt
	m2 := NewManager(ix, &fakeEmbedder{model: "other-model"})
	m2.SetChunking(200, 40)
	delta, err := m2.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() with new model error = %v", err)
	}

	if len(delta.Added) != 1 || delta.Added[0] != "a.md" {
		t.Errorf("added = %v, want full re-add after rebuild", delta.Added)
	}
	model, _ := ix.EmbeddingModel()
	if model != "other-model" {
		t.Errorf("EmbeddingModel() = %q, want other-model", model)
	}
	secondIDs, _ := ix.ChunkIDsBySource("a.md")
	if len(secondIDs) != len(firstIDs) {
		t.Errorf("chunk count after rebuild = %d, want %d", len(secondIDs), len(firstIDs))
	}
}

func TestReconcileIndexesCanvasSummary(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "project.canvas", `{
		"nodes": [{"id": "n1", "type": "text", "color": "1", "text": "Core entity"}],
		"edges": []
	}`)

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(delta.Added) != 1 || delta.Added[0] != "project.canvas" {
		t.Fatalf("added = %v, want [project.canvas]", delta.Added)
	}

	ids, err := ix.ChunkIDsBySource("project.canvas")
	if err != nil {
		t.Fatalf("ChunkIDsBySource() error = %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("canvas produced no chunks")
	}
	rec, err := ix.Get(ids[0])
	if err != nil || rec == nil {
		t.Fatalf("Get() = %v, %v", rec, err)
	}
	// The indexed text is the flattened summary, not the raw JSON
	if rec.Text == "" || rec.Text[0] == '{' {
		t.Errorf("indexed canvas text = %q, want flattened summary", rec.Text)
	}
}

func TestReconcileSkipsDotDirectories(t *testing.T) {
	m, ix, _ := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, ".obsidian/workspace.md", "Editor state.")
	writeCorpusFile(t, root, "real.md", "Real content.")

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(delta.Added) != 1 || delta.Added[0] != "real.md" {
		t.Errorf("added = %v, want only real.md", delta.Added)
	}
	ids, _ := ix.ChunkIDsBySource(".obsidian/workspace.md")
	if len(ids) != 0 {
		t.Errorf("dot-directory content was indexed")
	}
}

func TestReconcileEmptyFileRecordedNotEmbedded(t *testing.T) {
	m, ix, emb := newTestManager(t)
	root := t.TempDir()
	writeCorpusFile(t, root, "empty.md", "   \n")

	delta, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(delta.Added) != 1 {
		t.Errorf("added = %v, want [empty.md]", delta.Added)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for blank content, want 0", emb.calls)
	}

	// Second pass skips it via the recorded hash
	delta2, err := m.Reconcile(context.Background(), root)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if !delta2.Empty() {
		t.Errorf("second Reconcile() delta = %+v, want empty", delta2)
	}

	info, err := ix.GetDocument("empty.md")
	if err != nil || info == nil {
		t.Fatalf("GetDocument() = %v, %v", info, err)
	}
	if info.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0", info.ChunkCount)
	}
}
