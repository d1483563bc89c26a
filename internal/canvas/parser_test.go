// ABOUTME: Tests for the Obsidian Canvas parser and lazy content resolution
// ABOUTME: Covers schema validation, problem flagging, and stale-path fallback
package canvas

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thegod322/mddrag/internal/models"
	"github.com/Thegod322/mddrag/internal/vault"
)

func newTestParser(t *testing.T) (*Parser, string) {
	t.Helper()
	root := t.TempDir()
	return NewParser(root, vault.NewResolver()), root
}

func writeVaultFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

const sampleCanvas = `{
	"nodes": [
		{"id": "n1", "type": "text", "color": "1", "x": 0, "y": 0, "text": "Entity A"},
		{"id": "n2", "type": "file", "color": "6", "x": 100, "y": 0, "file": "spec.md"}
	],
	"edges": [
		{"id": "e1", "fromNode": "n1", "toNode": "n2", "label": "implements"}
	]
}`

func TestParseTwoNodeGraph(t *testing.T) {
	p, _ := newTestParser(t)

	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("Parse() = %d nodes, %d edges, want 2 and 1", len(doc.Nodes), len(doc.Edges))
	}
	if len(doc.Problems) != 0 {
		t.Errorf("Parse() problems = %v, want none", doc.Problems)
	}

	n1 := doc.Node("n1")
	if n1 == nil || n1.Kind != models.KindText || n1.Text != "Entity A" || n1.Color != "1" {
		t.Errorf("node n1 = %+v, want text node with color 1", n1)
	}
	n2 := doc.Node("n2")
	if n2 == nil || n2.Kind != models.KindFile || n2.File != "spec.md" || n2.Color != "6" {
		t.Errorf("node n2 = %+v, want file node referencing spec.md", n2)
	}

	e := doc.Edges[0]
	if e.FromNode != "n1" || e.ToNode != "n2" || e.Label != "implements" {
		t.Errorf("edge = %+v, want n1 -> n2 labeled implements", e)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	p, _ := newTestParser(t)

	_, err := p.Parse([]byte(`{"nodes": [`), "broken.canvas")
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("Parse() error = %v, want ErrMalformedDocument", err)
	}
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"node missing id", `{"nodes": [{"type": "text", "text": "x"}]}`},
		{"node missing type", `{"nodes": [{"id": "n1", "text": "x"}]}`},
		{"unknown node type", `{"nodes": [{"id": "n1", "type": "group"}]}`},
		{"file node without path", `{"nodes": [{"id": "n1", "type": "file"}]}`},
		{"edge missing endpoint", `{"nodes": [{"id": "n1", "type": "text"}], "edges": [{"fromNode": "n1"}]}`},
	}

	p, _ := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tt.data), "bad.canvas")
			if !errors.Is(err, ErrSchemaViolation) {
				t.Errorf("Parse() error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}

func TestParseFlagsUnknownEdgeEndpoints(t *testing.T) {
	p, _ := newTestParser(t)
	data := `{
		"nodes": [{"id": "n1", "type": "text", "text": "a"}],
		"edges": [{"id": "e1", "fromNode": "n1", "toNode": "ghost"}]
	}`

	doc, err := p.Parse([]byte(data), "dangling.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// The edge survives; the dangling reference is reported
	if len(doc.Edges) != 1 {
		t.Errorf("Parse() dropped the edge, want it kept")
	}
	if len(doc.Problems) != 1 || !strings.Contains(doc.Problems[0], "ghost") {
		t.Errorf("Parse() problems = %v, want unknown-node report for ghost", doc.Problems)
	}
}

func TestParseFlagsDuplicateNodeIDs(t *testing.T) {
	p, _ := newTestParser(t)
	data := `{"nodes": [
		{"id": "n1", "type": "text", "text": "a"},
		{"id": "n1", "type": "text", "text": "b"}
	]}`

	doc, err := p.Parse([]byte(data), "dup.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Problems) != 1 || !strings.Contains(doc.Problems[0], "duplicate") {
		t.Errorf("Parse() problems = %v, want duplicate id report", doc.Problems)
	}
}

func TestParseColorPassthrough(t *testing.T) {
	p, _ := newTestParser(t)
	data := `{"nodes": [
		{"id": "n1", "type": "text", "text": "a"},
		{"id": "n2", "type": "text", "color": "#FF5582", "text": "b"},
		{"id": "n3", "type": "text", "color": "9", "text": "c"}
	]}`

	doc, err := p.Parse([]byte(data), "colors.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := doc.Node("n1").Color; got != models.ColorVariable {
		t.Errorf("absent color = %q, want %q", got, models.ColorVariable)
	}
	if got := doc.Node("n2").Color; got != "#FF5582" {
		t.Errorf("hex color = %q, want preserved verbatim", got)
	}
	if got := doc.Node("n3").Color; got != "9" {
		t.Errorf("unknown color = %q, want preserved verbatim", got)
	}
}

func TestParseAutoLocatesByName(t *testing.T) {
	p, root := newTestParser(t)
	writeVaultFile(t, root, "projects/deep/design.canvas", sampleCanvas)

	// Extension may be omitted
	doc, err := p.ParseAuto("design")
	if err != nil {
		t.Fatalf("ParseAuto() error = %v", err)
	}
	if doc.Path != "projects/deep/design.canvas" {
		t.Errorf("ParseAuto() path = %q, want projects/deep/design.canvas", doc.Path)
	}
}

func TestParseAutoNotFound(t *testing.T) {
	p, _ := newTestParser(t)

	_, err := p.ParseAuto("nonexistent")
	if !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("ParseAuto() error = %v, want vault.ErrNotFound", err)
	}
}

func TestResolveContentTextNode(t *testing.T) {
	p, _ := newTestParser(t)
	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	content, err := p.ResolveContent(doc, "n1")
	if err != nil {
		t.Fatalf("ResolveContent() error = %v", err)
	}
	if content != "Entity A" {
		t.Errorf("ResolveContent() = %q, want inline text", content)
	}
}

func TestResolveContentFileNode(t *testing.T) {
	p, root := newTestParser(t)
	writeVaultFile(t, root, "spec.md", "# Spec body")

	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	content, err := p.ResolveContent(doc, "n2")
	if err != nil {
		t.Fatalf("ResolveContent() error = %v", err)
	}
	if content != "# Spec body" {
		t.Errorf("ResolveContent() = %q, want file contents", content)
	}
}

func TestResolveContentStalePathFallback(t *testing.T) {
	p, root := newTestParser(t)
	// The canvas declares "spec.md" at the root but the file moved deeper
	writeVaultFile(t, root, "archive/2024/spec.md", "moved content")

	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	content, err := p.ResolveContent(doc, "n2")
	if err != nil {
		t.Fatalf("ResolveContent() error = %v", err)
	}
	if content != "moved content" {
		t.Errorf("ResolveContent() = %q, want fallback by base name", content)
	}
}

func TestResolveContentMissingFile(t *testing.T) {
	p, _ := newTestParser(t)
	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err = p.ResolveContent(doc, "n2")
	if !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("ResolveContent() error = %v, want vault.ErrNotFound", err)
	}
}

func TestResolveContentUnknownNode(t *testing.T) {
	p, _ := newTestParser(t)
	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	_, err = p.ResolveContent(doc, "nope")
	if !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("ResolveContent() error = %v, want vault.ErrNotFound", err)
	}
}

func TestSummaryText(t *testing.T) {
	p, _ := newTestParser(t)
	doc, err := p.Parse([]byte(sampleCanvas), "project.canvas")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	summary := SummaryText(doc)
	if !strings.Contains(summary, "project.canvas") {
		t.Errorf("SummaryText() missing canvas path:\n%s", summary)
	}
	if !strings.Contains(summary, "Entity A") {
		t.Errorf("SummaryText() missing text node content:\n%s", summary)
	}
	if !strings.Contains(summary, "spec.md") {
		t.Errorf("SummaryText() missing file reference:\n%s", summary)
	}
	if !strings.Contains(summary, "Total nodes: 2") {
		t.Errorf("SummaryText() missing structure counts:\n%s", summary)
	}
}
