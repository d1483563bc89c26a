// ABOUTME: Parser for Obsidian Canvas files used by the MDD method
// ABOUTME: Produces a typed node/edge graph with lazy file-node resolution
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thegod322/mddrag/internal/models"
	"github.com/Thegod322/mddrag/internal/vault"
)

var (
	// ErrMalformedDocument indicates the canvas file is not well-formed JSON
	ErrMalformedDocument = errors.New("malformed canvas document")
	// ErrSchemaViolation indicates a node or edge is missing a required field
	ErrSchemaViolation = errors.New("canvas schema violation")
)

// CanvasExt is the file extension of Obsidian Canvas documents
const CanvasExt = ".canvas"

// Parser turns canvas files into CanvasDocument graphs. Parsing never reads
// file-node targets; content resolution is a separate, lazy step.
type Parser struct {
	vaultRoot string
	resolver  *vault.Resolver
}

// NewParser creates a parser rooted at vaultRoot
func NewParser(vaultRoot string, resolver *vault.Resolver) *Parser {
	return &Parser{vaultRoot: vaultRoot, resolver: resolver}
}

// rawNode mirrors the on-disk canvas node shape
type rawNode struct {
	ID    *string `json:"id"`
	Type  *string `json:"type"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	File  string  `json:"file"`
}

// rawEdge mirrors the on-disk canvas edge shape
type rawEdge struct {
	ID       string  `json:"id"`
	FromNode *string `json:"fromNode"`
	ToNode   *string `json:"toNode"`
	Label    string  `json:"label"`
}

type rawCanvas struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

// ParseFile parses the canvas at the given vault-relative path
func (p *Parser) ParseFile(relPath string) (*models.CanvasDocument, error) {
	full := filepath.Join(p.vaultRoot, filepath.FromSlash(relPath))
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q under %s", vault.ErrNotFound, relPath, p.vaultRoot)
		}
		return nil, fmt.Errorf("reading canvas %s: %w", full, err)
	}
	return p.Parse(data, relPath)
}

// ParseAuto locates a canvas file by name anywhere under the vault root and
// parses it. The .canvas extension is appended when missing.
func (p *Parser) ParseAuto(name string) (*models.CanvasDocument, error) {
	if !strings.HasSuffix(name, CanvasExt) {
		name += CanvasExt
	}
	rel, err := p.resolver.Locate(p.vaultRoot, name)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(rel)
}

// Parse decodes raw canvas JSON into a validated graph. Edges referencing
// unknown node IDs are kept and flagged in Problems so authoring errors
// stay visible to the caller.
func (p *Parser) Parse(data []byte, path string) (*models.CanvasDocument, error) {
	var raw rawCanvas
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, path, err)
	}

	doc := &models.CanvasDocument{Path: filepath.ToSlash(path)}

	ids := make(map[string]bool, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		if rn.ID == nil || *rn.ID == "" {
			return nil, fmt.Errorf("%w: %s: node %d is missing id", ErrSchemaViolation, path, i)
		}
		if rn.Type == nil || *rn.Type == "" {
			return nil, fmt.Errorf("%w: %s: node %q is missing type", ErrSchemaViolation, path, *rn.ID)
		}

		node := models.Node{
			ID:    *rn.ID,
			Color: rn.Color,
			X:     rn.X,
			Y:     rn.Y,
		}
		// Absent color means an uncategorized variable reference; anything
		// else, recognized or not, passes through untouched.
		if node.Color == "" {
			node.Color = models.ColorVariable
		}

		switch *rn.Type {
		case "text":
			node.Kind = models.KindText
			node.Text = rn.Text
		case "file":
			node.Kind = models.KindFile
			if rn.File == "" {
				return nil, fmt.Errorf("%w: %s: file node %q has no file path", ErrSchemaViolation, path, node.ID)
			}
			node.File = filepath.ToSlash(rn.File)
		default:
			return nil, fmt.Errorf("%w: %s: node %q has unsupported type %q", ErrSchemaViolation, path, node.ID, *rn.Type)
		}

		if ids[node.ID] {
			doc.Problems = append(doc.Problems, fmt.Sprintf("duplicate node id %q", node.ID))
		}
		ids[node.ID] = true
		doc.Nodes = append(doc.Nodes, node)
	}

	for i, re := range raw.Edges {
		if re.FromNode == nil || re.ToNode == nil || *re.FromNode == "" || *re.ToNode == "" {
			return nil, fmt.Errorf("%w: %s: edge %d is missing an endpoint", ErrSchemaViolation, path, i)
		}
		edge := models.Edge{
			ID:       re.ID,
			FromNode: *re.FromNode,
			ToNode:   *re.ToNode,
			Label:    re.Label,
		}
		if !ids[edge.FromNode] {
			doc.Problems = append(doc.Problems, fmt.Sprintf("edge %d references unknown node %q", i, edge.FromNode))
		}
		if !ids[edge.ToNode] {
			doc.Problems = append(doc.Problems, fmt.Sprintf("edge %d references unknown node %q", i, edge.ToNode))
		}
		doc.Edges = append(doc.Edges, edge)
	}

	return doc, nil
}

// ResolveContent returns the content behind a node. Text nodes return their
// inline text; file nodes are read from the vault, falling back to a
// recursive search by base name when the declared relative path is stale.
// This is the only parser operation that touches referenced files.
func (p *Parser) ResolveContent(doc *models.CanvasDocument, nodeID string) (string, error) {
	node := doc.Node(nodeID)
	if node == nil {
		return "", fmt.Errorf("%w: node %q not in canvas %s", vault.ErrNotFound, nodeID, doc.Path)
	}

	if node.Kind == models.KindText {
		return node.Text, nil
	}

	full := filepath.Join(p.vaultRoot, filepath.FromSlash(node.File))
	data, err := os.ReadFile(full)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading %s: %w", full, err)
	}

	// Declared path is stale (file moved inside the vault): retry by name
	rel, lerr := p.resolver.Locate(p.vaultRoot, filepath.Base(node.File))
	if lerr != nil {
		return "", fmt.Errorf("%w: node %q path %q under %s", vault.ErrNotFound, nodeID, node.File, p.vaultRoot)
	}
	data, err = os.ReadFile(filepath.Join(p.vaultRoot, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}

// SummaryText flattens a canvas into prose for indexing: the structure
// counts, the color legend distribution, and every text node with its
// category meaning.
func SummaryText(doc *models.CanvasDocument) string {
	legend := models.ColorLegend()
	stats := doc.Stats()

	var parts []string
	parts = append(parts, fmt.Sprintf("Canvas documentation: %s", doc.Path))
	parts = append(parts, fmt.Sprintf("Total nodes: %d, total connections: %d", stats.TotalNodes, stats.TotalEdges))

	for _, n := range doc.Nodes {
		if n.Kind != models.KindText || strings.TrimSpace(n.Text) == "" {
			continue
		}
		meaning, ok := legend[n.Color]
		if !ok {
			meaning = "Reference"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", meaning, n.Text))
	}
	for _, n := range doc.FileNodes() {
		parts = append(parts, fmt.Sprintf("File reference: %s", n.File))
	}

	return strings.Join(parts, "\n")
}
