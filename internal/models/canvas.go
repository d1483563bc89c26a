// ABOUTME: Core graph types for Obsidian Canvas documents in the MDD method
// ABOUTME: Nodes carry a semantic color category defined by the MDD legend
package models

// NodeKind is the closed set of canvas node variants
type NodeKind string

const (
	// KindText is a node carrying inline markdown text
	KindText NodeKind = "text"
	// KindFile is a node referencing a file elsewhere in the vault
	KindFile NodeKind = "file"
)

// Color categories of the MDD method. Canvases may use other values
// (including hex colors); those pass through unchanged.
const (
	ColorVariable = "0" // uncolored, reference to a variable or information block
	ColorEntity   = "1"
	ColorExternal = "2"
	ColorYellow   = "3"
	ColorAction   = "4"
	ColorCyan     = "5"
	ColorTechSpec = "6"
)

// ColorLegend maps the MDD color categories to their meanings
func ColorLegend() map[string]string {
	return map[string]string{
		ColorVariable: "Reference to a variable or information block (no color)",
		ColorEntity:   "Entity / Class / Page",
		ColorExternal: "External services and APIs",
		ColorYellow:   "User-defined (yellow)",
		ColorAction:   "Action / Button / Transition",
		ColorCyan:     "User-defined (cyan)",
		ColorTechSpec: "Technical specifications (frameworks, libraries)",
	}
}

// Node is a canvas graph vertex. Text nodes carry inline text; file nodes
// reference a vault-relative path. Color is kept verbatim so unknown and
// hex values survive a parse/serialize round trip.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"type"`
	Color string   `json:"color"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Text  string   `json:"text,omitempty"`
	File  string   `json:"file,omitempty"`
}

// Edge is a directed connection between two nodes
type Edge struct {
	ID       string `json:"id,omitempty"`
	FromNode string `json:"fromNode"`
	ToNode   string `json:"toNode"`
	Label    string `json:"label,omitempty"`
}

// CanvasDocument is a parsed canvas graph. Problems lists validation
// findings that did not prevent parsing, such as edges referencing
// unknown node IDs.
type CanvasDocument struct {
	Path     string   `json:"path"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Problems []string `json:"problems,omitempty"`
}

// Node returns the node with the given ID, or nil
func (d *CanvasDocument) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// FileNodes returns the nodes referencing external files
func (d *CanvasDocument) FileNodes() []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Kind == KindFile {
			out = append(out, n)
		}
	}
	return out
}

// CanvasStats summarizes the structure of a canvas
type CanvasStats struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	TextNodes         int            `json:"text_nodes"`
	FileNodes         int            `json:"file_nodes"`
	ColorDistribution map[string]int `json:"color_distribution"`
}

// Stats computes node kind counts and the color distribution
func (d *CanvasDocument) Stats() CanvasStats {
	stats := CanvasStats{
		TotalNodes:        len(d.Nodes),
		TotalEdges:        len(d.Edges),
		ColorDistribution: make(map[string]int),
	}
	for _, n := range d.Nodes {
		switch n.Kind {
		case KindText:
			stats.TextNodes++
		case KindFile:
			stats.FileNodes++
		}
		stats.ColorDistribution[n.Color]++
	}
	return stats
}
