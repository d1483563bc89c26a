// ABOUTME: CLI command to parse an Obsidian Canvas into a typed graph
// ABOUTME: Locates the canvas by name anywhere under the vault root
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Thegod322/mddrag/internal/canvas"
	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/models"
	"github.com/Thegod322/mddrag/internal/vault"
)

var canvasVault string

// NewCanvasCmd creates the canvas command
func NewCanvasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canvas <name>",
		Short: "Parse a canvas file into a node/edge graph",
		Long: `Parse a canvas file into a node/edge graph.

The canvas is located recursively under the vault root by file name;
the .canvas extension may be omitted. Validation problems such as
edges pointing at unknown nodes are reported, not dropped.

Examples:
  mddrag canvas project --vault ~/vaults/docs
  mddrag canvas Documentation-rag_MDD.canvas --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runCanvas,
	}

	cmd.Flags().StringVar(&canvasVault, "vault", "", "Vault root (defaults to MDDRAG_VAULT)")

	return cmd
}

func runCanvas(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	vaultRoot := canvasVault
	if vaultRoot == "" {
		vaultRoot = cfg.VaultRoot
	}
	if vaultRoot == "" {
		return fmt.Errorf("vault path is required (--vault or MDDRAG_VAULT)")
	}

	parser := canvas.NewParser(vaultRoot, vault.NewResolver())
	doc, err := parser.ParseAuto(args[0])
	if err != nil {
		return fmt.Errorf("parsing canvas: %w", err)
	}

	if outputFormat == "json" {
		response := map[string]interface{}{
			"color_legend": models.ColorLegend(),
			"canvas_path":  doc.Path,
			"nodes":        doc.Nodes,
			"edges":        doc.Edges,
			"metadata":     doc.Stats(),
			"problems":     doc.Problems,
		}
		jsonData, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	stats := doc.Stats()
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes, %d edges\n\n", doc.Path, stats.TotalNodes, stats.TotalEdges)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tKIND\tCOLOR\tPAYLOAD\n")
	for _, n := range doc.Nodes {
		payload := n.Text
		if n.Kind == models.KindFile {
			payload = n.File
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(n.ID, 16), n.Kind, n.Color, truncate(payload, 50))
	}
	w.Flush()

	for _, problem := range doc.Problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "problem: %s\n", problem)
	}
	return nil
}
