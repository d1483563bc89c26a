// ABOUTME: CLI command to show embedding index statistics
// ABOUTME: Reports total chunks, per-source counts, and the pinned model
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show embedding index statistics",
		Long:  `Display the number of indexed chunks per source document and the embedding model that produced the index.`,
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ix := sqlite.NewIndex(db)
	total, perSource, err := ix.Stats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	model, err := ix.EmbeddingModel()
	if err != nil {
		return fmt.Errorf("reading index metadata: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"total_chunks":    total,
			"sources":         perSource,
			"embedding_model": model,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Index is empty. Run 'mddrag index <vault>' first.")
		return nil
	}

	sources := make([]string, 0, len(perSource))
	for source := range perSource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SOURCE\tCHUNKS\n")
	for _, source := range sources {
		fmt.Fprintf(w, "%s\t%d\n", truncate(source, 60), perSource[source])
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d chunks across %d sources (model: %s)\n", total, len(perSource), model)
	}
	return nil
}
