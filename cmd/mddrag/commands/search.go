// ABOUTME: CLI command to search indexed documentation
// ABOUTME: Semantic search with table or JSON output
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/llm"
	"github.com/Thegod322/mddrag/internal/search"
)

var searchLimit int

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documentation",
		Long: `Search indexed documentation semantically.

The query is embedded with the same model that built the index and
matched against stored chunks by cosine similarity.

Examples:
  mddrag search "installation steps"
  mddrag search --limit 10 "canvas node colors"
  mddrag search --format json "error handling"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	// Validate limit flag
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for search")
	}

	client, err := llm.NewOpenAIClient(cfg.OpenAIKey)
	if err != nil {
		return fmt.Errorf("initializing embedding client: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer func() { _ = db.Close() }()

	engine := search.NewEngine(sqlite.NewIndex(db), client)
	results, err := engine.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("searching documentation: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	// Table format
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tSOURCE\tSNIPPET\n")
	fmt.Fprintf(w, "-----\t------\t-------\n")
	for _, result := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\n",
			result.Score,
			truncate(result.SourceID, 40),
			truncate(result.Snippet, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
