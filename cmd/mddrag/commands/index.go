// ABOUTME: CLI command to reconcile the embedding index with a vault
// ABOUTME: Prints the resulting delta of added/updated/removed sources
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/llm"
)

var forceReindex bool

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [vault]",
		Short: "Index vault documentation for semantic search",
		Long: `Index vault documentation for semantic search.

Walks the vault, chunks and embeds new or changed files, and evicts
deleted ones. Unchanged files are skipped using stored content hashes,
so repeated runs are cheap.

Examples:
  mddrag index ~/vaults/project
  mddrag index --force ~/vaults/project
  MDDRAG_VAULT=~/vaults/project mddrag index`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().BoolVar(&forceReindex, "force", false, "Wipe the index and re-embed everything")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	vaultRoot := cfg.VaultRoot
	if len(args) > 0 {
		vaultRoot = args[0]
	}
	if vaultRoot == "" {
		return fmt.Errorf("vault path is required (argument or MDDRAG_VAULT)")
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for indexing")
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

	ix := sqlite.NewIndex(db)
	if forceReindex {
		if err := ix.Clear(); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	manager := index.NewManager(ix, client)
	manager.SetChunking(cfg.ChunkSize, cfg.ChunkOverlap)
	manager.SetVerbose(verbose)

	delta, err := manager.Reconcile(cmd.Context(), vaultRoot)
	if err != nil {
		return fmt.Errorf("reconciling %s: %w", vaultRoot, err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(delta, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ADDED\tUPDATED\tREMOVED\tFAILED\n")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", len(delta.Added), len(delta.Updated), len(delta.Removed), len(delta.Failed))
	w.Flush()

	for source, reason := range delta.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %s\n", source, reason)
	}

	if !quiet && delta.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "Index already up to date")
	}
	return nil
}
