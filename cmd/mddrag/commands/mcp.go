// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to browse and search vault docs via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/llm"
	"github.com/Thegod322/mddrag/internal/mcp"
	"github.com/Thegod322/mddrag/internal/search"
	"github.com/Thegod322/mddrag/internal/vault"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs mddrag as an MCP (Model Context Protocol) server over stdio,
exposing canvas parsing, file retrieval, incremental indexing, and
semantic search tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  mddrag mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "mddrag": {
  #       "command": "mddrag",
  #       "args": ["mcp"],
  #       "env": {"MDDRAG_VAULT": "/path/to/vault"}
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - indexing and search tools will not work")
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ix := sqlite.NewIndex(db)
	resolver := vault.NewResolver()

	// Embedding-backed components are optional; canvas and file tools
	// keep working without an API key
	var manager *index.Manager
	var engine *search.Engine
	if cfg.OpenAIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			manager = index.NewManager(ix, client)
			manager.SetChunking(cfg.ChunkSize, cfg.ChunkOverlap)
			manager.SetVerbose(verbose)
			engine = search.NewEngine(ix, client)
			if verbose {
				log.Printf("Embedding client initialized (model %s)", client.Model())
			}
		}
	}

	server := mcpserver.NewMCPServer(
		"mddrag Documentation RAG",
		"0.1.0",
	)
	mcp.RegisterTools(server, cfg.VaultRoot, resolver, manager, engine, ix)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("mddrag MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, closing index...")
		}
		if err := db.Close(); err != nil {
			log.Printf("Warning: error closing index database: %v", err)
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
