// ABOUTME: Bare entry point for the mddrag MCP server with stdio transport
// ABOUTME: Initializes the index, resolver, and MCP server with all tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Thegod322/mddrag/internal/config"
	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/llm"
	"github.com/Thegod322/mddrag/internal/mcp"
	"github.com/Thegod322/mddrag/internal/search"
	"github.com/Thegod322/mddrag/internal/vault"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - indexing and search tools will not work")
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to open index database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ix := sqlite.NewIndex(db)
	resolver := vault.NewResolver()

	var manager *index.Manager
	var engine *search.Engine
	if cfg.OpenAIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			manager = index.NewManager(ix, client)
			manager.SetChunking(cfg.ChunkSize, cfg.ChunkOverlap)
			engine = search.NewEngine(ix, client)
		}
	}

	server := mcpserver.NewMCPServer(
		"mddrag Documentation RAG",
		"0.1.0",
	)
	mcp.RegisterTools(server, cfg.VaultRoot, resolver, manager, engine, ix)

	log.Println("mddrag MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
