// ABOUTME: MCP tool definitions and registration for the mddrag server
// ABOUTME: Defines JSON schemas for all 5 documentation RAG tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/search"
	"github.com/Thegod322/mddrag/internal/vault"
)

// RegisterTools registers all MCP tools with the server. manager and engine
// may be nil when no embedding client is configured; the canvas and file
// tools keep working without them.
func RegisterTools(server *mcpserver.MCPServer, defaultVault string, resolver *vault.Resolver, manager *index.Manager, engine *search.Engine, stats StatsProvider) *Handlers {
	handlers := &Handlers{
		defaultVault: defaultVault,
		resolver:     resolver,
		manager:      manager,
		engine:       engine,
		stats:        stats,
	}

	// 1. get_modular_documentation - parse an Obsidian Canvas into a typed graph
	server.AddTool(mcp.Tool{
		Name:        "get_modular_documentation",
		Description: "Parse and retrieve modular documentation from an Obsidian Canvas file. The canvas is located by name anywhere under the vault root and returned as a typed node/edge graph with the MDD color legend.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vault_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Obsidian vault root directory (optional, defaults to MDDRAG_VAULT)",
				},
				"canvas_file": map[string]interface{}{
					"type":        "string",
					"description": "Canvas file name, with or without the .canvas extension (e.g. 'project.canvas')",
				},
			},
			Required: []string{"canvas_file"},
		},
	}, handlers.GetModularDocumentation)

	// 2. get_file_content - read a vault file, resolving bare names recursively
	server.AddTool(mcp.Tool{
		Name:        "get_file_content",
		Description: "Get the content of a file from the vault. Accepts a vault-relative path or a bare file name, which is located recursively.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vault_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Obsidian vault root directory (optional, defaults to MDDRAG_VAULT)",
				},
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Vault-relative path or bare file name",
				},
			},
			Required: []string{"file_path"},
		},
	}, handlers.GetFileContent)

	// 3. index_documentation - reconcile the embedding index with the corpus
	server.AddTool(mcp.Tool{
		Name:        "index_documentation",
		Description: "Index vault documentation for semantic search. Incremental: unchanged files are skipped, changed files re-embedded, deleted files evicted. Reports the resulting delta.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vault_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Obsidian vault root directory (optional, defaults to MDDRAG_VAULT)",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "Wipe the index and re-embed everything (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.IndexDocumentation)

	// 4. search_documentation - semantic search over indexed docs
	server.AddTool(mcp.Tool{
		Name:        "search_documentation",
		Description: "Search indexed documentation semantically. Returns ranked results with source attribution, similarity scores, and snippets.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchDocumentation)

	// 5. get_index_stats - index size and composition
	server.AddTool(mcp.Tool{
		Name:        "get_index_stats",
		Description: "Get statistics about the embedding index: total chunks, per-source counts, and the pinned embedding model.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetIndexStats)

	return handlers
}
