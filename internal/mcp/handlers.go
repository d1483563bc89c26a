// ABOUTME: MCP tool handler implementations for the documentation RAG server
// ABOUTME: Canvas parsing, file retrieval, reconciliation, and semantic search
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Thegod322/mddrag/internal/canvas"
	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/models"
	"github.com/Thegod322/mddrag/internal/search"
	"github.com/Thegod322/mddrag/internal/vault"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	defaultVault string
	resolver     *vault.Resolver
	manager      *index.Manager
	engine       *search.Engine
	stats        StatsProvider
}

// StatsProvider reports index statistics for the stats tool
type StatsProvider interface {
	Stats() (int, map[string]int, error)
	EmbeddingModel() (string, error)
	Clear() error
}

// vaultPath picks the vault root from the request or the configured default
func (h *Handlers) vaultPath(request mcp.CallToolRequest) (string, error) {
	if path := request.GetString("vault_path", ""); path != "" {
		return path, nil
	}
	if h.defaultVault != "" {
		return h.defaultVault, nil
	}
	return "", fmt.Errorf("vault_path argument is required (or set MDDRAG_VAULT)")
}

// GetModularDocumentation handles the get_modular_documentation tool
func (h *Handlers) GetModularDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	canvasFile, err := request.RequireString("canvas_file")
	if err != nil {
		return mcp.NewToolResultError("canvas_file argument is required and must be a string"), nil
	}

	vaultRoot, err := h.vaultPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	parser := canvas.NewParser(vaultRoot, h.resolver)
	doc, err := parser.ParseAuto(canvasFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parsing canvas: %v", err)), nil
	}

	response := map[string]interface{}{
		"color_legend": models.ColorLegend(),
		"canvas_path":  doc.Path,
		"nodes":        doc.Nodes,
		"edges":        doc.Edges,
		"metadata":     doc.Stats(),
	}
	if len(doc.Problems) > 0 {
		response["problems"] = doc.Problems
	}

	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetFileContent handles the get_file_content tool
func (h *Handlers) GetFileContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("file_path argument is required and must be a string"), nil
	}

	vaultRoot, err := h.vaultPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := h.resolver.ReadFile(vaultRoot, filePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading file: %v", err)), nil
	}
	return mcp.NewToolResultText(content), nil
}

// IndexDocumentation handles the index_documentation tool
func (h *Handlers) IndexDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vaultRoot, err := h.vaultPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if h.manager == nil {
		return mcp.NewToolResultError("indexing unavailable: OPENAI_API_KEY is not configured"), nil
	}

	if request.GetBool("force_reindex", false) {
		if err := h.stats.Clear(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clearing index: %v", err)), nil
		}
	}

	// The corpus is about to be rescanned; cached listings are stale
	h.resolver.Invalidate(vaultRoot)

	delta, err := h.manager.Reconcile(ctx, vaultRoot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reconcile failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"run_id":  delta.RunID,
		"added":   len(delta.Added),
		"updated": len(delta.Updated),
		"removed": len(delta.Removed),
		"failed":  delta.Failed,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchDocumentation handles the search_documentation tool
func (h *Handlers) SearchDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 5)

	if h.engine == nil {
		return mcp.NewToolResultError("search unavailable: OPENAI_API_KEY is not configured"), nil
	}

	results, err := h.engine.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No relevant documentation found."), nil
	}

	responseJSON, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetIndexStats handles the get_index_stats tool
func (h *Handlers) GetIndexStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, perSource, err := h.stats.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read stats: %v", err)), nil
	}
	model, err := h.stats.EmbeddingModel()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read index metadata: %v", err)), nil
	}

	response := map[string]interface{}{
		"total_chunks":    total,
		"sources":         perSource,
		"embedding_model": model,
	}
	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
