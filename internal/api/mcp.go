package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the pipeline over MCP so agent hosts can trigger a
// processing run or inspect pending entries without the HTTP API.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"oneliners",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("oneliners summarizes community form entries through an assistant and stores their embeddings in a vector store."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("process_entries",
			mcp.WithDescription("Process all active form entries: summarize each, store embeddings, and produce a cumulative three-sentence summary. May take several minutes."),
		),
		mcpProcessEntries(deps),
	)

	s.AddTool(
		mcp.NewTool("list_entries",
			mcp.WithDescription("List the active form entries that a processing run would cover."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries to return (default all)")),
		),
		mcpListEntries(deps),
	)

	return s
}

func mcpProcessEntries(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := deps.Processor.Run(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("processing failed: %v", err)), nil
		}
		out, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpListEntries(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := deps.Entries.ListActiveEntries(ctx, deps.FormID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to retrieve entries: %v", err)), nil
		}

		limit := req.GetInt("limit", len(entries))
		if limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}

		views := make([]entryView, len(entries))
		for i, e := range entries {
			views[i] = entryView{ID: e.ID, Status: e.Status, Fields: e.Fields}
		}
		out, err := json.Marshal(views)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode entries: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

func mcpError(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(msg)
}
